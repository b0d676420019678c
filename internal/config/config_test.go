// ABOUTME: Tests for configuration loading
// ABOUTME: Covers file parsing, env expansion, env overlay, and logger construction

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ConfigDir)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
config_dir: /tmp/iterable-test
base_url: https://api.eu.iterable.com
key_name: staging
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/iterable-test", cfg.ConfigDir)
	assert.Equal(t, "https://api.eu.iterable.com", cfg.BaseURL)
	assert.Equal(t, "staging", cfg.KeyName)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_ITERABLE_DIR", "/tmp/expanded")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("config_dir: ${TEST_ITERABLE_DIR}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded", cfg.ConfigDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://localhost:9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://api.iterable.com\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
}

func TestLoadRejectsUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger = newLogger(LoggingConfig{Level: "warn"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

// ABOUTME: Configuration loading for iterable-mcp
// ABOUTME: Optional YAML file with environment variable expansion, overlaid by env vars

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consumed at startup. The permission flag names live
// in the keystore package; these cover everything else.
const (
	EnvConfigDir = "ITERABLE_CONFIG_DIR"
	EnvBaseURL   = "ITERABLE_BASE_URL"
	EnvKeyName   = "ITERABLE_KEY_NAME"

	// Legacy single-key configuration, consumed by the migrate command.
	EnvLegacyAPIKey = "ITERABLE_API_KEY"
)

// Config is the process configuration, computed once at startup and passed
// explicitly. Business logic never re-reads the environment mid-request.
type Config struct {
	// ConfigDir is where the key store lives.
	ConfigDir string `yaml:"config_dir"`

	// BaseURL overrides the active key's endpoint for this session.
	BaseURL string `yaml:"base_url"`

	// KeyName selects a key by name instead of the active one.
	KeyName string `yaml:"key_name"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfigDir returns the key store directory.
// Priority: ITERABLE_CONFIG_DIR > XDG_CONFIG_HOME/iterable-mcp > ~/.config/iterable-mcp
func DefaultConfigDir() string {
	if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		return envDir
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".iterable-mcp" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "iterable-mcp")
}

// Load builds the configuration from an optional YAML file overlaid with
// environment variables. A missing file is not an error; a present but
// unparsable file is. Environment variables in the format ${VAR_NAME} are
// expanded inside the file before parsing.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			expanded := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	// Environment wins over the file
	if v := os.Getenv(EnvConfigDir); v != "" {
		cfg.ConfigDir = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvKeyName); v != "" {
		cfg.KeyName = v
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// NewLogger builds the process logger from the logging configuration.
// Output always goes to stderr: stdout belongs to the MCP transport.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ABOUTME: Tests for the metadata file layer
// ABOUTME: Covers backup-before-overwrite, corrupt store handling, and file permissions

package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	m := newTestManagerAt(t, dir)

	_, err := m.AddKey("prod", testSecretA, endpointUS, nil)
	require.NoError(t, err)

	// No backup yet: the pre-add store was empty
	_, statErr := os.Stat(filepath.Join(dir, backupFileName))
	assert.True(t, os.IsNotExist(statErr), "empty store must not be backed up")

	_, err = m.AddKey("staging", testSecretB, endpointEU, nil)
	require.NoError(t, err)

	// The backup must hold exactly the pre-add content: one record, "prod"
	raw, err := os.ReadFile(filepath.Join(dir, backupFileName))
	require.NoError(t, err)

	var backup storeData
	require.NoError(t, json.Unmarshal(raw, &backup))
	require.Len(t, backup.Keys, 1)
	assert.Equal(t, "prod", backup.Keys[0].Name)
}

func TestCorruptStoreIsFatal(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, storeFileName), []byte("{not json"), 0o600))

	m := newTestManagerAt(t, dir)
	_, err := m.ListKeys()
	require.Error(t, err, "corrupt store must not be silently reset")
	assert.Contains(t, err.Error(), "corrupt")

	// The corrupt content must still be on disk, untouched
	raw, readErr := os.ReadFile(filepath.Join(dir, storeFileName))
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(raw))
}

func TestStoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits are not meaningful on windows")
	}

	dir := t.TempDir()
	m := newTestManagerAt(t, dir)
	_, err := m.AddKey("prod", testSecretA, endpointUS, nil)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, storeFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInitCreatesEmptyStore(t *testing.T) {
	dir := t.TempDir()
	m := newTestManagerAt(t, dir)

	keys, err := m.ListKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	raw, err := os.ReadFile(filepath.Join(dir, storeFileName))
	require.NoError(t, err)

	var data storeData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, storeVersion, data.Version)
	assert.Empty(t, data.Keys)
}

// ABOUTME: Tests for the vault-backed and plaintext cipher backends
// ABOUTME: Covers round-trips, probe semantics, and missing-entry errors

package keychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringCipherRoundTrip(t *testing.T) {
	keyring.MockInit()
	c := NewKeyringCipher()

	assert.Equal(t, ModeVault, c.Mode())

	blob, err := c.Encrypt("key-1", "a1b2c3d4e5f6789012345678901234ab")
	require.NoError(t, err)
	assert.Empty(t, blob, "vault backend must not return inline ciphertext")

	secret, err := c.Decrypt("key-1", "")
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f6789012345678901234ab", secret)
}

func TestKeyringCipherMissingEntry(t *testing.T) {
	keyring.MockInit()
	c := NewKeyringCipher()

	_, err := c.Decrypt("no-such-id", "")
	assert.ErrorIs(t, err, ErrSecretMissing)

	err = c.Probe("no-such-id")
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestKeyringCipherProbeAndDelete(t *testing.T) {
	keyring.MockInit()
	c := NewKeyringCipher()

	_, err := c.Encrypt("key-2", "00000000000000000000000000000000")
	require.NoError(t, err)

	require.NoError(t, c.Probe("key-2"))
	require.NoError(t, c.Delete("key-2"))
	assert.ErrorIs(t, c.Probe("key-2"), ErrSecretMissing)

	// Deleting an entry that is already gone is not an error
	assert.NoError(t, c.Delete("key-2"))
}

func TestPlaintextCipherRoundTrip(t *testing.T) {
	c := NewPlaintextCipher()

	assert.Equal(t, ModePlain, c.Mode())

	blob, err := c.Encrypt("key-1", "ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffffffffffffffffffff", blob, "plaintext backend stores the secret inline")

	secret, err := c.Decrypt("key-1", blob)
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffffffffffffffffffff", secret)
}

func TestPlaintextCipherProbeNeverFails(t *testing.T) {
	c := NewPlaintextCipher()
	assert.NoError(t, c.Probe("anything"))
	assert.NoError(t, c.Delete("anything"))
}

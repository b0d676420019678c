// ABOUTME: Plaintext fallback cipher for hosts without a vault or DPAPI equivalent
// ABOUTME: Relies on owner-only store file permissions instead of encryption

package keychain

// PlaintextCipher stores the secret inline with no encryption. Used on Linux
// and any other host lacking a native credential facility. Callers must keep
// the store file owner-only readable.
type PlaintextCipher struct{}

// NewPlaintextCipher returns the degraded plaintext fallback cipher.
func NewPlaintextCipher() *PlaintextCipher {
	return &PlaintextCipher{}
}

// Mode implements Cipher.
func (c *PlaintextCipher) Mode() Mode { return ModePlain }

// Encrypt returns the secret unchanged for inline storage.
func (c *PlaintextCipher) Encrypt(_, secret string) (string, error) {
	return secret, nil
}

// Decrypt returns the inline blob unchanged.
func (c *PlaintextCipher) Decrypt(_, blob string) (string, error) {
	return blob, nil
}

// Delete has nothing to remove for inline storage.
func (c *PlaintextCipher) Delete(string) error { return nil }

// Probe always succeeds: the secret travels with the metadata record.
func (c *PlaintextCipher) Probe(string) error { return nil }

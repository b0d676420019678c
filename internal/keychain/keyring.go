// ABOUTME: Vault-backed cipher using the OS credential store (macOS keychain)
// ABOUTME: Secrets are addressed by (ServiceName, record id); nothing is stored inline

package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringCipher stores secrets in the OS credential vault. On macOS this is
// the system keychain. The metadata record never carries the secret.
type KeyringCipher struct{}

// NewKeyringCipher returns a vault-backed cipher.
func NewKeyringCipher() *KeyringCipher {
	return &KeyringCipher{}
}

// Mode implements Cipher.
func (c *KeyringCipher) Mode() Mode { return ModeVault }

// Encrypt writes the secret to the vault under (ServiceName, id).
// The returned blob is always empty.
func (c *KeyringCipher) Encrypt(id, secret string) (string, error) {
	if err := keyring.Set(ServiceName, id, secret); err != nil {
		return "", fmt.Errorf("keychain: storing secret in OS credential vault: %w", err)
	}
	return "", nil
}

// Decrypt looks the secret up by record id. The inline blob is ignored.
func (c *KeyringCipher) Decrypt(id, _ string) (string, error) {
	secret, err := keyring.Get(ServiceName, id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSecretMissing
		}
		return "", fmt.Errorf("keychain: reading secret from OS credential vault: %w", err)
	}
	return secret, nil
}

// Delete removes the vault entry for the record id. Deleting an entry that
// is already gone is not an error.
func (c *KeyringCipher) Delete(id string) error {
	if err := keyring.Delete(ServiceName, id); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("keychain: removing secret from OS credential vault: %w", err)
	}
	return nil
}

// Probe checks whether the vault holds an entry for the record id.
func (c *KeyringCipher) Probe(id string) error {
	if _, err := keyring.Get(ServiceName, id); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrSecretMissing
		}
		return fmt.Errorf("keychain: probing OS credential vault: %w", err)
	}
	return nil
}

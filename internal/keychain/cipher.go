// ABOUTME: Cipher contract for platform-native API key encryption backends
// ABOUTME: Defines storage modes, sentinel errors, and the keychain service name

package keychain

import "errors"

// ServiceName is the credential vault service identifier for all stored keys.
// It is the addressing key for vault lookups and must never vary by runtime
// mode: a record written under one service name is invisible under another.
const ServiceName = "iterable-mcp"

// Mode describes where a backend keeps the secret material.
type Mode int

const (
	// ModeVault means the secret lives only in the OS credential vault,
	// addressed by record id. The metadata record carries no ciphertext.
	ModeVault Mode = iota

	// ModeEncrypted means the secret is encrypted by the OS and the
	// resulting blob is stored inline in the metadata record.
	ModeEncrypted

	// ModePlain means the secret is stored inline as plaintext. Owner-only
	// file permissions on the store are the only protection.
	ModePlain
)

// ErrSecretMissing is returned by Probe and Decrypt when the backend has no
// entry for a record id that metadata says exists. Callers must surface
// this, never downgrade it to "key not found".
var ErrSecretMissing = errors.New("keychain: no secret stored for this key")

// Cipher is the two-way contract between the key manager and the platform
// backend. Implementations are stateless; id is the KeyRecord id.
type Cipher interface {
	// Mode reports how this backend stores secret material.
	Mode() Mode

	// Encrypt stores or encrypts the secret for the given record id.
	// For ModeVault backends the returned blob is empty and the secret is
	// written to the vault as a side effect. For inline backends the blob
	// is the value to persist in the metadata record.
	Encrypt(id, secret string) (string, error)

	// Decrypt recovers the plaintext secret for the given record id. The
	// blob argument is the inline value from the metadata record; ModeVault
	// backends ignore it and look the secret up by id.
	Decrypt(id, blob string) (string, error)

	// Delete removes any vault entry for the record id. Inline backends
	// have nothing to remove and return nil.
	Delete(id string) error

	// Probe reports whether the backend holds material for the record id.
	// Returns ErrSecretMissing when the entry is absent, nil when present.
	// Inline backends always return nil.
	Probe(id string) error
}

// New returns the cipher for the current platform. The selection happens
// once here; all downstream code is backend-agnostic.
func New() Cipher {
	return platformCipher()
}

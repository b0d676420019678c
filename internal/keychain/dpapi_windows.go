// ABOUTME: Windows DPAPI cipher storing base64 ciphertext inline in the metadata record
// ABOUTME: User-scoped CryptProtectData/CryptUnprotectData with no extra entropy

package keychain

import (
	"encoding/base64"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DPAPICipher encrypts secrets with the Windows Data Protection API, scoped
// to the current user with no additional entropy. The binary blob is base64
// encoded for inline storage in the metadata record.
type DPAPICipher struct{}

// NewDPAPICipher returns a DPAPI-backed cipher.
func NewDPAPICipher() *DPAPICipher {
	return &DPAPICipher{}
}

// Mode implements Cipher.
func (c *DPAPICipher) Mode() Mode { return ModeEncrypted }

// Encrypt wraps the secret with user-scoped DPAPI and base64-encodes the result.
func (c *DPAPICipher) Encrypt(_, secret string) (string, error) {
	in := bytesToBlob([]byte(secret))
	var out windows.DataBlob
	if err := windows.CryptProtectData(in, nil, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out); err != nil {
		return "", fmt.Errorf("keychain: DPAPI CryptProtectData failed: %w", err)
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))
	return base64.StdEncoding.EncodeToString(blobToBytes(&out)), nil
}

// Decrypt base64-decodes the inline blob and unwraps it with DPAPI. A
// malformed blob fails before any OS call is made.
func (c *DPAPICipher) Decrypt(_, blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("keychain: stored ciphertext is not valid base64: %w", err)
	}
	in := bytesToBlob(raw)
	var out windows.DataBlob
	if err := windows.CryptUnprotectData(in, nil, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out); err != nil {
		return "", fmt.Errorf("keychain: DPAPI CryptUnprotectData failed: %w", err)
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))
	return string(blobToBytes(&out)), nil
}

// Delete has nothing to remove: the ciphertext lives in the metadata record.
func (c *DPAPICipher) Delete(string) error { return nil }

// Probe always succeeds: the ciphertext travels with the metadata record.
func (c *DPAPICipher) Probe(string) error { return nil }

func bytesToBlob(b []byte) *windows.DataBlob {
	blob := &windows.DataBlob{Size: uint32(len(b))}
	if len(b) > 0 {
		blob.Data = &b[0]
	}
	return blob
}

func blobToBytes(blob *windows.DataBlob) []byte {
	if blob.Size == 0 {
		return nil
	}
	out := make([]byte, blob.Size)
	copy(out, unsafe.Slice(blob.Data, blob.Size))
	return out
}

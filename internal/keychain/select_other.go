// ABOUTME: Platform cipher selection for hosts without a vault or DPAPI equivalent
// ABOUTME: Falls back to plaintext inline storage guarded by file permissions

//go:build !darwin && !windows

package keychain

func platformCipher() Cipher {
	return NewPlaintextCipher()
}

// ABOUTME: Platform cipher selection for macOS
// ABOUTME: macOS gets the keychain-backed vault cipher

package keychain

func platformCipher() Cipher {
	return NewKeyringCipher()
}

// ABOUTME: Platform cipher selection for Windows
// ABOUTME: Windows gets the user-scoped DPAPI cipher

package keychain

func platformCipher() Cipher {
	return NewDPAPICipher()
}

// Package keychain encrypts and decrypts stored API keys using whatever the
// host operating system provides.
//
// # Backends
//
// Exactly one backend is selected at construction time via New and never
// mixed within a single key store:
//
//   - macOS: the system keychain via the OS credential vault. Secrets are
//     addressed by (ServiceName, record id); the metadata record carries no
//     ciphertext at all.
//   - Windows: DPAPI with user scope and no extra entropy. The ciphertext
//     is base64-encoded and stored inline in the metadata record.
//   - Everything else: plaintext inline storage. No encryption is applied;
//     the key store compensates with owner-only file permissions. This is a
//     deliberate degraded fallback, not an oversight.
//
// # Failure Semantics
//
// OS credential backends do not fail transiently the way network calls do,
// so no backend retries. Every error names the subsystem that failed so the
// key manager can surface actionable messages.
package keychain

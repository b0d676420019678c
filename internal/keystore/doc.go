// Package keystore manages the on-disk registry of Iterable API keys.
//
// # Architecture
//
// Three layers, leaf-first:
//
//   - lock: an ephemeral pid-stamped lock file created atomically next to
//     the store file. Guards against a second process mutating the store
//     concurrently. Stale locks (dead owner, or older than five minutes)
//     are reclaimed; live contention fails closed after about one second.
//   - metaStore: file I/O for the JSON store. Owner-only permissions,
//     backup-before-overwrite, corrupt JSON is a fatal load error rather
//     than a silent reset.
//   - Manager: orchestration. Validates input, generates ids, enforces the
//     name-uniqueness and at-most-one-active invariants, dispatches secret
//     material to the platform keychain backend, and reconciles orphaned
//     metadata without ever deleting data automatically.
//
// # Data Model
//
// The store file holds {version, keys: []KeyRecord}. Each record binds one
// credential to one endpoint and optionally carries per-key permission
// overrides. At most one record is active; the first record added is
// activated automatically.
//
// # Error Handling
//
// Sentinel errors distinguish the four failure classes:
//
//   - validation: ErrEmptyName, ErrInvalidSecret, ErrInvalidEndpoint
//   - not found: ErrNotFound, ErrNoActiveKey
//   - invariant violation: ErrDuplicateName, ErrKeyActive
//   - infrastructure: ErrLockTimeout, wrapped keychain errors
//
// Validation and invariant errors are raised before any mutation; the store
// is left untouched.
package keystore

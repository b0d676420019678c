// ABOUTME: Data types and sentinel errors for the key store
// ABOUTME: Defines KeyRecord, the persisted store shape, and the error taxonomy

package keystore

import (
	"errors"
	"time"
)

// storeVersion is the schema version written to new store files.
const storeVersion = 1

// Permission override keys recognized in KeyRecord.Env. The same names are
// read from the process environment as session-level fallbacks.
const (
	EnvUserPII      = "ITERABLE_USER_PII"
	EnvEnableWrites = "ITERABLE_ENABLE_WRITES"
	EnvEnableSends  = "ITERABLE_ENABLE_SENDS"
)

// ErrNotFound is returned when no record matches the given id or name.
var ErrNotFound = errors.New("key not found")

// ErrNoActiveKey is returned when an operation needs the active key and no
// record is active (empty store).
var ErrNoActiveKey = errors.New("no active key configured")

// ErrDuplicateName is returned when adding a key whose name is already taken.
var ErrDuplicateName = errors.New("a key with this name already exists")

// ErrKeyActive is returned when deleting the currently active key. Activate
// a different key first.
var ErrKeyActive = errors.New("key is currently active")

// ErrEmptyName is returned when adding a key with an empty name.
var ErrEmptyName = errors.New("key name must not be empty")

// ErrInvalidSecret is returned when the API key does not match the expected
// lexical shape (32 lowercase hex characters).
var ErrInvalidSecret = errors.New("API key must be 32 lowercase hex characters")

// ErrInvalidEndpoint is returned when the endpoint is not an https URL or a
// loopback http URL.
var ErrInvalidEndpoint = errors.New("endpoint must use https (or http to a loopback host)")

// ErrLockTimeout is returned when another live process holds the store lock
// for the whole retry budget. The caller should retry once that process
// finishes, or remove the lock file manually if it is known to be abandoned.
var ErrLockTimeout = errors.New("store is locked by another process")

// KeyRecord is one stored credential. Secret material is carried inline
// only on platforms without a credential vault: APIKey holds plaintext on
// the permission-guarded fallback, EncryptedAPIKey holds the DPAPI blob on
// Windows. On vault-backed platforms both are empty and the secret lives in
// the OS keychain addressed by ID.
type KeyRecord struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	BaseURL         string            `json:"baseUrl"`
	Created         time.Time         `json:"created"`
	Updated         *time.Time        `json:"updated,omitempty"`
	IsActive        bool              `json:"isActive"`
	Env             map[string]string `json:"env,omitempty"`
	APIKey          string            `json:"apiKey,omitempty"`
	EncryptedAPIKey string            `json:"encryptedApiKey,omitempty"`
}

// clone returns a deep copy of the record.
func (r *KeyRecord) clone() *KeyRecord {
	out := *r
	if r.Updated != nil {
		u := *r.Updated
		out.Updated = &u
	}
	if r.Env != nil {
		out.Env = make(map[string]string, len(r.Env))
		for k, v := range r.Env {
			out.Env[k] = v
		}
	}
	return &out
}

// redacted returns a copy with all secret material stripped, for listing.
func (r *KeyRecord) redacted() *KeyRecord {
	out := r.clone()
	out.APIKey = ""
	out.EncryptedAPIKey = ""
	return out
}

// storeData is the persisted shape of the store file. Keys is a slice so
// listing preserves insertion order.
type storeData struct {
	Version int          `json:"version"`
	Keys    []*KeyRecord `json:"keys"`
}

// findByID returns the record with the given id, or nil.
func (d *storeData) findByID(id string) *KeyRecord {
	for _, k := range d.Keys {
		if k.ID == id {
			return k
		}
	}
	return nil
}

// findByName returns the record with the given name (exact match), or nil.
func (d *storeData) findByName(name string) *KeyRecord {
	for _, k := range d.Keys {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// resolve looks a record up by id first, then by exact name.
func (d *storeData) resolve(idOrName string) *KeyRecord {
	if rec := d.findByID(idOrName); rec != nil {
		return rec
	}
	return d.findByName(idOrName)
}

// active returns the active record, or nil for an empty store.
func (d *storeData) active() *KeyRecord {
	for _, k := range d.Keys {
		if k.IsActive {
			return k
		}
	}
	return nil
}

// ABOUTME: Key Manager orchestrating the metadata store and keychain backend
// ABOUTME: Validates input, enforces store invariants, and reconciles orphaned records

package keystore

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iterable-tools/iterable-mcp/internal/keychain"
)

// secretPattern is the lexical shape of an Iterable API key.
var secretPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// loopbackHosts are the http endpoints allowed without TLS, for local
// development against a stub API.
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Manager is the single entry point for key lifecycle operations. Construct
// one per process with NewManager and pass it by reference; the store
// location and crypto backend are fixed at construction.
type Manager struct {
	meta   *metaStore
	cipher keychain.Cipher
	logger *slog.Logger

	// mu serializes in-process mutations so two in-flight saves never race
	// each other. Cross-process exclusion is the lock file's job.
	mu   sync.Mutex
	data *storeData // nil until first use
}

// NewManager creates a key manager storing metadata under dir and secret
// material in the given keychain backend.
func NewManager(dir string, cipher keychain.Cipher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		meta:   newMetaStore(dir, logger),
		cipher: cipher,
		logger: logger.With("component", "keys"),
	}
}

// ensureLoadedLocked lazily initializes the store. Caller holds m.mu.
func (m *Manager) ensureLoadedLocked() error {
	if m.data != nil {
		return nil
	}
	data, err := m.meta.init()
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// mutate runs fn against the freshest store content under both the
// in-process mutex and the cross-process file lock, then persists. The
// on-disk state is re-read under the lock so a concurrent process's write
// between our load and save cannot be clobbered. fn must validate before
// touching any record so a failed call leaves the store byte-identical.
func (m *Manager) mutate(fn func(*storeData) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoadedLocked(); err != nil {
		return err
	}

	release, err := m.meta.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	data, err := m.meta.load()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	if err := m.meta.save(data); err != nil {
		return err
	}
	m.data = data
	return nil
}

// snapshot returns the in-memory store, loading it on first use.
func (m *Manager) snapshot() (*storeData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return m.data, nil
}

// AddKey validates and stores a new credential, returning its generated id.
// The first key added to an empty store becomes active automatically.
func (m *Manager) AddKey(name, secret, endpoint string, overrides map[string]string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	if !secretPattern.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	if err := validateEndpoint(endpoint); err != nil {
		return "", err
	}

	id := uuid.New().String()

	err := m.mutate(func(data *storeData) error {
		return m.insertKey(data, id, name, secret, endpoint, overrides)
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("added API key", "id", id, "name", name, "endpoint", endpoint)
	return id, nil
}

// insertKey encrypts the secret and appends a new record. Caller holds the
// store lock via mutate and has already validated the inputs.
func (m *Manager) insertKey(data *storeData, id, name, secret, endpoint string, overrides map[string]string) error {
	if data.findByName(name) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	blob, err := m.cipher.Encrypt(id, secret)
	if err != nil {
		return err
	}

	rec := &KeyRecord{
		ID:       id,
		Name:     name,
		BaseURL:  endpoint,
		Created:  time.Now().UTC(),
		IsActive: len(data.Keys) == 0,
	}
	if len(overrides) > 0 {
		rec.Env = make(map[string]string, len(overrides))
		for k, v := range overrides {
			rec.Env[k] = v
		}
	}
	m.placeBlob(rec, blob)

	data.Keys = append(data.Keys, rec)
	return nil
}

// placeBlob stores the cipher output in the record field matching the
// backend's storage mode. Vault-backed records carry no inline material.
func (m *Manager) placeBlob(rec *KeyRecord, blob string) {
	rec.APIKey = ""
	rec.EncryptedAPIKey = ""
	switch m.cipher.Mode() {
	case keychain.ModePlain:
		rec.APIKey = blob
	case keychain.ModeEncrypted:
		rec.EncryptedAPIKey = blob
	}
}

// inlineBlob returns the record field holding inline secret material for
// the current backend.
func (m *Manager) inlineBlob(rec *KeyRecord) string {
	switch m.cipher.Mode() {
	case keychain.ModePlain:
		return rec.APIKey
	case keychain.ModeEncrypted:
		return rec.EncryptedAPIKey
	default:
		return ""
	}
}

// ListKeys returns all records in insertion order with secret material
// stripped.
func (m *Manager) ListKeys() ([]*KeyRecord, error) {
	data, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*KeyRecord, len(data.Keys))
	for i, rec := range data.Keys {
		out[i] = rec.redacted()
	}
	return out, nil
}

// GetKey resolves a record by id first, then by exact name, and returns its
// plaintext secret. Returns ErrNotFound when no record matches. A backend
// failure for a record that metadata says exists is a hard error, not a
// not-found: it usually signals keychain desync and must be surfaced.
func (m *Manager) GetKey(idOrName string) (string, error) {
	data, err := m.snapshot()
	if err != nil {
		return "", err
	}
	rec := data.resolve(idOrName)
	if rec == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	secret, err := m.cipher.Decrypt(rec.ID, m.inlineBlob(rec))
	if err != nil {
		return "", fmt.Errorf("retrieving secret for key %q: %w", rec.Name, err)
	}
	return secret, nil
}

// GetActiveKey returns the active record's plaintext secret, or
// ErrNoActiveKey for an empty store.
func (m *Manager) GetActiveKey() (string, error) {
	data, err := m.snapshot()
	if err != nil {
		return "", err
	}
	rec := data.active()
	if rec == nil {
		return "", ErrNoActiveKey
	}
	secret, err := m.cipher.Decrypt(rec.ID, m.inlineBlob(rec))
	if err != nil {
		return "", fmt.Errorf("retrieving secret for active key %q: %w", rec.Name, err)
	}
	return secret, nil
}

// GetKeyMetadata resolves a record by id first, then by exact name, and
// returns it with secret material stripped.
func (m *Manager) GetKeyMetadata(idOrName string) (*KeyRecord, error) {
	data, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	rec := data.resolve(idOrName)
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	return rec.redacted(), nil
}

// GetActiveKeyMetadata returns the active record with secrets stripped, or
// ErrNoActiveKey if nothing is active.
func (m *Manager) GetActiveKeyMetadata() (*KeyRecord, error) {
	data, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	rec := data.active()
	if rec == nil {
		return nil, ErrNoActiveKey
	}
	return rec.redacted(), nil
}

// SetActiveKey marks exactly one record active, deactivating all others in
// the same store write. The store-wide flip inside a single locked save is
// what keeps the at-most-one-active invariant across crashes.
func (m *Manager) SetActiveKey(idOrName string) error {
	err := m.mutate(func(data *storeData) error {
		target := data.resolve(idOrName)
		if target == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, idOrName)
		}
		now := time.Now().UTC()
		for _, rec := range data.Keys {
			was := rec.IsActive
			rec.IsActive = rec.ID == target.ID
			if rec.IsActive != was {
				rec.Updated = &now
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("switched active API key", "key", idOrName)
	return nil
}

// DeleteKey removes a record by id. Deletion is id-only: the destructive
// path never resolves by name. The active key cannot be deleted; activate
// another key first. On vault-backed platforms a
// failed vault removal is logged and the metadata record is removed anyway,
// because a stray vault entry is recoverable while a delete that refuses to
// delete is a worse outcome.
func (m *Manager) DeleteKey(id string) error {
	var name string
	err := m.mutate(func(data *storeData) error {
		idx := -1
		for i, rec := range data.Keys {
			if rec.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		rec := data.Keys[idx]
		if rec.IsActive {
			return fmt.Errorf("%w: activate another key before deleting %q", ErrKeyActive, rec.Name)
		}

		if err := m.cipher.Delete(rec.ID); err != nil {
			m.logger.Warn("failed to remove secret from keychain; deleting metadata anyway",
				"id", rec.ID,
				"name", rec.Name,
				"error", err,
			)
		}

		name = rec.Name
		data.Keys = append(data.Keys[:idx], data.Keys[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("deleted API key", "id", id, "name", name)
	return nil
}

// UpdateKeyEnv shallow-merges new permission overrides into the record's
// existing ones. Secret and endpoint are not re-validated; they are not
// touched.
func (m *Manager) UpdateKeyEnv(idOrName string, overrides map[string]string) error {
	return m.mutate(func(data *storeData) error {
		rec := data.resolve(idOrName)
		if rec == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, idOrName)
		}
		if rec.Env == nil {
			rec.Env = make(map[string]string, len(overrides))
		}
		for k, v := range overrides {
			rec.Env[k] = v
		}
		now := time.Now().UTC()
		rec.Updated = &now
		return nil
	})
}

// FindKeyByValue scans all records for one whose stored secret equals the
// given value, used to catch accidental duplicate-credential storage.
// Returns (nil, nil) when no record matches. A retrieval failure on a
// single record is skipped so one corrupted entry doesn't block the scan.
func (m *Manager) FindKeyByValue(secret string) (*KeyRecord, error) {
	data, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	for _, rec := range data.Keys {
		stored, err := m.cipher.Decrypt(rec.ID, m.inlineBlob(rec))
		if err != nil {
			m.logger.Warn("skipping unreadable key during duplicate scan",
				"id", rec.ID,
				"name", rec.Name,
				"error", err,
			)
			continue
		}
		if stored == secret {
			return rec.redacted(), nil
		}
	}
	return nil, nil
}

// MigrateLegacyKey imports a credential supplied via the legacy environment
// variables. Idempotent: if a record with the given name already exists its
// id is returned unchanged. The name check runs under the store lock
// against fresh disk state, so a concurrent import of the same name
// resolves to the existing id rather than a duplicate-name error.
func (m *Manager) MigrateLegacyKey(secret, endpoint, name string) (string, error) {
	if name == "" {
		name = "default"
	}

	var id string
	var imported bool
	err := m.mutate(func(data *storeData) error {
		if rec := data.findByName(name); rec != nil {
			id = rec.ID
			imported = false
			return nil
		}
		if !secretPattern.MatchString(secret) {
			return ErrInvalidSecret
		}
		if err := validateEndpoint(endpoint); err != nil {
			return err
		}
		id = uuid.New().String()
		imported = true
		return m.insertKey(data, id, name, secret, endpoint, nil)
	})
	if err != nil {
		return "", err
	}

	if imported {
		m.logger.Info("imported legacy API key", "id", id, "name", name, "endpoint", endpoint)
	}
	return id, nil
}

// ValidateAndCleanup probes the keychain backend for every metadata record
// and reports records whose secret cannot be located. Nothing is ever
// deleted here: a locked vault or a dismissed permission prompt looks
// identical to a missing entry, and conflating the two would destroy data.
// Detected orphans are returned for operator-facing remediation output.
func (m *Manager) ValidateAndCleanup() ([]*KeyRecord, error) {
	if m.cipher.Mode() != keychain.ModeVault {
		return nil, nil // inline backends cannot orphan metadata
	}

	data, err := m.snapshot()
	if err != nil {
		return nil, err
	}

	var orphans []*KeyRecord
	for _, rec := range data.Keys {
		err := m.cipher.Probe(rec.ID)
		if err == nil {
			continue
		}
		if errors.Is(err, keychain.ErrSecretMissing) {
			orphans = append(orphans, rec.redacted())
			continue
		}
		// Probe failed for some other reason (vault locked, access denied).
		// Not proof of an orphan; report nothing for this record.
		m.logger.Warn("keychain probe failed; cannot verify key",
			"id", rec.ID,
			"name", rec.Name,
			"error", err,
		)
	}

	if len(orphans) > 0 {
		names := make([]string, len(orphans))
		ids := make([]string, len(orphans))
		for i, rec := range orphans {
			names[i] = rec.Name
			ids[i] = rec.ID
		}
		m.logger.Warn("keys have metadata but no keychain entry; not deleting automatically",
			"names", names,
			"ids", ids,
			"remediation", "run 'iterable-mcp keys delete <id>' to drop the metadata, or restore the entry via 'security add-generic-password -s "+keychain.ServiceName+"'",
		)
	}
	return orphans, nil
}

// validateEndpoint enforces the https-or-loopback rule for key endpoints.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	switch u.Scheme {
	case "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, endpoint)
		}
		return nil
	case "http":
		if loopbackHosts[u.Hostname()] {
			return nil
		}
		return fmt.Errorf("%w: http is only allowed for loopback hosts, got %q", ErrInvalidEndpoint, u.Hostname())
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
}

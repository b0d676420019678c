// ABOUTME: File I/O layer for the key store metadata
// ABOUTME: Owner-only permissions, backup-before-overwrite, corrupt JSON is fatal

package keystore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	storeFileName  = "keys.json"
	backupFileName = "keys.json.bak"
	lockFileName   = "keys.json.lock"

	// Secret material may live inline in the store file, so both the file
	// and its directory are owner-only.
	storeFileMode = os.FileMode(0o600)
	storeDirMode  = os.FileMode(0o700)
)

// metaStore owns all file I/O for the key registry. Callers hold the lock
// (acquireLock in lock.go) around load/save pairs.
type metaStore struct {
	dir        string
	path       string
	backupPath string
	lockPath   string
	logger     *slog.Logger
}

// newMetaStore creates a metaStore rooted at dir. No I/O happens until init.
func newMetaStore(dir string, logger *slog.Logger) *metaStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &metaStore{
		dir:        dir,
		path:       filepath.Join(dir, storeFileName),
		backupPath: filepath.Join(dir, backupFileName),
		lockPath:   filepath.Join(dir, lockFileName),
		logger:     logger.With("component", "keystore"),
	}
}

// init ensures the store directory exists with owner-only permissions and
// returns the current store content, creating an empty store file if none
// exists. A store file that exists but does not parse is a fatal error:
// resetting it silently would destroy credentials.
func (s *metaStore) init() (*storeData, error) {
	if err := os.MkdirAll(s.dir, storeDirMode); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	release, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		empty := &storeData{Version: storeVersion, Keys: []*KeyRecord{}}
		if err := s.save(empty); err != nil {
			return nil, err
		}
		s.logger.Debug("created empty key store", "path", s.path)
		return empty, nil
	}

	return s.load()
}

// load reads and parses the store file. The caller holds the lock.
func (s *metaStore) load() (*storeData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading key store: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("key store at %s is corrupt (restore from %s or fix it manually): %w",
			s.path, s.backupPath, err)
	}
	if data.Keys == nil {
		data.Keys = []*KeyRecord{}
	}
	return &data, nil
}

// save writes the store file as a single whole-file write with owner-only
// permissions, backing up the previous content first. The caller holds the
// lock.
func (s *metaStore) save(data *storeData) error {
	s.backupExisting()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding key store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, storeFileMode); err != nil {
		return fmt.Errorf("writing key store: %w", err)
	}
	return nil
}

// backupExisting copies the current store file verbatim to the backup path
// when it holds at least one record. Backup failures are logged and
// swallowed: losing a backup is less bad than losing the ability to save.
func (s *metaStore) backupExisting() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return // nothing on disk yet
	}

	var existing storeData
	if err := json.Unmarshal(raw, &existing); err == nil && len(existing.Keys) == 0 {
		return // empty store, nothing worth backing up
	}

	if err := os.WriteFile(s.backupPath, raw, storeFileMode); err != nil {
		s.logger.Warn("failed to write store backup", "path", s.backupPath, "error", err)
	}
}

// ABOUTME: Cross-process file lock for the key store
// ABOUTME: Atomic O_EXCL creation, bounded polling, and stale lock reclamation

package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// lockRetries * lockRetryDelay bounds acquisition at roughly one second.
	lockRetries    = 20
	lockRetryDelay = 50 * time.Millisecond

	// lockStaleAge is the ceiling past which a lock is reclaimable even if
	// its owner pid still appears alive.
	lockStaleAge = 5 * time.Minute
)

// lockInfo is the JSON content of the lock file.
type lockInfo struct {
	PID     int   `json:"pid"`
	Created int64 `json:"created"` // epoch millis
}

// acquireLock creates the lock file atomically, polling on contention.
// Stale locks (dead owner or past the age ceiling) are deleted and retried
// immediately. If a live, fresh lock holds out for the whole budget the
// acquisition fails closed with ErrLockTimeout.
func (s *metaStore) acquireLock() (release func(), err error) {
	for attempt := 0; attempt < lockRetries; attempt++ {
		if err := s.tryCreateLock(); err == nil {
			return s.releaseLock, nil
		} else if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}

		if s.reclaimStaleLock() {
			continue // retry immediately, no need to wait out the budget
		}
		time.Sleep(lockRetryDelay)
	}
	return nil, fmt.Errorf("%w (lock file: %s)", ErrLockTimeout, s.lockPath)
}

// tryCreateLock atomically creates the lock file. O_EXCL makes creation the
// test: there is no separate exists-check to race against.
func (s *metaStore) tryCreateLock() error {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	info := lockInfo{PID: os.Getpid(), Created: time.Now().UnixMilli()}
	if encErr := json.NewEncoder(f).Encode(info); encErr != nil {
		f.Close()
		os.Remove(s.lockPath)
		return fmt.Errorf("writing lock file: %w", encErr)
	}
	return f.Close()
}

// reclaimStaleLock inspects the current lock holder and deletes the lock if
// the owning process is dead or the lock is past the age ceiling. Reports
// whether the lock was removed.
func (s *metaStore) reclaimStaleLock() bool {
	data, err := os.ReadFile(s.lockPath)
	if err != nil {
		// Holder may have released between our create attempt and now
		return os.IsNotExist(err)
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// The file becomes visible at O_EXCL create, before its content
		// lands, so unreadable content can be a live holder mid-creation.
		// Reclaim only once the file itself is past the age ceiling.
		return s.reclaimUnreadableLock(err)
	}

	age := time.Since(time.UnixMilli(info.Created))
	if pidAlive(info.PID) && age < lockStaleAge {
		return false
	}

	s.logger.Warn("reclaiming stale store lock",
		"path", s.lockPath,
		"owner_pid", info.PID,
		"age", age,
	)
	return os.Remove(s.lockPath) == nil
}

// reclaimUnreadableLock age-gates a lock whose content cannot be parsed on
// the file's mtime, the only signal left when the owner pid is unknown.
func (s *metaStore) reclaimUnreadableLock(parseErr error) bool {
	fi, err := os.Stat(s.lockPath)
	if err != nil {
		return os.IsNotExist(err)
	}
	age := time.Since(fi.ModTime())
	if age < lockStaleAge {
		return false
	}
	s.logger.Warn("removing unreadable lock file",
		"path", s.lockPath,
		"age", age,
		"error", parseErr,
	)
	return os.Remove(s.lockPath) == nil
}

// releaseLock deletes the lock file, but only if it still names our own
// pid. A lock reclaimed by another session is never stolen back.
func (s *metaStore) releaseLock() {
	data, err := os.ReadFile(s.lockPath)
	if err != nil {
		return
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return
	}
	if info.PID != os.Getpid() {
		s.logger.Warn("not releasing lock owned by another process",
			"path", s.lockPath,
			"owner_pid", info.PID,
		)
		return
	}
	if err := os.Remove(s.lockPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove lock file", "path", s.lockPath, "error", err)
	}
}

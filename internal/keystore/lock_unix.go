// ABOUTME: Process liveness check for lock reclamation on Unix hosts
// ABOUTME: Signal 0 probes existence without delivering anything

//go:build !windows

package keystore

import (
	"errors"

	"golang.org/x/sys/unix"
)

// pidAlive reports whether a process with the given pid exists. EPERM means
// the process exists but belongs to another user, which still counts as
// alive for lock purposes.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

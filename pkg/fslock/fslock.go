// Package fslock provides a cross-process advisory lock backed by a lock
// file. The holder's PID is written into the file so a lock left behind by a
// crashed process can be detected and broken instead of blocking forever.
package fslock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	initialBackoff = 10 * time.Millisecond
	maxBackoff     = 250 * time.Millisecond

	// unreadableGrace is how old a lock file without a parsable PID must be
	// before it is broken. A file that young may belong to a foreign locker
	// that has not finished writing its PID yet; one older is crash debris.
	unreadableGrace = 2 * time.Second
)

// Lock is a file-based mutual exclusion primitive. It serializes access
// across processes; callers still need an in-process mutex for goroutines
// sharing one Lock.
type Lock struct {
	path string
}

// New creates a lock manager for the given lock file path.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Acquire blocks until the lock is held or the context is done. Contention
// is retried with backoff. A lock file owned by a process that no longer
// exists is treated as stale and removed.
func (l *Lock) Acquire(ctx context.Context) error {
	backoff := initialBackoff
	for {
		ok, err := l.tryAcquire()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", l.path, ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// tryAcquire attempts a single atomic lock file creation. The PID is staged
// in a temp file and linked into place, so the lock file is never visible
// without its owner recorded. Returns false without error when the lock is
// held by a live process.
func (l *Lock) tryAcquire() (bool, error) {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), "."+filepath.Base(l.path)+"-")
	if err != nil {
		return false, fmt.Errorf("stage lock file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, writeErr := fmt.Fprintf(tmp, "%d", os.Getpid())
	closeErr := tmp.Close()
	if writeErr != nil {
		return false, fmt.Errorf("write lock file: %w", writeErr)
	}
	if closeErr != nil {
		return false, fmt.Errorf("write lock file: %w", closeErr)
	}

	linkErr := os.Link(tmp.Name(), l.path)
	if linkErr == nil {
		return true, nil
	}
	if !os.IsExist(linkErr) {
		return false, fmt.Errorf("create lock file: %w", linkErr)
	}

	// Lock file exists. Break it only if the holder is provably gone.
	data, readErr := os.ReadFile(l.path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return false, nil // released between the two calls, retry
		}
		return false, fmt.Errorf("read lock file: %w", readErr)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		info, statErr := os.Stat(l.path)
		if statErr != nil || time.Since(info.ModTime()) < unreadableGrace {
			return false, nil
		}
	} else if processAlive(pid) {
		return false, nil
	}

	// Stale owner. Remove and let the next iteration race for it.
	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return false, fmt.Errorf("remove stale lock file: %w", removeErr)
	}
	return false, nil
}

// Release removes the lock file. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// processAlive checks for process existence with signal 0.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

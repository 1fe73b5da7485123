// Package markdown implements the mission document store. It owns both
// guard layers around the backing file: an in-process mutex for goroutines
// and a cross-process lock file for sibling processes. Every mutation runs a
// full read-modify-write cycle under both and persists with an atomic
// write-replace, so no reader ever observes a partial document.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/pkg/fslock"
)

// Store is the durable home of a single mission document.
type Store struct {
	path string
	mu   sync.Mutex
	lock *fslock.Lock
	log  zerolog.Logger
}

// New creates a store for the mission file at path. The cross-process lock
// file lives next to the document.
func New(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		lock: fslock.New(path + ".lock"),
		log:  log.With().Str("component", "mission-store").Logger(),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Snapshot reads the document without taking the guard. Display readers
// accept staleness; mutators must go through Update instead. A missing or
// blank file yields the default skeleton.
func (s *Store) Snapshot() (*mission.Document, error) {
	content, err := s.read()
	if err != nil {
		return nil, err
	}
	return mission.Parse(content), nil
}

// Update runs fn against the parsed document under both guard layers and
// persists the result atomically. Returning an error from fn aborts the
// write and leaves the file untouched.
func (s *Store) Update(ctx context.Context, fn func(*mission.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			s.log.Warn().Err(err).Msg("release mission lock")
		}
	}()

	content, err := s.read()
	if err != nil {
		return err
	}

	doc := mission.Parse(content)
	if err := fn(doc); err != nil {
		return err
	}

	return s.writeAtomic(doc.String())
}

// read returns the raw file content, empty for a missing file.
func (s *Store) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read mission file: %w", err)
	}
	return string(data), nil
}

// writeAtomic persists content via a temp file in the same directory,
// fsync, and rename. The original document is never touched before the
// rename succeeds.
func (s *Store) writeAtomic(content string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mission dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ronin-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace mission file: %w", err)
	}
	return nil
}

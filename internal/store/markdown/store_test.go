package markdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roninhq/ronin/internal/core/mission"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "missions.md"), zerolog.New(io.Discard))
}

func TestUpdateCreatesFileLazily(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(context.Background(), func(doc *mission.Document) error {
		mission.Insert(doc, "- [project:webapp] fix bug", false, time.Now())
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "## Pending")
	assert.Contains(t, content, "- [project:webapp] fix bug ⏳(")
}

func TestSnapshotMissingFileYieldsSkeleton(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Snapshot()
	require.NoError(t, err)
	assert.NotNil(t, doc.Section(mission.SectionPending))
	assert.NotNil(t, doc.Section(mission.SectionDone))
}

func TestUpdateErrorLeavesFileUntouched(t *testing.T) {
	s := newTestStore(t)
	original := "# Missions\n\n## Pending\n\n- keep me\n\n## In Progress\n\n## Done\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(original), 0o644))

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(doc *mission.Document) error {
		mission.Insert(doc, "- should not persist", false, time.Now())
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestUpdateReleasesLock(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Update(context.Background(), func(*mission.Document) error { return nil }))

	_, err := os.Stat(s.Path() + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateNoTempFileLeftBehind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update(context.Background(), func(*mission.Document) error { return nil }))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".ronin-"), "temp file left behind: %s", e.Name())
	}
}

func TestConcurrentInsertsNoLoss(t *testing.T) {
	s := newTestStore(t)

	const producers = 8
	var wg sync.WaitGroup
	for i := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(context.Background(), func(doc *mission.Document) error {
				mission.Insert(doc, fmt.Sprintf("- task %d", i), false, time.Now())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := s.Snapshot()
	require.NoError(t, err)
	entries := doc.Section(mission.SectionPending).Entries()
	require.Len(t, entries, producers)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Text], "duplicate entry %q", e.Text)
		seen[e.Text] = true
		assert.False(t, e.QueuedAt.IsZero(), "entry %q missing queued stamp", e.Text)
	}
}

func TestUpdateRoundTripsForeignContent(t *testing.T) {
	s := newTestStore(t)
	content := "# Missions\nhand-written note\n\n## Pending\n\n- task\n\n## Scratchpad\nkeep this verbatim\n\n## Done\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	require.NoError(t, s.Update(context.Background(), func(*mission.Document) error { return nil }))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

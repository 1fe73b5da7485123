package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roninhq/ronin/internal/store/markdown"
	"github.com/roninhq/ronin/pkg/tuitest"
)

func newTestModel(t *testing.T, content string) WatchModel {
	t.Helper()

	path := filepath.Join(t.TempDir(), "missions.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := NewWatch(markdown.New(path, zerolog.Nop()))
	m.now = func() time.Time { return time.Date(2026, 1, 2, 10, 30, 0, 0, time.Local) }

	msg := m.load()
	updated, _ := m.Update(msg)
	return updated.(WatchModel)
}

func TestWatchView_RendersSections(t *testing.T) {
	content := "# Missions\n\n## Pending\n\n- Fix login [project:webapp]\n\n## In Progress\n\n- Ship release ▶(2026-01-02T10:00)\n\n## Done\n"
	m := newTestModel(t, content)

	view := tuitest.StripANSI(m.View())

	assert.Contains(t, view, "Pending (1)")
	assert.Contains(t, view, "Fix login")
	assert.Contains(t, view, "[webapp]")
	assert.Contains(t, view, "In Progress (1)")
	assert.Contains(t, view, "running 30m")
	assert.Contains(t, view, "Done (0)")
}

func TestWatchView_EmptyFileShowsSkeletonSections(t *testing.T) {
	m := newTestModel(t, "")

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Pending (0)")
	assert.Contains(t, view, "In Progress (0)")
}

func TestWatch_QuitKeys(t *testing.T) {
	m := newTestModel(t, "")

	for _, key := range []string{"q", "ctrl+c", "esc"} {
		var msg tea.Msg
		switch key {
		case "q":
			msg = tuitest.KeyPress("q")
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}

		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, key)
		assert.Equal(t, tea.Quit(), cmd(), key)
	}
}

func TestWatch_RefreshPicksUpChanges(t *testing.T) {
	m := newTestModel(t, "# Missions\n\n## Pending\n\n## In Progress\n\n## Done\n")

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Pending (0)")

	// Another process appends a mission, then a tick refreshes the view.
	require.NoError(t, os.WriteFile(m.store.Path(), []byte("# Missions\n\n## Pending\n\n- New work\n\n## In Progress\n\n## Done\n"), 0o644))

	updated, _ := m.Update(m.load())
	m = updated.(WatchModel)

	view = tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Pending (1)")
	assert.Contains(t, view, "New work")
}

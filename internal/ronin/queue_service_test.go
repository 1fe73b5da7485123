package ronin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roninhq/ronin/internal/core/eventbus"
	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/internal/store/markdown"
)

func newTestQueue(t *testing.T) (*QueueService, *eventbus.EventBus, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "missions.md")
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	store := markdown.New(path, zerolog.Nop())
	svc := NewQueueService(store, bus, zerolog.Nop())
	return svc, bus, path
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		panic("unreachable")
	}
}

func TestQueueService_AddPublishesEvent(t *testing.T) {
	svc, bus, path := newTestQueue(t)
	ctx := context.Background()

	events := make(chan eventbus.MissionQueuedPayload, 1)
	bus.SubscribeMissionQueued(func(p eventbus.MissionQueuedPayload) { events <- p })

	entry, err := svc.Add(ctx, "Fix the login bug [project:webapp]", false)
	require.NoError(t, err)
	assert.Equal(t, "webapp", entry.Project)
	assert.False(t, entry.QueuedAt.IsZero())

	got := waitFor(t, events)
	assert.Equal(t, entry.Text, got.Entry.Text)
	assert.False(t, got.Urgent)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fix the login bug")
}

func TestQueueService_AddEmptyIsNoop(t *testing.T) {
	svc, _, path := newTestQueue(t)

	entry, err := svc.Add(context.Background(), "   ", false)
	require.NoError(t, err)
	assert.Empty(t, entry.Text)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "- ")
}

func TestQueueService_Lifecycle(t *testing.T) {
	svc, bus, _ := newTestQueue(t)
	ctx := context.Background()

	started := make(chan eventbus.MissionStartedPayload, 1)
	completed := make(chan eventbus.MissionCompletedPayload, 1)
	bus.SubscribeMissionStarted(func(p eventbus.MissionStartedPayload) { started <- p })
	bus.SubscribeMissionCompleted(func(p eventbus.MissionCompletedPayload) { completed <- p })

	_, err := svc.Add(ctx, "Write release notes", false)
	require.NoError(t, err)

	next, ok, err := svc.Next(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Write release notes", next.Text)

	moved, err := svc.Start(ctx, "release notes")
	require.NoError(t, err)
	require.True(t, moved)
	assert.Contains(t, waitFor(t, started).Entry.Text, "release notes")

	moved, err = svc.Complete(ctx, "release notes")
	require.NoError(t, err)
	require.True(t, moved)

	done := waitFor(t, completed).Entry
	assert.Contains(t, done.Text, "release notes")
	assert.False(t, done.CompletedAt.IsZero())

	// The queue is drained.
	_, ok, err = svc.Next(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueService_FailMovesToFailed(t *testing.T) {
	svc, bus, _ := newTestQueue(t)
	ctx := context.Background()

	failed := make(chan eventbus.MissionFailedPayload, 1)
	bus.SubscribeMissionFailed(func(p eventbus.MissionFailedPayload) { failed <- p })

	_, err := svc.Add(ctx, "Flaky deploy", false)
	require.NoError(t, err)
	_, err = svc.Start(ctx, "Flaky deploy")
	require.NoError(t, err)

	moved, err := svc.Fail(ctx, "Flaky deploy")
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, mission.OutcomeFailure, waitFor(t, failed).Entry.Outcome)

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries[mission.SectionFailed], 1)
}

func TestQueueService_EntriesGroupsBySection(t *testing.T) {
	svc, _, path := newTestQueue(t)
	ctx := context.Background()

	content := "# Missions\n\n## Pending\n\n- waiting task\n\n## In Progress\n\n- running task ▶(2026-02-12T04:20)\n\n## Scratchpad\n\n- hand-written note\n\n## Done\n\n- finished task ✅ (2026-02-12 04:30)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)

	require.Len(t, entries[mission.SectionPending], 1)
	assert.Equal(t, "waiting task", entries[mission.SectionPending][0].Text)
	require.Len(t, entries[mission.SectionInProgress], 1)
	require.Len(t, entries[mission.SectionDone], 1)

	// Unrecognized sections are not surfaced.
	assert.Len(t, entries, 3)
}

func TestQueueService_TransitionNoMatch(t *testing.T) {
	svc, _, _ := newTestQueue(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Real mission", false)
	require.NoError(t, err)

	moved, err := svc.Start(ctx, "no such mission")
	require.NoError(t, err)
	assert.False(t, moved)

	// The real mission is still pending.
	_, ok, err := svc.Next(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQueueService_NextFiltersByProject(t *testing.T) {
	svc, _, _ := newTestQueue(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Webapp work [project:webapp]", false)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "API work [project:api]", false)
	require.NoError(t, err)

	entry, ok, err := svc.Next(ctx, "api")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "api", entry.Project)
}

func TestQueueService_RecoverPublishesCount(t *testing.T) {
	svc, bus, path := newTestQueue(t)
	ctx := context.Background()

	recovered := make(chan eventbus.MissionsRecoveredPayload, 1)
	bus.SubscribeMissionsRecovered(func(p eventbus.MissionsRecoveredPayload) { recovered <- p })

	content := "# Missions\n\n## Pending\n\n## In Progress\n\n- Interrupted one ▶(2026-01-02T10:00)\n- Interrupted two ▶(2026-01-02T10:05)\n\n## Done\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	count, err := svc.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, waitFor(t, recovered).Count)

	// Second sweep finds nothing and publishes nothing.
	count, err = svc.Recover(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestQueueService_UrgentJumpsQueue(t *testing.T) {
	svc, _, _ := newTestQueue(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "First in", false)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Emergency", true)
	require.NoError(t, err)

	entry, ok, err := svc.Next(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Emergency", entry.Text)
}

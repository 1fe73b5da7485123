package ronin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roninhq/ronin/internal/core/config"
	"github.com/roninhq/ronin/internal/core/eventbus"
	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/internal/store/markdown"
	"github.com/roninhq/ronin/pkg/executil"
)

func newTestRunner(t *testing.T, shell executil.Shell, cfg *config.Config) (*Runner, *QueueService, string) {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.InstanceDir == "" {
		cfg.InstanceDir = t.TempDir()
	}
	if cfg.Agent.Command == "" {
		cfg.Agent.Command = `agent "$RONIN_MISSION"`
	}

	bus := eventbus.New()
	t.Cleanup(bus.Close)

	store := markdown.New(cfg.MissionsFile(), zerolog.Nop())
	queue := NewQueueService(store, bus, zerolog.Nop())
	return NewRunner(queue, cfg, shell, zerolog.Nop()), queue, cfg.MissionsFile()
}

func TestRunner_CompletesMission(t *testing.T) {
	shell := &executil.RecordingShell{}
	cfg := &config.Config{Runner: config.RunnerConfig{MaxRuns: 1}}
	runner, queue, path := newTestRunner(t, shell, cfg)
	ctx := context.Background()

	_, err := queue.Add(ctx, "Ship the release [project:webapp]", false)
	require.NoError(t, err)

	require.NoError(t, runner.Run(ctx))

	require.Len(t, shell.Requests, 1)
	req := shell.Requests[0]
	assert.Equal(t, cfg.Agent.Command, req.Command)
	assert.Contains(t, req.Env, "RONIN_MISSION=Ship the release")
	assert.Contains(t, req.Env, "RONIN_PROJECT=webapp")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := mission.Parse(string(data))
	done := doc.Section(mission.SectionDone)
	require.NotNil(t, done)
	require.Len(t, done.Entries(), 1)
	assert.Equal(t, mission.OutcomeSuccess, done.Entries()[0].Outcome)
}

func TestRunner_AgentFailureFailsMission(t *testing.T) {
	shell := &executil.RecordingShell{Err: errors.New("exit status 1")}
	cfg := &config.Config{Runner: config.RunnerConfig{MaxRuns: 1}}
	runner, queue, path := newTestRunner(t, shell, cfg)
	ctx := context.Background()

	_, err := queue.Add(ctx, "Doomed deploy", false)
	require.NoError(t, err)

	require.NoError(t, runner.Run(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := mission.Parse(string(data))
	failed := doc.Section(mission.SectionFailed)
	require.NotNil(t, failed)
	assert.Len(t, failed.Entries(), 1)
}

func TestRunner_RecoversInterruptedMissionsFirst(t *testing.T) {
	shell := &executil.RecordingShell{}
	cfg := &config.Config{Runner: config.RunnerConfig{MaxRuns: 1}}
	runner, _, path := newTestRunner(t, shell, cfg)

	content := "# Missions\n\n## Pending\n\n## In Progress\n\n- Crashed mid-run ▶(2026-01-02T10:00)\n\n## Done\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, runner.Run(context.Background()))

	// The interrupted mission was swept back to Pending and then executed.
	require.Len(t, shell.Requests, 1)
	assert.Contains(t, shell.Requests[0].Env, "RONIN_MISSION=Crashed mid-run")
}

func TestRunner_HonorsRunLimit(t *testing.T) {
	shell := &executil.RecordingShell{}
	cfg := &config.Config{Runner: config.RunnerConfig{MaxRuns: 2}}
	runner, queue, _ := newTestRunner(t, shell, cfg)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := queue.Add(ctx, text, false)
		require.NoError(t, err)
	}

	require.NoError(t, runner.Run(ctx))
	assert.Len(t, shell.Requests, 2)
}

func TestRunner_CancelStopsCleanly(t *testing.T) {
	shell := &executil.RecordingShell{}
	runner, _, _ := newTestRunner(t, shell, nil)
	runner.idle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}

func TestRunner_ProjectFilterSkipsOtherWork(t *testing.T) {
	shell := &executil.RecordingShell{}
	cfg := &config.Config{Runner: config.RunnerConfig{Project: "api", MaxRuns: 1}}
	runner, queue, _ := newTestRunner(t, shell, cfg)
	ctx := context.Background()

	_, err := queue.Add(ctx, "Webapp only [project:webapp]", false)
	require.NoError(t, err)
	_, err = queue.Add(ctx, "API fix [project:api]", false)
	require.NoError(t, err)

	require.NoError(t, runner.Run(ctx))

	require.Len(t, shell.Requests, 1)
	assert.Contains(t, shell.Requests[0].Env, "RONIN_MISSION=API fix")
}

func TestRunner_WorkspaceResolution(t *testing.T) {
	cfg := &config.Config{
		InstanceDir: "/instance",
		Projects:    []config.Project{{Name: "webapp", Path: "/work/webapp"}},
	}
	r := &Runner{cfg: cfg}

	assert.Equal(t, "/work/webapp", r.workspace("webapp"))
	assert.Equal(t, "/instance", r.workspace("unknown"))
	assert.Equal(t, "/instance", r.workspace(""))
}

func TestRunner_JournalsAgentOutput(t *testing.T) {
	cfg := &config.Config{
		Agent:  config.AgentConfig{Command: "printf 'agent says hi'"},
		Runner: config.RunnerConfig{MaxRuns: 1},
	}
	runner, queue, _ := newTestRunner(t, executil.OSShell{}, cfg)
	ctx := context.Background()

	_, err := queue.Add(ctx, "journaled mission", false)
	require.NoError(t, err)

	require.NoError(t, runner.Run(ctx))

	files, err := filepath.Glob(filepath.Join(cfg.JournalDir(), "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "agent says hi", string(data))
}

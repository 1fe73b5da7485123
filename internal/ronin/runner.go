package ronin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/roninhq/ronin/internal/core/config"
	"github.com/roninhq/ronin/internal/core/logging"
	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/pkg/executil"
	"github.com/roninhq/ronin/pkg/randid"
)

// Runner is the consumer loop. It sweeps interrupted missions back to
// Pending once at startup, then repeatedly extracts the next pending
// mission, claims it, hands it to the agent, and records the outcome.
type Runner struct {
	queue *QueueService
	cfg   *config.Config
	shell executil.Shell
	log   zerolog.Logger

	// idle is the poll delay when the queue is empty and the pause between
	// missions. Defaults to the configured interval.
	idle time.Duration
}

// NewRunner creates a new Runner.
func NewRunner(queue *QueueService, cfg *config.Config, shell executil.Shell, log zerolog.Logger) *Runner {
	return &Runner{
		queue: queue,
		cfg:   cfg,
		shell: shell,
		log:   log.With().Str("component", "runner").Logger(),
		idle:  cfg.Interval(),
	}
}

// Run drives the loop until the context is canceled or the configured run
// limit is reached. A context cancellation is a clean shutdown, not an
// error.
func (r *Runner) Run(ctx context.Context) error {
	if _, err := r.queue.Recover(ctx); err != nil {
		return fmt.Errorf("startup recovery: %w", err)
	}

	runs := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		entry, ok, err := r.queue.Next(ctx, r.cfg.Runner.Project)
		if err != nil {
			return err
		}
		if !ok {
			r.log.Debug().Msg("queue empty, waiting")
			if !r.pause(ctx) {
				return nil
			}
			continue
		}

		r.runOne(ctx, entry)

		runs++
		if r.cfg.Runner.MaxRuns > 0 && runs >= r.cfg.Runner.MaxRuns {
			r.log.Info().Int("runs", runs).Msg("run limit reached")
			return nil
		}
		if !r.pause(ctx) {
			return nil
		}
	}
}

// pause sleeps for the idle interval. Returns false when the context was
// canceled while waiting.
func (r *Runner) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.idle):
		return true
	}
}

// runOne claims a single mission, executes the agent, and records the
// outcome. Agent failures fail the mission but never stop the loop.
func (r *Runner) runOne(ctx context.Context, entry mission.Entry) {
	runID := randid.Generate(8)
	ctx = logging.WithRunID(ctx, runID)
	if entry.Project != "" {
		ctx = logging.WithProject(ctx, entry.Project)
	}

	claimed, err := r.queue.Start(ctx, entry.Text)
	if err != nil {
		r.log.Error().Ctx(ctx).Err(err).Msg("claim mission")
		return
	}
	if !claimed {
		// Another consumer took it between extraction and claim.
		r.log.Debug().Ctx(ctx).Str("mission", entry.Text).Msg("mission already claimed")
		return
	}

	r.log.Info().Ctx(ctx).Str("mission", entry.Text).Msg("mission started")

	runErr := r.execute(ctx, entry, runID)
	if runErr != nil {
		r.log.Error().Ctx(ctx).Err(runErr).Str("mission", entry.Text).Msg("mission failed")
		if _, err := r.queue.Fail(ctx, entry.Text); err != nil {
			r.log.Error().Ctx(ctx).Err(err).Msg("record failure")
		}
		return
	}

	r.log.Info().Ctx(ctx).Str("mission", entry.Text).Msg("mission completed")
	if _, err := r.queue.Complete(ctx, entry.Text); err != nil {
		r.log.Error().Ctx(ctx).Err(err).Msg("record completion")
	}
}

// execute invokes the agent command for one mission, journaling its output.
func (r *Runner) execute(ctx context.Context, entry mission.Entry, runID string) error {
	if timeout := r.cfg.AgentTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	journal, closeJournal, err := r.openJournal(runID)
	if err != nil {
		r.log.Warn().Err(err).Msg("journal unavailable, discarding agent output")
		journal = io.Discard
		closeJournal = func() {}
	}
	defer closeJournal()

	env := []string{"RONIN_MISSION=" + entry.Text, "RONIN_RUN_ID=" + runID}
	if entry.Project != "" {
		env = append(env, "RONIN_PROJECT="+entry.Project)
	}

	err = r.shell.Run(ctx, executil.ShellRequest{
		Command: r.cfg.Agent.Command,
		Dir:     r.workspace(entry.Project),
		Env:     env,
		Stdout:  journal,
		Stderr:  journal,
	})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("agent timed out after %s", r.cfg.AgentTimeout())
	}
	return err
}

// workspace resolves the working directory for a mission's project.
// Unknown or untagged projects run in the instance directory.
func (r *Runner) workspace(project string) string {
	if project != "" {
		if p, ok := r.cfg.ProjectByName(project); ok && p.Path != "" {
			return p.Path
		}
	}
	return r.cfg.InstanceDir
}

func (r *Runner) openJournal(runID string) (io.Writer, func(), error) {
	dir := r.cfg.JournalDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create journal dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", time.Now().Format("20060102-150405"), runID)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("create journal: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

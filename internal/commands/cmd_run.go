package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/roninhq/ronin/internal/core/logging"
)

type RunCmd struct {
	flags *Flags

	watchInbox bool
}

// NewRunCmd creates a new run command.
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "run",
		Usage: "Run the mission loop",
		Description: `Starts the consumer loop. Interrupted missions are swept back
to Pending first, then the loop extracts, claims, and executes missions
until interrupted or the configured run limit is reached.

With --watch-inbox the inbox bridge runs alongside the loop, turning
files dropped into the instance inbox directory into queued missions.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "watch-inbox",
				Usage:       "also ingest mission drops from the inbox directory",
				Destination: &cmd.watchInbox,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runLog := logging.Component("run")
			runLog.Info().Str("missions", cmd.flags.App.Store.Path()).Msg("run loop starting")

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return cmd.flags.App.Runner.Run(ctx) })
			if cmd.watchInbox {
				g.Go(func() error { return cmd.flags.App.Inbox.Run(ctx) })
			}
			return g.Wait()
		},
	})

	return app
}

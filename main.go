package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/roninhq/ronin/internal/commands"
	"github.com/roninhq/ronin/internal/core/config"
	"github.com/roninhq/ronin/internal/core/logging"
	"github.com/roninhq/ronin/internal/ronin"
	"github.com/roninhq/ronin/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		roninApp  *ronin.App
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "ronin",
		Usage:     "Run an autonomous agent off a markdown mission queue",
		UsageText: "ronin [global options] command [command options]",
		Description: `Ronin drives an AI agent from a plain markdown mission file.

Missions queue under ## Pending, move to ## In Progress when claimed, and
land in ## Done or ## Failed with timestamps at every step. The file stays
human-editable throughout: add missions with any editor while the loop runs.

Run 'ronin init' once to scaffold an instance, then 'ronin run' to start
the loop.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RONIN_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <instance-dir>/ronin.log)",
				Sources:     cli.EnvVars("RONIN_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RONIN_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "instance-dir",
				Usage:       "path to the instance directory",
				Sources:     cli.EnvVars("RONIN_INSTANCE_DIR"),
				Value:       commands.DefaultInstanceDir(),
				Destination: &flags.InstanceDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <instance>/ronin.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.InstanceDir, "ronin.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.InstanceDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			roninApp = ronin.NewApp(cfg, log.Logger)
			flags.App = roninApp

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if roninApp != nil {
				roninApp.Close()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewMissionCmd(flags).Register(app)
	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewRecoverCmd(flags).Register(app)
	app = commands.NewStatusCmd(flags).Register(app)
	app = commands.NewProjectsCmd(flags).Register(app)
	app = commands.NewWatchCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

// Command docgen generates CLI reference documentation from the ronin
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/roninhq/ronin/internal/commands"
)

func main() {
	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "ronin",
		Usage:     "Run an autonomous agent off a markdown mission queue",
		UsageText: "ronin [global options] command [command options]",
		Description: `Ronin drives an AI agent from a plain markdown mission file.

Missions queue under ## Pending, move to ## In Progress when claimed, and
land in ## Done or ## Failed with timestamps at every step.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("RONIN_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <instance-dir>/ronin.log)",
				Sources: cli.EnvVars("RONIN_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("RONIN_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "instance-dir",
				Usage:   "path to the instance directory",
				Sources: cli.EnvVars("RONIN_INSTANCE_DIR"),
				Value:   commands.DefaultInstanceDir(),
			},
		},
	}

	root = commands.NewInitCmd(flags).Register(root)
	root = commands.NewMissionCmd(flags).Register(root)
	root = commands.NewRunCmd(flags).Register(root)
	root = commands.NewRecoverCmd(flags).Register(root)
	root = commands.NewStatusCmd(flags).Register(root)
	root = commands.NewProjectsCmd(flags).Register(root)
	root = commands.NewWatchCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}

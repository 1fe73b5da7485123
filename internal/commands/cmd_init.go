package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/roninhq/ronin/internal/core/mission"
)

const sampleConfig = `# ronin instance configuration
agent:
  # Run through "sh -c" with the mission text in $RONIN_MISSION.
  command: claude -p "$RONIN_MISSION"
  timeout_minutes: 60

runner:
  # project: webapp     # only run missions tagged for this project
  # max_runs: 10        # stop after this many missions
  interval_seconds: 30

# projects:
#   - name: webapp
#     path: /home/you/src/webapp
#     patterns:
#       - "**/webapp-*.md"
`

type InitCmd struct {
	flags *Flags
}

// NewInitCmd creates a new init command.
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application.
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "init",
		Usage: "Scaffold an instance directory",
		Description: `Creates the instance layout: the mission file with its default
sections, the inbox and journal directories, and a commented sample
config. Existing files are never overwritten.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			dir := cmd.flags.InstanceDir

			for _, sub := range []string{dir, filepath.Join(dir, "inbox"), filepath.Join(dir, "journal")} {
				if err := os.MkdirAll(sub, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", sub, err)
				}
			}

			created, err := writeIfMissing(filepath.Join(dir, "missions.md"), mission.DefaultSkeleton)
			if err != nil {
				return err
			}
			if created {
				fmt.Println("created missions.md")
			}

			created, err = writeIfMissing(cmd.flags.ConfigPath, sampleConfig)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("created %s\n", cmd.flags.ConfigPath)
			}

			fmt.Printf("instance ready at %s\n", dir)
			return nil
		},
	})

	return app
}

func writeIfMissing(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/roninhq/ronin/internal/tui"
)

type WatchCmd struct {
	flags *Flags
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "watch",
		Usage: "Watch the mission queue live",
		Action: func(ctx context.Context, c *cli.Command) error {
			model := tui.NewWatch(cmd.flags.App.Store)
			if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("run watch view: %w", err)
			}
			return nil
		},
	})

	return app
}

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/roninhq/ronin/internal/core/mission"
)

type StatusCmd struct {
	flags *Flags

	plain bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "status",
		Usage: "Show the mission file with a summary",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print the raw mission file without styling",
				Destination: &cmd.plain,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			doc, err := cmd.flags.App.Store.Snapshot()
			if err != nil {
				return err
			}

			if cmd.plain {
				fmt.Print(doc.String())
				return nil
			}

			fmt.Println(summaryLine(doc))

			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				// No usable terminal style, fall back to the raw file.
				fmt.Print(doc.String())
				return nil
			}

			out, err := renderer.Render(doc.String())
			if err != nil {
				return fmt.Errorf("render missions: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	})

	return app
}

var (
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// summaryLine renders one-line section counts for the document.
func summaryLine(doc *mission.Document) string {
	count := func(kind mission.SectionKind) int {
		if sec := doc.Section(kind); sec != nil {
			return len(sec.Entries())
		}
		return 0
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		pendingStyle.Render(fmt.Sprintf("pending %d", count(mission.SectionPending))),
		"  ",
		progressStyle.Render(fmt.Sprintf("in progress %d", count(mission.SectionInProgress))),
		"  ",
		doneStyle.Render(fmt.Sprintf("done %d", count(mission.SectionDone))),
		"  ",
		failedStyle.Render(fmt.Sprintf("failed %d", count(mission.SectionFailed))),
	)
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

type ProjectsCmd struct {
	flags *Flags
}

// NewProjectsCmd creates a new projects command.
func NewProjectsCmd(flags *Flags) *ProjectsCmd {
	return &ProjectsCmd{flags: flags}
}

// Register adds the projects command to the application.
func (cmd *ProjectsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "projects",
		Usage: "List configured projects",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := cmd.flags.App.Config
			if len(cfg.Projects) == 0 {
				fmt.Println("no projects configured")
				return nil
			}

			for _, name := range cfg.KnownProjects() {
				p, _ := cfg.ProjectByName(name)
				line := p.Name
				if p.Path != "" {
					line += "\t" + p.Path
				}
				if len(p.Patterns) > 0 {
					line += "\t(" + strings.Join(p.Patterns, ", ") + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	})

	return app
}

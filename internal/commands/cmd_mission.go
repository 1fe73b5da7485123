package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/roninhq/ronin/internal/core/mission"
)

type MissionCmd struct {
	flags *Flags

	addUrgent  bool
	addProject string

	nextProject string
}

// NewMissionCmd creates a new mission command.
func NewMissionCmd(flags *Flags) *MissionCmd {
	return &MissionCmd{flags: flags}
}

// Register adds the mission command to the application.
func (cmd *MissionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "mission",
		Usage: "Queue and advance missions",
		Description: `Mission commands operate on the instance mission file.

Missions move through Pending, In Progress, and Done or Failed. Every
transition stamps the line with a timestamp so timing survives restarts.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.listCmd(),
			cmd.nextCmd(),
			cmd.startCmd(),
			cmd.completeCmd(),
			cmd.failCmd(),
		},
	})

	return app
}

func (cmd *MissionCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Queue a new mission",
		UsageText: "ronin mission add [--urgent] [--project <name>] [text]",
		Description: `Adds a mission to the Pending section.

With no text argument an interactive form opens. Urgent missions go to
the top of the queue instead of the bottom.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "urgent",
				Aliases:     []string{"u"},
				Usage:       "queue at the top of Pending",
				Destination: &cmd.addUrgent,
			},
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "tag the mission with a project",
				Destination: &cmd.addProject,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				var err error
				text, err = cmd.promptMission()
				if err != nil {
					return err
				}
			}
			if text == "" {
				return errors.New("mission text is required")
			}

			if cmd.addProject != "" && !strings.Contains(text, "[project:") {
				text = fmt.Sprintf("%s [project:%s]", text, cmd.addProject)
			}

			entry, err := cmd.flags.App.Queue.Add(ctx, text, cmd.addUrgent)
			if err != nil {
				return err
			}

			fmt.Printf("queued: %s\n", entry.Text)
			return nil
		},
	}
}

// promptMission collects mission details interactively.
func (cmd *MissionCmd) promptMission() (string, error) {
	var text string

	fields := []huh.Field{
		huh.NewInput().
			Title("Mission").
			Description("What should the agent do?").
			Value(&text),
	}

	if projects := cmd.flags.App.Config.KnownProjects(); len(projects) > 0 {
		options := huh.NewOptions(append([]string{""}, projects...)...)
		options[0].Key = "(none)"
		fields = append(fields, huh.NewSelect[string]().
			Title("Project").
			Options(options...).
			Value(&cmd.addProject))
	}

	fields = append(fields, huh.NewConfirm().
		Title("Urgent?").
		Value(&cmd.addUrgent))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (cmd *MissionCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List missions by section",
		Action: func(ctx context.Context, c *cli.Command) error {
			entries, err := cmd.flags.App.Queue.Entries(ctx)
			if err != nil {
				return err
			}

			order := []mission.SectionKind{
				mission.SectionPending,
				mission.SectionInProgress,
				mission.SectionDone,
				mission.SectionFailed,
			}
			for _, kind := range order {
				list := entries[kind]
				if len(list) == 0 {
					continue
				}
				fmt.Println(strings.TrimPrefix(kind.String(), "## "))
				for _, e := range list {
					line := "  - " + e.Text
					if e.Project != "" {
						line += " [" + e.Project + "]"
					}
					if timing := mission.TimingDisplay(e.Raw, timeNow()); timing != "" {
						line += " (" + timing + ")"
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

func (cmd *MissionCmd) nextCmd() *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "Show the next pending mission",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "only consider missions for this project",
				Destination: &cmd.nextProject,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			entry, ok, err := cmd.flags.App.Queue.Next(ctx, cmd.nextProject)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("queue is empty")
				return nil
			}
			fmt.Println(entry.Text)
			return nil
		},
	}
}

func (cmd *MissionCmd) startCmd() *cli.Command {
	return cmd.transitionCmd("start", "Claim a pending mission", func(ctx context.Context, match string) (bool, error) {
		return cmd.flags.App.Queue.Start(ctx, match)
	})
}

func (cmd *MissionCmd) completeCmd() *cli.Command {
	return cmd.transitionCmd("complete", "Mark an in-progress mission done", func(ctx context.Context, match string) (bool, error) {
		return cmd.flags.App.Queue.Complete(ctx, match)
	})
}

func (cmd *MissionCmd) failCmd() *cli.Command {
	return cmd.transitionCmd("fail", "Mark an in-progress mission failed", func(ctx context.Context, match string) (bool, error) {
		return cmd.flags.App.Queue.Fail(ctx, match)
	})
}

func (cmd *MissionCmd) transitionCmd(name, usage string, op func(context.Context, string) (bool, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: fmt.Sprintf("ronin mission %s <text match>", name),
		Action: func(ctx context.Context, c *cli.Command) error {
			match := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if match == "" {
				return errors.New("a text match is required")
			}

			moved, err := op(ctx, match)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Printf("no mission matched %q\n", match)
				return nil
			}
			fmt.Printf("%s: %s\n", name, match)
			return nil
		},
	}
}

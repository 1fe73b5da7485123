package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type RecoverCmd struct {
	flags *Flags
}

// NewRecoverCmd creates a new recover command.
func NewRecoverCmd(flags *Flags) *RecoverCmd {
	return &RecoverCmd{flags: flags}
}

// Register adds the recover command to the application.
func (cmd *RecoverCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "recover",
		Usage: "Sweep interrupted missions back to Pending",
		Description: `Moves In Progress entries back to Pending and strips their
started stamps. Struck-through lines and checklist blocks are left in
place. The run loop does this automatically at startup; the command
exists for manual cleanup after a crash.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			count, err := cmd.flags.App.Queue.Recover(ctx)
			if err != nil {
				return err
			}
			switch count {
			case 0:
				fmt.Println("nothing to recover")
			case 1:
				fmt.Println("recovered 1 mission")
			default:
				fmt.Printf("recovered %d missions\n", count)
			}
			return nil
		},
	})

	return app
}

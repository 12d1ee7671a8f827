package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewVersionCommand returns the version subcommand.
func NewVersionCommand(version, commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the agent core version",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf("agent %s (%s)\n", version, commit)
			return nil
		},
	}
}

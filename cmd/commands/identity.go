package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/identity"
)

// NewIdentityCommand returns the identity subcommand group (spec §6.3).
func NewIdentityCommand() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Manage agent identities",
		Commands: []*cli.Command{
			newIdentityRegisterCommand(),
			newIdentityUseCommand(),
			newIdentityWhoamiCommand(),
			newIdentityListCommand(),
			newIdentityRemoveCommand(),
		},
	}
}

func newIdentityRegisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Register a new agent identity",
		ArgsUsage: "<code> <name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Usage: "Identity role"},
			&cli.StringFlag{Name: "project", Usage: "Associated project ID"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 2 {
				return fmt.Errorf("usage: agent identity register <code> <name>")
			}
			reg := identity.NewRegistry(config.DataFolder())
			id, err := reg.Register(args.Get(0), args.Get(1), cmd.String("role"), cmd.String("project"))
			if err != nil {
				return err
			}
			fmt.Printf("registered identity %s (%s)\n", id.Code, id.Name)
			return nil
		},
	}
}

func newIdentityUseCommand() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Set the active agent identity",
		ArgsUsage: "<code>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: agent identity use <code>")
			}
			reg := identity.NewRegistry(config.DataFolder())
			if err := reg.Use(cmd.Args().Get(0)); err != nil {
				return err
			}
			fmt.Printf("active identity set to %s\n", cmd.Args().Get(0))
			return nil
		},
	}
}

func newIdentityWhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Print the active agent identity",
		Action: func(_ context.Context, cmd *cli.Command) error {
			reg := identity.NewRegistry(config.DataFolder())
			id, ok, err := reg.Whoami()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no active identity")
				return nil
			}
			fmt.Printf("%s (%s)\n", id.Code, id.Name)
			return nil
		},
	}
}

func newIdentityListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered agent identities",
		Action: func(_ context.Context, cmd *cli.Command) error {
			reg := identity.NewRegistry(config.DataFolder())
			ids, err := reg.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("no identities registered")
				return nil
			}
			for _, id := range ids {
				fmt.Printf("%-20s %-20s %s\n", id.Code, id.Name, id.Role)
			}
			return nil
		},
	}
}

func newIdentityRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove an agent identity",
		ArgsUsage: "<code>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: agent identity remove <code>")
			}
			reg := identity.NewRegistry(config.DataFolder())
			if err := reg.Remove(cmd.Args().Get(0)); err != nil {
				return err
			}
			fmt.Printf("removed identity %s\n", cmd.Args().Get(0))
			return nil
		},
	}
}

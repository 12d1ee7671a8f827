package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/identity"
)

// NewInfoCommand returns the info subcommand, a quick summary of the
// resolved config and active identity without performing a full boot.
func NewInfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show resolved configuration and active identity",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			fmt.Printf("data folder:      %s\n", cfg.DataFolder)
			fmt.Printf("store per agent:  %t\n", cfg.IsStorePerAgent())
			fmt.Printf("skill dirs:       %v\n", cfg.Skills.Dirs)
			fmt.Printf("daemon bind:      %s:%d\n", cfg.Daemon.Host, cfg.Daemon.Port)

			idReg := identity.NewRegistry(cfg.DataFolder)
			active, ok, err := idReg.Whoami()
			if err != nil {
				return fmt.Errorf("resolve active identity: %w", err)
			}
			if !ok {
				fmt.Println("active identity:  (none)")
				return nil
			}
			fmt.Printf("active identity:  %s (%s)\n", active.Code, active.Name)
			return nil
		},
	}
}

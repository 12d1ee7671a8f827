package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
)

// NewInitCommand returns the init subcommand, which lays out the data
// folder (spec §6.5) and writes a default config file if none exists.
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize the agent core data directory",
		Action: func(_ context.Context, cmd *cli.Command) error {
			dataFolder := config.DataFolder()
			if err := os.MkdirAll(filepath.Join(dataFolder, "agents"), 0o755); err != nil {
				return fmt.Errorf("create data folder: %w", err)
			}
			if err := os.MkdirAll(filepath.Join(dataFolder, "skills"), 0o755); err != nil {
				return fmt.Errorf("create skills folder: %w", err)
			}

			configPath := config.ConfigPath()
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				cfg := &config.Config{}
				b, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal default config: %w", err)
				}
				if err := os.WriteFile(configPath, b, 0o644); err != nil {
					return fmt.Errorf("write default config: %w", err)
				}
				fmt.Printf("wrote default config to %s\n", configPath)
			} else {
				fmt.Printf("config already exists at %s\n", configPath)
			}

			fmt.Printf("data folder ready at %s\n", dataFolder)
			return nil
		},
	}
}

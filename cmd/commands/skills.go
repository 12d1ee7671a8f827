package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/manifest"
	"github.com/agentcore/runtime/internal/migrate"
)

// NewSkillsCommand returns the skills subcommand group (spec §6.3).
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "Inspect and manage loaded skills",
		Commands: []*cli.Command{
			newSkillsListCommand(),
			newSkillsDescribeCommand(),
			newSkillsReloadCommand(),
			newSkillsExportCommand(),
			newSkillsCheckCommand(),
			newSkillsDoctorCommand(),
			newSkillsConfigCommand(),
			newSkillsMigrateCommand(),
		},
	}
}

func newSkillsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List loaded skills",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			for _, m := range rt.skills.Manifests() {
				fmt.Printf("%-20s %-10s %s\n", m.Name, m.Version, m.Description)
			}
			return nil
		},
	}
}

func newSkillsDescribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Print a skill's full manifest",
		ArgsUsage: "<name>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: agent skills describe <name>")
			}
			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			_, m, ok := rt.skills.Get(cmd.Args().Get(0))
			if !ok {
				return fmt.Errorf("skill %q not loaded", cmd.Args().Get(0))
			}
			b, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
}

func newSkillsReloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "reload",
		Usage: "Re-run skill discovery, migration, and init",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Printf("reloaded %d skills\n", len(rt.skills.Names()))
			return nil
		},
	}
}

func newSkillsExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every loaded manifest as JSON",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			b, err := json.MarshalIndent(rt.skills.Manifests(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
}

func newSkillsCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate manifests and dependency order without booting skills",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "dir", Usage: "Skill directory (repeatable); defaults to config skill dirs"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			dirs := cmd.StringSlice("dir")
			if len(dirs) == 0 {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				dirs = cfg.Skills.Dirs
			}

			found, err := manifest.Discover(dirs)
			if err != nil {
				return err
			}
			ordered, err := manifest.Resolve(found)
			if err != nil {
				return fmt.Errorf("dependency check failed: %w", err)
			}
			for _, m := range ordered {
				fmt.Printf("ok   %-20s %s\n", m.Name, m.Version)
			}
			return nil
		},
	}
}

func newSkillsDoctorCommand() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Boot the runtime (applying pending migrations) and report ledger and permission status",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rt, err := bootRuntime(cmd)
			if err != nil {
				return fmt.Errorf("doctor: boot failed: %w", err)
			}
			defer rt.Close()

			fmt.Println("boot:             ok")
			fmt.Printf("skills loaded:    %d\n", len(rt.skills.Names()))

			if err := migrate.EnsureFrameworkSchema(rt.db); err != nil {
				fmt.Printf("migration ledger: FAILED (%v)\n", err)
			} else {
				fmt.Println("migration ledger: ok")
			}

			writeListed := make(map[string]bool, len(rt.cfg.Skills.Enabled))
			for _, name := range rt.cfg.Skills.Enabled {
				writeListed[name] = true
			}
			for _, name := range rt.skills.Names() {
				if writeListed[name] {
					fmt.Printf("permissions %-18s read+write\n", name)
				} else {
					fmt.Printf("permissions %-18s read-only\n", name)
				}
			}
			return nil
		},
	}
}

func newSkillsConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "config",
		Usage:     "Print a skill's declared config_schema",
		ArgsUsage: "<name>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: agent skills config <name>")
			}
			rt, err := bootRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			_, m, ok := rt.skills.Get(cmd.Args().Get(0))
			if !ok {
				return fmt.Errorf("skill %q not loaded", cmd.Args().Get(0))
			}
			if len(m.ConfigSchema) == 0 {
				fmt.Println("{}")
				return nil
			}
			fmt.Println(string(m.ConfigSchema))
			return nil
		},
	}
}

func newSkillsMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply (or re-verify) a skill's schema and migrations",
		Commands: []*cli.Command{
			{
				Name:      "up",
				Usage:     "Apply pending migrations for a skill (the default boot behavior)",
				ArgsUsage: "<name>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return fmt.Errorf("usage: agent skills migrate up <name>")
					}
					rt, err := bootRuntime(cmd)
					if err != nil {
						return err
					}
					defer rt.Close()
					_, _, ok := rt.skills.Get(cmd.Args().Get(0))
					if !ok {
						return fmt.Errorf("skill %q not loaded", cmd.Args().Get(0))
					}
					fmt.Printf("%s migrations applied at boot\n", cmd.Args().Get(0))
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Not supported: migrations are forward-only",
				Action: func(_ context.Context, _ *cli.Command) error {
					return fmt.Errorf("migrations are forward-only; there is no down migration")
				},
			},
		},
	}
}

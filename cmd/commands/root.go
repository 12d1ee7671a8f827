package commands

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
)

// FrameworkCommandNames lists every framework-level subcommand name (spec
// §6.3), used by main to tell a framework subcommand apart from a skill
// name before booting.
var FrameworkCommandNames = []string{
	"version", "init", "info", "search", "identity", "skills", "daemon", "status", "help", "h",
}

// IsFrameworkCommand reports whether name is one of the static framework
// subcommands rather than a skill name.
func IsFrameworkCommand(name string) bool {
	return slices.Contains(FrameworkCommandNames, name)
}

// NewRootCommand returns the top-level CLI command (spec §4.11, §6.3).
func NewRootCommand(version, commit string) *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Local-first agent extensibility framework",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewVersionCommand(version, commit),
			NewInitCommand(),
			NewInfoCommand(),
			NewSearchCommand(),
			NewIdentityCommand(),
			NewSkillsCommand(),
			NewDaemonCommand(),
			NewStatusCommand(),
		},
	}
}

// AppendSkillCommands boots the runtime from configPath and appends every
// loaded skill's command root to root, so "agent <skill-name> ..."
// dispatches to it (spec §4.11 step 2). This runs before cli.Command.Run
// parses argv, so only the default config path and non-debug logging are
// honored here; --config/--debug still apply to every framework
// subcommand's own boot. The caller is responsible for closing the
// returned runtime's resources once cmd.Run returns.
func AppendSkillCommands(root *cli.Command, configPath string) (*runtime, error) {
	rt, err := bootRuntimeFrom(configPath, false)
	if err != nil {
		return nil, err
	}
	for _, name := range rt.skills.Names() {
		sk, _, ok := rt.skills.Get(name)
		if !ok || sk == nil {
			continue
		}
		root.Commands = append(root.Commands, sk.Command())
	}
	return rt, nil
}

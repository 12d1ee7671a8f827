package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/agentcore/runtime/cmd/commands"
	"github.com/agentcore/runtime/internal/config"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := config.LoadDotenv(config.DotenvPath()); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := commands.NewRootCommand(version, commit)

	// A skill-name invocation (anything other than a known framework
	// subcommand) requires a full boot before its command root even
	// exists (spec §4.11 step 2).
	if first := firstPositional(os.Args[1:]); first != "" && !commands.IsFrameworkCommand(first) {
		rt, err := commands.AppendSkillCommands(cmd, config.ConfigPath())
		if err != nil {
			slog.Error("boot failed", "error", err)
			os.Exit(4)
		}
		defer rt.Close()
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// firstPositional returns the first non-flag argument, or "" if there is
// none (e.g. bare "agent" or "agent --debug").
func firstPositional(args []string) string {
	for _, a := range args {
		if len(a) == 0 || a[0] == '-' {
			continue
		}
		return a
	}
	return ""
}

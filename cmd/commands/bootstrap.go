package commands

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/events"
	"github.com/agentcore/runtime/internal/identity"
	"github.com/agentcore/runtime/internal/permissions"
	"github.com/agentcore/runtime/internal/skill"
	"github.com/agentcore/runtime/internal/storeengine"
)

// runtime bundles every process-wide singleton produced by a full boot
// (spec §4.7): the shared store handle, event bus, permission registry,
// and the skill registry built on top of them.
type runtime struct {
	cfg      *config.Config
	db       *sql.DB
	bus      *events.Bus
	skills   *skill.Registry
	identity *identity.Registry
}

// bootRuntime performs the framework boot sequence using the --config and
// --debug flags of cmd: load config, resolve the active agent identity's
// store path, open and tune the store handle, wire the event bus and
// permission registry, and discover/initialize every skill (spec
// §4.2-4.7).
func bootRuntime(cmd *cli.Command) (*runtime, error) {
	return bootRuntimeFrom(cmd.String("config"), cmd.Bool("debug"))
}

// bootRuntimeFrom is the config-path/debug-flag-driven core of
// bootRuntime, usable before a *cli.Command has parsed its flags (e.g. to
// discover skill commands prior to cli.Command.Run, spec §4.11 step 2).
func bootRuntimeFrom(configPath string, debug bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cfg, debug)

	idReg := identity.NewRegistry(cfg.DataFolder)

	storePath := config.AgentDBPath("default")
	if cfg.IsStorePerAgent() {
		active, ok, err := idReg.Whoami()
		if err != nil {
			return nil, fmt.Errorf("resolve active identity: %w", err)
		}
		if ok {
			storePath = config.AgentDBPath(active.Code)
		}
	} else {
		storePath = filepath.Join(cfg.DataFolder, "agent.db")
	}

	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	engines := storeengine.NewRegistry()
	db, err := engines.Get(storePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	bus := events.NewBus(cfg.Events.HistorySize)
	perms := permissions.NewRegistry()
	skillReg := skill.NewRegistry(db, bus, perms)

	writeList := make(skill.WriteList, len(cfg.Skills.Enabled))
	for _, name := range cfg.Skills.Enabled {
		writeList[name] = true
	}

	if err := skillReg.Boot(cfg.Skills.Dirs, writeList); err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, db: db, bus: bus, skills: skillReg, identity: idReg}, nil
}

// loadConfig loads the config without performing a full boot, honoring
// the --config and --debug flags the same way bootRuntime does.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cfg, cmd.Bool("debug"))
	return cfg, nil
}

// Close releases the runtime's shared resources.
func (r *runtime) Close() {
	r.bus.Close()
	r.db.Close()
}

func applyLogLevel(cfg *config.Config, debugFlag bool) {
	level := resolveLogLevel(cfg.Log.Level)
	if debugFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func resolveLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

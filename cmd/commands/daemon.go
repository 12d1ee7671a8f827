package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/daemon"
	"github.com/agentcore/runtime/internal/scheduler"
)

// NewDaemonCommand returns the daemon subcommand: it boots the full
// runtime and serves the HTTP IPC surface until interrupted (spec §4.10).
func NewDaemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run the agent core daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Host to bind"},
			&cli.IntFlag{Name: "port", Usage: "Port to bind"},
		},
		Commands: []*cli.Command{
			NewStatusCommand(),
		},
		Action: runDaemon,
	}
}

func runDaemon(ctx context.Context, cmd *cli.Command) error {
	rt, err := bootRuntime(cmd)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	defer rt.Close()

	host := rt.cfg.Daemon.Host
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	port := rt.cfg.Daemon.Port
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	sched := scheduler.New(scheduler.Config{
		Bus:   rt.bus,
		Store: scheduler.NewTaskStore(filepath.Join(rt.cfg.DataFolder, "schedules")),
		Funcs: map[string]scheduler.TaskFunc{},
	})

	reloader := config.NewReloader(cmd.String("config"), config.DotenvPath(), rt.cfg)
	reloader.OnReload(func(cfg *config.Config) { applyLogLevel(cfg, cmd.Bool("debug")) })

	d := daemon.New(daemon.Config{
		Host:          host,
		Port:          port,
		BearerToken:   rt.cfg.Daemon.BearerToken,
		PIDPath:       filepath.Join(rt.cfg.DataFolder, "daemon.pid"),
		HeartbeatPath: filepath.Join(rt.cfg.DataFolder, "daemon.heartbeat.json"),
		Registry:      rt.skills,
		Bus:           rt.bus,
		Scheduler:     sched,
		Reloader:      reloader,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	fmt.Printf("daemon listening on %s:%d\n", host, port)

	<-ctx.Done()
	fmt.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), daemon.GraceWindow)
	defer cancel()
	return d.Stop(shutdownCtx)
}

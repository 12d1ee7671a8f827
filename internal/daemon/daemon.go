// Package daemon implements the long-running agent core process: PID
// lifecycle, the HTTP IPC surface, periodic tasks, and graceful
// start/stop (spec §4.10).
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentcore/runtime/internal/config"
	"github.com/agentcore/runtime/internal/events"
	"github.com/agentcore/runtime/internal/heartbeat"
	"github.com/agentcore/runtime/internal/scheduler"
	"github.com/agentcore/runtime/internal/skill"
)

// State is one of the daemon's one-way lifecycle transitions (spec §4.10
// state machine).
type State string

const (
	StateCreated  State = "CREATED"
	StateStarting State = "STARTING"
	StateRunning  State = "RUNNING"
	StateStopping State = "STOPPING"
	StateStopped  State = "STOPPED"
)

// GraceWindow is the default shutdown grace period.
const GraceWindow = 5 * time.Second

// Config holds everything the daemon needs to boot.
type Config struct {
	Host          string
	Port          int
	BearerToken   string
	PIDPath       string
	HeartbeatPath string
	Registry      *skill.Registry
	Bus           *events.Bus
	Scheduler     *scheduler.Scheduler // nil-safe: no periodic tasks configured
	Reloader      *config.Reloader     // nil-safe: SIGHUP reload disabled without one
}

// Daemon orchestrates the PID file, HTTP server, scheduler, and heartbeat
// writer through the CREATED -> STARTING -> RUNNING -> STOPPING -> STOPPED
// state machine.
type Daemon struct {
	cfg   Config
	pid   *PIDFile
	hb    *heartbeat.Writer
	srv   *Server

	state   State
	hupCh   chan os.Signal
	hupDone chan struct{}
}

// New builds a Daemon from cfg. The daemon starts in state CREATED.
func New(cfg Config) *Daemon {
	hb := heartbeat.NewWriter(cfg.HeartbeatPath)
	srv := NewServer(cfg.Registry, cfg.Bus, cfg.Host, cfg.Port, cfg.BearerToken)
	return &Daemon{
		cfg:   cfg,
		pid:   NewPIDFile(cfg.PIDPath),
		hb:    hb,
		srv:   srv,
		state: StateCreated,
	}
}

// State returns the daemon's current lifecycle state.
func (d *Daemon) State() State {
	return d.state
}

// Start transitions CREATED -> STARTING -> RUNNING. It refuses to start if
// an existing PID is alive (spec: "Start refuses if an existing pid is
// alive"). Any startup failure transitions through STOPPING to STOPPED,
// unlinking the PID file, before the error is returned.
func (d *Daemon) Start(ctx context.Context) error {
	d.state = StateStarting

	if alive, pid, err := d.pid.IsRunning(); err != nil {
		return d.failStart(fmt.Errorf("check existing pid: %w", err))
	} else if alive {
		return d.failStart(fmt.Errorf("daemon already running with pid %d", pid))
	}

	if err := d.pid.Write(); err != nil {
		return d.failStart(fmt.Errorf("write pid file: %w", err))
	}

	d.hb.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := d.srv.Start(); err != nil {
			errCh <- err
		}
	}()

	d.srv.OnStop(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GraceWindow)
		defer cancel()
		if err := d.Stop(shutdownCtx); err != nil {
			slog.Error("daemon: stop via IPC failed", "error", err)
		}
	})

	if d.cfg.Scheduler != nil {
		d.cfg.Scheduler.Start()
	}

	if d.cfg.Reloader != nil {
		d.hupCh = make(chan os.Signal, 1)
		d.hupDone = make(chan struct{})
		signal.Notify(d.hupCh, syscall.SIGHUP)
		go d.watchReload()
	}

	d.state = StateRunning
	slog.Info("daemon started", "host", d.cfg.Host, "port", d.cfg.Port, "pid_file", d.cfg.PIDPath)

	select {
	case err := <-errCh:
		return d.failStart(err)
	default:
	}
	return nil
}

// watchReload re-reads the config on every SIGHUP (spec §C.1) until the
// daemon stops. Skills and permissions are fixed at boot per §4.7 and are
// unaffected by a reload.
func (d *Daemon) watchReload() {
	for {
		select {
		case <-d.hupDone:
			return
		case <-d.hupCh:
			if err := d.cfg.Reloader.Reload(); err != nil {
				slog.Error("daemon: config reload failed", "error", err)
			}
		}
	}
}

func (d *Daemon) failStart(err error) error {
	d.state = StateStopping
	d.pid.Remove()
	d.state = StateStopped
	return err
}

// Stop transitions RUNNING -> STOPPING -> STOPPED: stops the scheduler,
// shuts down the HTTP server within ctx's deadline, stops the heartbeat
// writer, and unlinks the PID file. Idempotent.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.state == StateStopped {
		return nil
	}
	d.state = StateStopping

	if d.cfg.Scheduler != nil {
		d.cfg.Scheduler.Stop()
	}

	if d.hupCh != nil {
		signal.Stop(d.hupCh)
		close(d.hupDone)
	}

	err := d.srv.Shutdown(ctx)
	d.hb.Stop()
	if pidErr := d.pid.Remove(); pidErr != nil && err == nil {
		err = pidErr
	}

	d.state = StateStopped
	slog.Info("daemon stopped")
	return err
}

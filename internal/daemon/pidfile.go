package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PIDFile manages the daemon's PID file lifecycle (spec §4.10 Lifecycle).
type PIDFile struct {
	path string
}

// NewPIDFile creates a PIDFile manager at path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Write records the current process's PID, atomically.
func (p *PIDFile) Write() error {
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return os.Rename(tmp, p.path)
}

// Read returns the recorded PID, or 0 if no PID file exists.
func (p *PIDFile) Read() (int, error) {
	b, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file: %w", err)
	}
	return pid, nil
}

// Remove deletes the PID file. Idempotent.
func (p *PIDFile) Remove() error {
	err := os.Remove(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsRunning checks both file presence and OS liveness of the recorded pid.
func (p *PIDFile) IsRunning() (bool, int, error) {
	pid, err := p.Read()
	if err != nil || pid == 0 {
		return false, 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, pid, nil
	}
	// On Unix, FindProcess always succeeds; signal 0 checks liveness
	// without actually sending a signal.
	if err := proc.Signal(processAliveSignal); err != nil {
		return false, pid, nil
	}
	return true, pid, nil
}

package config

import (
	"os"
	"path/filepath"
)

// DataFolder returns the root directory for agent core data. It uses
// $DATA_FOLDER if set, otherwise defaults to ~/.agentcore.
func DataFolder() string {
	if v := os.Getenv("DATA_FOLDER"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".agentcore")
	}
	return filepath.Join(home, ".agentcore")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(DataFolder(), "config.jsonc")
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(DataFolder(), ".env")
}

// ActiveAgentPath returns the path to the active-agent pointer file.
func ActiveAgentPath() string {
	return filepath.Join(DataFolder(), "active_agent")
}

// AgentDir returns the per-identity data directory for the given agent code.
func AgentDir(code string) string {
	return filepath.Join(DataFolder(), "agents", code)
}

// AgentDBPath returns the sqlite database path for the given agent code.
func AgentDBPath(code string) string {
	return filepath.Join(AgentDir(code), "agent.db")
}

// DaemonPIDPath returns the path to the daemon's PID file.
func DaemonPIDPath() string {
	return filepath.Join(DataFolder(), "daemon.pid")
}

// DaemonLogPath returns the path to the daemon's log file.
func DaemonLogPath() string {
	return filepath.Join(DataFolder(), "daemon.log")
}

// DaemonHeartbeatPath returns the path to the daemon's heartbeat file.
func DaemonHeartbeatPath() string {
	return filepath.Join(DataFolder(), "daemon.heartbeat.json")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `{
	// This is a JSONC comment
	"daemon": {
		"host": "0.0.0.0",
		"port": 9999,
		"bearer_token": "${{ .Env.AGENTCORE_TOKEN }}"
	},
	"skills": {
		"dirs": ["/opt/skills"]
	}
}`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENTCORE_TOKEN", "test-token-123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Daemon.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Daemon.Host)
	}
	if cfg.Daemon.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Daemon.Port)
	}
	if cfg.Daemon.BearerToken != "test-token-123" {
		t.Errorf("expected bearer_token test-token-123, got %s", cfg.Daemon.BearerToken)
	}
	if len(cfg.Skills.Dirs) != 1 || cfg.Skills.Dirs[0] != "/opt/skills" {
		t.Errorf("expected skills dirs [/opt/skills], got %v", cfg.Skills.Dirs)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `{}`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Daemon.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Daemon.Host)
	}
	if cfg.Daemon.Port != 8711 {
		t.Errorf("expected default port 8711, got %d", cfg.Daemon.Port)
	}
	if cfg.Events.HistorySize != 256 {
		t.Errorf("expected default history size 256, got %d", cfg.Events.HistorySize)
	}
	if !cfg.IsStorePerAgent() {
		t.Errorf("expected store-per-agent default true")
	}
}

func TestLoadDefaults_LogLevel(t *testing.T) {
	content := `{}`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Daemon.Port != 8711 {
		t.Errorf("expected default port 8711, got %d", cfg.Daemon.Port)
	}
}

func TestExpandEnvTemplates(t *testing.T) {
	t.Setenv("TEST_KEY", "my-secret")
	result := expandEnvTemplates(`{"key": "${{ .Env.TEST_KEY }}"}`)
	expected := `{"key": "my-secret"}`
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}
}

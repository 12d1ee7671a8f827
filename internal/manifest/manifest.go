// Package manifest parses skill manifests (skill.json) and resolves the
// dependency graph declared by their requires fields.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Manifest is the declarative metadata describing a skill (spec §6.1).
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Requires     []string        `json:"requires,omitempty"`
	SchemaFile   string          `json:"schema_file,omitempty"`
	MigrationsDir string         `json:"migrations_dir,omitempty"`
	EntryPoint   string          `json:"entry_point"`
	RequiresDB   bool            `json:"requires_db,omitempty"`
	InternalDoc  string          `json:"internal_doc,omitempty"`
	ExternalDoc  string          `json:"external_doc,omitempty"`
	ConfigSchema json.RawMessage `json:"config_schema,omitempty"`

	// Dir is the directory the manifest was loaded from; not part of the
	// JSON shape, set by Load.
	Dir string `json:"-"`
}

// Load reads and parses a skill.json file (JSONC, via hujson).
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse manifest jsonc: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if m.Version == "" {
		return fmt.Errorf("missing required field: version")
	}
	if m.EntryPoint == "" {
		return fmt.Errorf("missing required field: entry_point")
	}
	return nil
}

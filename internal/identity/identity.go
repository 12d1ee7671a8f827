// Package identity manages agent identities: registration, the single
// active-identity pointer, and each identity's on-disk directory.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/agentcore/runtime/internal/config"
)

var codePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Identity is a registered agent identity (spec §3 Agent Identity).
type Identity struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry manages identities under a data folder.
type Registry struct {
	dataFolder string
}

// NewRegistry creates a Registry rooted at dataFolder.
func NewRegistry(dataFolder string) *Registry {
	return &Registry{dataFolder: dataFolder}
}

// Register creates a new identity. The code must be a kebab-case slug and
// must not already be registered.
func (r *Registry) Register(code, name, role, projectID string) (*Identity, error) {
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("invalid identity code %q: must be kebab-case", code)
	}
	dir := config.AgentDir(code)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("identity %q already registered", code)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create identity dir: %w", err)
	}

	id := &Identity{Code: code, Name: name, Role: role, ProjectID: projectID, CreatedAt: time.Now()}
	if err := writeJSONAtomic(filepath.Join(dir, "identity.json"), id); err != nil {
		return nil, fmt.Errorf("write identity: %w", err)
	}
	return id, nil
}

// Use sets the active-identity pointer. The identity must already exist.
func (r *Registry) Use(code string) error {
	if _, err := r.Get(code); err != nil {
		return err
	}
	return writeFileAtomic(config.ActiveAgentPath(), []byte(code))
}

// Whoami returns the currently active identity, or ok=false if none is set.
func (r *Registry) Whoami() (*Identity, bool, error) {
	b, err := os.ReadFile(config.ActiveAgentPath())
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read active agent pointer: %w", err)
	}
	code := string(b)
	id, err := r.Get(code)
	if err != nil {
		return nil, false, err
	}
	return id, true, nil
}

// Get loads a single identity by code.
func (r *Registry) Get(code string) (*Identity, error) {
	path := filepath.Join(config.AgentDir(code), "identity.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity %q not found: %w", code, err)
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return nil, fmt.Errorf("decode identity %q: %w", code, err)
	}
	return &id, nil
}

// List returns every registered identity, sorted by code.
func (r *Registry) List() ([]*Identity, error) {
	agentsDir := filepath.Join(r.dataFolder, "agents")
	entries, err := os.ReadDir(agentsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list agents dir: %w", err)
	}

	var ids []*Identity
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := r.Get(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Code < ids[j].Code })
	return ids, nil
}

// Remove deletes an identity's directory. If it was the active identity,
// the active-identity pointer is cleared.
func (r *Registry) Remove(code string) error {
	if _, err := r.Get(code); err != nil {
		return err
	}
	if active, ok, _ := r.Whoami(); ok && active.Code == code {
		if err := os.Remove(config.ActiveAgentPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear active pointer: %w", err)
		}
	}
	return os.RemoveAll(config.AgentDir(code))
}

func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

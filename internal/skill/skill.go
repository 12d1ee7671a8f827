// Package skill holds the loaded-skill registry and the process-wide
// runtime context singleton (spec §4.7).
package skill

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/agentcore/runtime/internal/manifest"
	"github.com/agentcore/runtime/internal/permissions"
)

// Skill is the capability set every loaded skill must expose: a command
// root for CLI dispatch, and an init hook (which may do nothing) called once with a
// RestrictedContext once the runtime context is fully assembled. The
// loader depends on this interface, never on a concrete type name (spec
// design note: "Duck-typed skill entry points").
type Skill interface {
	Command() *cli.Command
	Init(ctx *permissions.RestrictedContext) error
}

// SearchProvider is the optional capability a Skill may additionally
// implement to participate in the universal search aggregator (C8).
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Result is one universal-search hit (spec §4.8).
type Result struct {
	Skill    string         `json:"skill"`
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// Factory constructs a Skill instance. Skills register a Factory under
// their entry_point string so the loader can resolve "package.module:symbol"
// without reflection (spec design note: "no reflection against arbitrary
// symbols").
type Factory func(m *manifest.Manifest) Skill

var factories = make(map[string]Factory)

// RegisterFactory associates entryPoint with a Factory. Skill packages
// call this from an init() func.
func RegisterFactory(entryPoint string, f Factory) {
	factories[entryPoint] = f
}

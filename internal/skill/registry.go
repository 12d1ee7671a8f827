package skill

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/agentcore/runtime/internal/corekit"
	"github.com/agentcore/runtime/internal/events"
	"github.com/agentcore/runtime/internal/manifest"
	"github.com/agentcore/runtime/internal/migrate"
	"github.com/agentcore/runtime/internal/permissions"
)

// entry pairs a loaded skill with its manifest.
type entry struct {
	manifest *manifest.Manifest
	skill    Skill
}

// Registry holds every loaded skill and doubles as the process-wide
// runtime context: it owns the shared store handle, event bus, and
// permission registry once Boot completes (spec §4.7 step 4).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	db          *sql.DB
	bus         *events.Bus
	permissions *permissions.Registry
}

// NewRegistry creates an empty Registry bound to the given shared
// resources, which must already be fully initialized.
func NewRegistry(db *sql.DB, bus *events.Bus, perms *permissions.Registry) *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		db:          db,
		bus:         bus,
		permissions: perms,
	}
}

// WriteList is the set of skill names known to need STORE_WRITE and
// EVENT_PUBLISH by default, e.g. from config.
type WriteList map[string]bool

// Boot discovers manifests under dirs, resolves their dependency order,
// applies the schema/migrations of each skill whose manifest sets
// requires_db, registers every skill in the permission
// registry, instantiates it via its registered factory, and finally calls
// every skill's Init hook in dependency order (spec §4.7 steps 2-5).
func (r *Registry) Boot(dirs []string, writeList WriteList) error {
	found, err := manifest.Discover(dirs)
	if err != nil {
		return fmt.Errorf("discover manifests: %w", err)
	}

	ordered, err := manifest.Resolve(found)
	if err != nil {
		return err
	}

	if err := migrate.EnsureFrameworkSchema(r.db); err != nil {
		return err
	}

	var toInit []*entry
	for _, m := range ordered {
		if m.RequiresDB {
			if err := migrate.Apply(r.db, m.Name, m.SchemaFile, m.MigrationsDir); err != nil {
				return err
			}
		}

		r.permissions.Register(m.Name, writeList[m.Name])

		factory, ok := factories[m.EntryPoint]
		if !ok {
			slog.Warn("skill: no factory registered for entry point, skipping instantiation", "skill", m.Name, "entry_point", m.EntryPoint)
			r.addEntry(m, nil)
			continue
		}
		sk := factory(m)

		e := r.addEntry(m, sk)
		toInit = append(toInit, e)
	}

	for _, e := range toInit {
		if e.skill == nil {
			continue
		}
		rc := permissions.NewRestrictedContext(e.manifest.Name, r.db, r.bus, r, r.permissions)
		if err := e.skill.Init(rc); err != nil {
			return fmt.Errorf("init skill %s: %w", e.manifest.Name, err)
		}
	}

	return nil
}

func (r *Registry) addEntry(m *manifest.Manifest, sk Skill) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{manifest: m, skill: sk}
	r.entries[m.Name] = e
	return e
}

// Get returns the loaded skill named name.
func (r *Registry) Get(name string) (Skill, *manifest.Manifest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, nil, false
	}
	return e.skill, e.manifest, true
}

// Names returns every loaded skill name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manifests returns every loaded skill's manifest, sorted by name.
func (r *Registry) Manifests() []*manifest.Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*manifest.Manifest, 0, len(names))
	for _, name := range names {
		out = append(out, r.entries[name].manifest)
	}
	return out
}

// SearchProviders returns every loaded skill implementing SearchProvider.
func (r *Registry) SearchProviders() map[string]SearchProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]SearchProvider)
	for name, e := range r.entries {
		if e.skill == nil {
			continue
		}
		if sp, ok := e.skill.(SearchProvider); ok {
			out[name] = sp
		}
	}
	return out
}

// Call implements permissions.SkillCaller by dispatching to another
// loaded skill's command root is not meaningful for RPC method dispatch;
// concrete skills that want to be callable implement Caller below and are
// looked up here.
func (r *Registry) Call(ctx context.Context, skillName, method string, args []any) (any, error) {
	sk, _, ok := r.Get(skillName)
	if !ok {
		return nil, corekit.NotFound(skillName)
	}
	caller, ok := sk.(Caller)
	if !ok {
		return nil, corekit.MethodNotFound(skillName, method)
	}
	return caller.CallMethod(ctx, method, args)
}

// Caller is the optional capability a Skill implements to be invokable by
// name via CallSkill or the daemon's RPC surface.
type Caller interface {
	CallMethod(ctx context.Context, method string, args []any) (any, error)
}

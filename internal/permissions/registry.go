package permissions

import "sync"

// Registry is the process-wide, mutex-guarded map of skill name to granted
// capabilities. It is effectively read-only after boot (spec §5 Shared
// resource policy) but mutation is still guarded for safety.
type Registry struct {
	mu     sync.RWMutex
	grants map[string]CapabilitySet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{grants: make(map[string]CapabilitySet)}
}

// Register grants a skill the default capability set, plus the write-list
// extras if writeListed is true. Calling Register again for the same skill
// replaces its grants.
func (r *Registry) Register(skill string, writeListed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grants := defaultGrants
	if writeListed {
		grants = defaultGrants.merge(writeListExtra)
	}
	r.grants[skill] = grants
}

// RegisterExplicit grants a skill exactly the given capability set,
// bypassing the default/write-list derivation. The skill boot path does
// not call it, and the manifest format has no permissions field.
func (r *Registry) RegisterExplicit(skill string, set CapabilitySet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[skill] = set
}

// Grants returns the capability set granted to skill. An unregistered
// skill gets the default grants (deny-by-default beyond those).
func (r *Registry) Grants(skill string) CapabilitySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if set, ok := r.grants[skill]; ok {
		return set
	}
	return defaultGrants
}

// Allows reports whether skill holds capability c.
func (r *Registry) Allows(skill string, c Capability) bool {
	return r.Grants(skill).Has(c)
}

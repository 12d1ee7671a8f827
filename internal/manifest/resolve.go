package manifest

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/agentcore/runtime/internal/corekit"
)

// requiresEntry splits a "name" or "name@constraint" requires string.
func requiresEntry(s string) (name, constraint string) {
	if i := strings.Index(s, "@"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// Resolve builds the requires dependency graph over the discovered
// manifests and returns them topologically sorted (Kahn's algorithm), so
// that every skill appears after everything it requires. It fails fast
// with a classified corekit.Error on an unmet dependency, a failed semver
// constraint, or a cycle.
func Resolve(manifests map[string]*Manifest) ([]*Manifest, error) {
	// Validate requires edges up front.
	for name, m := range manifests {
		for _, req := range m.Requires {
			dep, constraint := requiresEntry(req)
			depManifest, ok := manifests[dep]
			if !ok {
				return nil, corekit.UnmetDependency(name, dep)
			}
			if constraint == "" {
				continue
			}
			c, err := semver.NewConstraint(constraint)
			if err != nil {
				return nil, corekit.VersionConstraintFailed(name, dep, constraint)
			}
			v, err := semver.NewVersion(depManifest.Version)
			if err != nil {
				return nil, corekit.VersionConstraintFailed(name, dep, constraint)
			}
			if !c.Check(v) {
				return nil, corekit.VersionConstraintFailed(name, dep, constraint)
			}
		}
	}

	// Kahn's algorithm: indegree = number of unresolved requires.
	indegree := make(map[string]int, len(manifests))
	dependents := make(map[string][]string) // dep -> skills that require it
	names := make([]string, 0, len(manifests))
	for name, m := range manifests {
		names = append(names, name)
		indegree[name] = len(m.Requires)
		for _, req := range m.Requires {
			dep, _ := requiresEntry(req)
			dependents[dep] = append(dependents[dep], name)
		}
	}
	sort.Strings(names) // deterministic iteration order

	var ready []string
	for _, n := range names {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	var order []*Manifest
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, manifests[n])

		next := append([]string{}, dependents[n]...)
		sort.Strings(next)
		for _, dependent := range next {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
				sort.Strings(ready)
			}
		}
	}

	if len(order) != len(manifests) {
		var cycle []string
		for _, n := range names {
			if indegree[n] > 0 {
				cycle = append(cycle, n)
			}
		}
		sort.Strings(cycle)
		return nil, corekit.Cycle(cycle)
	}

	return order, nil
}

package manifest

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Discover scans dirs for <dir>/*/skill.json manifests and merges them
// into a map keyed by manifest name. On a name conflict, the manifest
// found in an earlier dir wins ("local wins" over later/installed dirs)
// and a warning is emitted.
func Discover(dirs []string) (map[string]*Manifest, error) {
	found := make(map[string]*Manifest)

	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*", "skill.json"))
		if err != nil {
			return nil, fmt.Errorf("glob skills dir %s: %w", dir, err)
		}
		for _, path := range matches {
			m, err := Load(path)
			if err != nil {
				slog.Warn("manifest: failed to load skill.json", "path", path, "error", err)
				continue
			}
			if existing, ok := found[m.Name]; ok {
				slog.Warn("manifest: duplicate skill name, keeping first discovered", "name", m.Name, "kept", existing.Dir, "ignored", m.Dir)
				continue
			}
			found[m.Name] = m
		}
	}
	return found, nil
}

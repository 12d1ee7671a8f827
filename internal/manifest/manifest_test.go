package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, version, entryPoint string, requires []string) {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	reqJSON := "[]"
	if len(requires) > 0 {
		reqJSON = `["` + joinQuoted(requires) + `"]`
	}
	content := `{
  "name": "` + name + `",
  "version": "` + version + `",
  "description": "test skill",
  "requires": ` + reqJSON + `,
  "entry_point": "` + entryPoint + `"
}`
	if err := os.WriteFile(filepath.Join(skillDir, "skill.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write skill.json: %v", err)
	}
}

func joinQuoted(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += `", "`
		}
		out += s
	}
	return out
}

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "notes", "1.0.0", "notes.pkg:Root", nil)

	m, err := Load(filepath.Join(dir, "notes", "skill.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "notes" {
		t.Fatalf("expected name notes, got %q", m.Name)
	}
}

func TestLoadMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "bad")
	os.MkdirAll(skillDir, 0o755)
	os.WriteFile(filepath.Join(skillDir, "skill.json"), []byte(`{"name": "bad"}`), 0o644)

	if _, err := Load(filepath.Join(skillDir, "skill.json")); err == nil {
		t.Fatal("expected error for manifest missing version/entry_point")
	}
}

func TestDiscoverLocalWins(t *testing.T) {
	localDir := t.TempDir()
	installedDir := t.TempDir()

	writeManifest(t, localDir, "notes", "2.0.0", "local.pkg:Root", nil)
	writeManifest(t, installedDir, "notes", "1.0.0", "installed.pkg:Root", nil)

	found, err := Discover([]string{localDir, installedDir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if found["notes"].Version != "2.0.0" {
		t.Fatalf("expected local manifest (2.0.0) to win, got %q", found["notes"].Version)
	}
}

func TestResolveDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "c", "1.0.0", "c.pkg:Root", nil)
	writeManifest(t, dir, "b", "1.0.0", "b.pkg:Root", []string{"c"})
	writeManifest(t, dir, "a", "1.0.0", "a.pkg:Root", []string{"b"})

	found, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	order, err := Resolve(found)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("expected 3 manifests, got %d", len(order))
	}
	names := []string{order[0].Name, order[1].Name, order[2].Name}
	if names[0] != "c" || names[1] != "b" || names[2] != "a" {
		t.Fatalf("expected order [c b a], got %v", names)
	}
}

func TestResolveUnmetDependency(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a", "1.0.0", "a.pkg:Root", []string{"missing"})

	found, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if _, err := Resolve(found); err == nil {
		t.Fatal("expected UNMET_DEPENDENCY error")
	}
}

func TestResolveCycle(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a", "1.0.0", "a.pkg:Root", []string{"b"})
	writeManifest(t, dir, "b", "1.0.0", "b.pkg:Root", []string{"a"})

	found, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if _, err := Resolve(found); err == nil {
		t.Fatal("expected DEPENDENCY_CYCLE error")
	}
}

func TestResolveVersionConstraint(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "base", "1.0.0", "base.pkg:Root", nil)
	writeManifest(t, dir, "dependent", "1.0.0", "dependent.pkg:Root", []string{"base@^2.0.0"})

	found, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if _, err := Resolve(found); err == nil {
		t.Fatal("expected VERSION_CONSTRAINT_FAILED error")
	}
}

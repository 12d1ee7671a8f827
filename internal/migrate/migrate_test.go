package migrate

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := EnsureFrameworkSchema(db); err != nil {
		t.Fatalf("ensure framework schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeMigration(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		t.Fatalf("write migration %s: %v", filename, err)
	}
}

func TestApplyMigrationsDirInOrder(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeMigration(t, dir, "001_init.sql", `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	writeMigration(t, dir, "002_add_tags.sql", `ALTER TABLE notes ADD COLUMN tags TEXT`)

	if err := Apply(db, "notes", "", dir); err != nil {
		t.Fatalf("apply: %v", err)
	}

	rows, err := db.Query(`SELECT version FROM _migrations WHERE skill_name = 'notes' ORDER BY version`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var versions []int
	for rows.Next() {
		var v int
		rows.Scan(&v)
		versions = append(versions, v)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("expected versions [1 2], got %v", versions)
	}

	if _, err := db.Exec(`INSERT INTO notes (body, tags) VALUES ('hi', 'x')`); err != nil {
		t.Fatalf("expected both migrations applied, insert failed: %v", err)
	}
}

func TestApplyIsIdempotentOnSecondBoot(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeMigration(t, dir, "001_init.sql", `CREATE TABLE notes (id INTEGER PRIMARY KEY)`)

	if err := Apply(db, "notes", "", dir); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := Apply(db, "notes", "", dir); err != nil {
		t.Fatalf("second apply should be a no-op, got error: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE skill_name = 'notes'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 migration row, got %d", count)
	}
}

func TestChecksumMismatchIsFatal(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	writeMigration(t, dir, "001_init.sql", `CREATE TABLE notes (id INTEGER PRIMARY KEY)`)

	if err := Apply(db, "notes", "", dir); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	writeMigration(t, dir, "001_init.sql", `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	if err := Apply(db, "notes", "", dir); err == nil {
		t.Fatal("expected MIGRATION_CHECKSUM_MISMATCH after editing an applied migration")
	}
}

func TestApplySchemaFileOnce(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.sql")
	os.WriteFile(schema, []byte(`CREATE TABLE issues (id INTEGER PRIMARY KEY)`), 0o644)

	if err := Apply(db, "issues", schema, ""); err != nil {
		t.Fatalf("apply schema file: %v", err)
	}
	if err := Apply(db, "issues", schema, ""); err != nil {
		t.Fatalf("second apply should be a no-op: %v", err)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE skill_name = 'issues'`).Scan(&count)
	if count != 1 {
		t.Fatalf("expected 1 migration row for schema_file skill, got %d", count)
	}
}

func TestApplyNoopWithoutSchemaOrMigrations(t *testing.T) {
	db := openTestDB(t)
	if err := Apply(db, "bare", "", ""); err != nil {
		t.Fatalf("expected no-op for a skill without schema_file or migrations_dir: %v", err)
	}
}

// Package migrate applies per-skill schema files and forward-only,
// checksum-guarded SQL migrations in dependency order (spec §4.3).
package migrate

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentcore/runtime/internal/corekit"
)

var filenamePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_-]+)\.sql$`)

// EnsureFrameworkSchema creates the `_migrations` ledger table used to
// track every skill's applied schema/migrations. Idempotent.
func EnsureFrameworkSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS _migrations (
	skill_name TEXT NOT NULL,
	version    INTEGER NOT NULL,
	filename   TEXT NOT NULL,
	sha256     TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	PRIMARY KEY (skill_name, version)
)`)
	if err != nil {
		return fmt.Errorf("create _migrations table: %w", err)
	}
	return nil
}

// file is one matched migration file.
type file struct {
	version  int
	filename string
	path     string
}

// Apply runs the schema/migration algorithm for one skill (spec §4.3):
// if migrationsDir is set, apply every file whose version exceeds the
// current applied version, in ascending order, each inside its own
// transaction, erroring on a checksum mismatch for any already-applied
// file. Else if schemaFile is set and no migration row exists yet for
// this skill, apply it once as version 1. Otherwise it's a no-op.
func Apply(db *sql.DB, skillName, schemaFile, migrationsDir string) error {
	if migrationsDir != "" {
		return applyMigrationsDir(db, skillName, migrationsDir)
	}
	if schemaFile != "" {
		return applySchemaFileOnce(db, skillName, schemaFile)
	}
	return nil
}

func applyMigrationsDir(db *sql.DB, skillName, dir string) error {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations dir %s: %w", dir, err)
	}

	var files []file
	for _, name := range matches {
		m := filenamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		files = append(files, file{version: version, filename: name, path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })

	current, applied, err := appliedVersions(db, skillName)
	if err != nil {
		return err
	}

	for _, f := range files {
		content, err := os.ReadFile(f.path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f.filename, err)
		}
		checksum := sha256sum(content)

		if f.version <= current {
			if prior, ok := applied[f.version]; ok && prior != checksum {
				return corekit.ChecksumMismatch(skillName, f.version)
			}
			continue
		}

		if err := applyOne(db, skillName, f, content, checksum); err != nil {
			return &corekit.Error{Kind: corekit.KindMigrationApplyFailed, Message: err.Error(), Skill: skillName, Detail: f.filename}
		}
	}
	return nil
}

func applyOne(db *sql.DB, skillName string, f file, content []byte, checksum string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("apply %s: %w", f.filename, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO _migrations (skill_name, version, filename, sha256, applied_at) VALUES (?, ?, ?, ?, ?)`,
		skillName, f.version, f.filename, checksum, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", f.filename, err)
	}
	return tx.Commit()
}

func applySchemaFileOnce(db *sql.DB, skillName, schemaFile string) error {
	_, applied, err := appliedVersions(db, skillName)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		return nil
	}

	content, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema file %s: %w", schemaFile, err)
	}
	checksum := sha256sum(content)

	f := file{version: 1, filename: filepath.Base(schemaFile)}
	if err := applyOne(db, skillName, f, content, checksum); err != nil {
		return &corekit.Error{Kind: corekit.KindMigrationApplyFailed, Message: err.Error(), Skill: skillName, Detail: f.filename}
	}
	return nil
}

// appliedVersions returns the highest applied version and a map of
// version -> recorded checksum for skillName.
func appliedVersions(db *sql.DB, skillName string) (int, map[int]string, error) {
	rows, err := db.Query(`SELECT version, sha256 FROM _migrations WHERE skill_name = ?`, skillName)
	if err != nil {
		return 0, nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	current := 0
	for rows.Next() {
		var version int
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return 0, nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = checksum
		if version > current {
			current = version
		}
	}
	return current, applied, rows.Err()
}

func sha256sum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

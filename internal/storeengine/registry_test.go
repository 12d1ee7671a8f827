package storeengine

import (
	"path/filepath"
	"testing"
)

func TestGetCachesHandle(t *testing.T) {
	r := NewRegistry()
	defer r.DisposeAll()

	url := filepath.Join(t.TempDir(), "agent.db")
	db1, err := r.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	db2, err := r.Get(url)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if db1 != db2 {
		t.Fatal("expected the same cached handle on repeated Get")
	}
}

func TestGetConfiguresPragmas(t *testing.T) {
	r := NewRegistry()
	defer r.DisposeAll()

	db, err := r.Get(":memory:")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestDispose(t *testing.T) {
	r := NewRegistry()
	url := filepath.Join(t.TempDir(), "agent.db")
	if _, err := r.Get(url); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := r.Dispose(url); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if err := r.Dispose(url); err != nil {
		t.Fatalf("dispose again should be a no-op: %v", err)
	}
}

func TestDisposeAllIdempotent(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get(":memory:"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := r.DisposeAll(); err != nil {
		t.Fatalf("dispose all: %v", err)
	}
	if err := r.DisposeAll(); err != nil {
		t.Fatalf("dispose all again should be a no-op: %v", err)
	}
}

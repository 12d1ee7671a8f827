// Package storeengine caches and disposes the embedded relational store
// handles the runtime hands out per agent identity (spec §4.2).
package storeengine

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is the default busy-wait timeout for a new handle.
const DefaultBusyTimeout = 5 * time.Second

// HeavyBusyTimeout is available to skills with heavier write patterns via
// the WithBusyTimeout option.
const HeavyBusyTimeout = 30 * time.Second

// Option configures a newly-opened handle.
type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout overrides the default 5s busy-wait timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Registry caches store handles by URL (file path or ":memory:"), opening
// and pragma-tuning a new one on first use.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*sql.DB
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*sql.DB)}
}

// Get returns the cached handle for url, opening and configuring a new one
// if none exists yet.
func (r *Registry) Get(url string, opts ...Option) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.handles[url]; ok {
		return db, nil
	}

	cfg := options{busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite", url)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", url, err)
	}
	if err := configure(db, cfg.busyTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure store %s: %w", url, err)
	}

	r.handles[url] = db
	return db, nil
}

// configure applies the "durable-enough, fast-enough" pragma profile:
// WAL journaling for cross-thread reads during a write, a busy-wait
// timeout instead of immediate SQLITE_BUSY, foreign keys on, and NORMAL
// synchronous mode (safe under WAL, faster than FULL).
func configure(db *sql.DB, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Dispose releases one cached handle, closing its underlying connection.
func (r *Registry) Dispose(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, ok := r.handles[url]
	if !ok {
		return nil
	}
	delete(r.handles, url)
	return db.Close()
}

// DisposeAll releases every cached handle. Idempotent: calling it twice is
// a no-op the second time.
func (r *Registry) DisposeAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for url, db := range r.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", url, err)
		}
		delete(r.handles, url)
	}
	return firstErr
}

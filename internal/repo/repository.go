package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is a generic helper over a single table for an entity type T.
// Callers supply the SQL and the scan/bind functions; Repository only
// wires the generic plumbing (spec §4.9 Repository[T]).
type Repository[T any] struct {
	db *sql.DB

	table  string
	scan   func(row *sql.Rows) (T, error)
	id     func(T) any
	insert func(t T) (query string, args []any)
	update func(t T) (query string, args []any)
}

// Config describes how a Repository maps T to/from a table.
type Config[T any] struct {
	Table  string
	Scan   func(row *sql.Rows) (T, error)
	ID     func(T) any
	Insert func(t T) (query string, args []any)
	Update func(t T) (query string, args []any)
}

// New builds a Repository[T] from cfg.
func New[T any](db *sql.DB, cfg Config[T]) *Repository[T] {
	return &Repository[T]{
		db:     db,
		table:  cfg.Table,
		scan:   cfg.Scan,
		id:     cfg.ID,
		insert: cfg.Insert,
		update: cfg.Update,
	}
}

// Add inserts t and returns it.
func (r *Repository[T]) Add(ctx context.Context, t T) (T, error) {
	query, args := r.insert(t)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var zero T
		return zero, fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return t, nil
}

// Get returns the first row matching whereClause/args, or ok=false if none
// exists.
func (r *Repository[T]) Get(ctx context.Context, whereClause string, args ...any) (T, bool, error) {
	var zero T
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", r.table, whereClause)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, false, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return zero, false, nil
	}
	t, err := r.scan(rows)
	if err != nil {
		return zero, false, fmt.Errorf("scan %s row: %w", r.table, err)
	}
	return t, true, nil
}

// GetAll returns up to limit rows starting at offset, ordered by rowid.
func (r *Repository[T]) GetAll(ctx context.Context, limit, offset int) ([]T, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY rowid LIMIT ? OFFSET ?", r.table)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites t's row.
func (r *Repository[T]) Update(ctx context.Context, t T) (T, error) {
	query, args := r.update(t)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var zero T
		return zero, fmt.Errorf("update %s: %w", r.table, err)
	}
	return t, nil
}

// Delete removes the row matching whereClause/args, reporting whether any
// row was removed.
func (r *Repository[T]) Delete(ctx context.Context, whereClause string, args ...any) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", r.table, whereClause)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", r.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Search runs an arbitrary filtered SELECT and scans every matching row.
func (r *Repository[T]) Search(ctx context.Context, whereClause string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", r.table, whereClause)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

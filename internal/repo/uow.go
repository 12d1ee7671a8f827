// Package repo provides an optional ORM-style layer — a generic
// repository and a transactional unit-of-work scope — for skills that
// prefer typed access over raw restricted-context statements (spec §4.9).
package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork scopes a single transaction: Run begins a tx, hands it to fn,
// and commits on a clean return or rolls back if fn returns an error or
// panics.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Run executes fn inside a transaction, committing on success and rolling
// back on error or panic (the panic is re-raised after rollback).
func (u *UnitOfWork) Run(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

package repo

import (
	"context"
	"database/sql"
)

// BaseSkill bundles a lazy UnitOfWork for skills that want transactional
// helpers layered on top of their restricted-context store handle. It
// never closes db itself (spec invariant: the runtime owns that handle's
// lifetime).
type BaseSkill struct {
	uow *UnitOfWork
}

// NewBaseSkill creates a BaseSkill over db.
func NewBaseSkill(db *sql.DB) *BaseSkill {
	return &BaseSkill{uow: NewUnitOfWork(db)}
}

// Scoped runs fn inside a commit-or-rollback transaction scope.
func (b *BaseSkill) Scoped(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return b.uow.Run(ctx, fn)
}

package permissions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentcore/runtime/internal/corekit"
	"github.com/agentcore/runtime/internal/events"
)

// SkillCaller invokes another skill's registered method by name. It is
// satisfied by the skill registry (internal/skill), passed in here to
// avoid an import cycle.
type SkillCaller interface {
	Call(ctx context.Context, skill, method string, args []any) (any, error)
}

// RestrictedContext is the per-skill wrapper around the shared runtime
// context that enforces capability checks before every store write, event
// publish, or cross-skill call (spec §4.5).
type RestrictedContext struct {
	skill   string
	db      *sql.DB
	bus     *events.Bus
	caller  SkillCaller
	grants  CapabilitySet
}

// NewRestrictedContext builds a RestrictedContext for skill using the
// capabilities currently granted by registry.
func NewRestrictedContext(skill string, db *sql.DB, bus *events.Bus, caller SkillCaller, registry *Registry) *RestrictedContext {
	return &RestrictedContext{
		skill:  skill,
		db:     db,
		bus:    bus,
		caller: caller,
		grants: registry.Grants(skill),
	}
}

// Exec runs a write-class or read-class SQL statement, enforcing
// STORE_WRITE for write-class statements. Read-class statements require
// STORE_READ, which is part of the default grant for every skill.
// Unclassifiable statements are denied outright.
func (c *RestrictedContext) Exec(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	switch ClassifyStatement(stmt) {
	case ClassWrite:
		if !c.grants.Has(StoreWrite) {
			return nil, corekit.Denied(c.skill, string(StoreWrite))
		}
	case ClassRead:
		// SELECT/EXPLAIN via Exec is unusual but harmless; still gated on
		// STORE_READ for consistency, though every skill holds it by default.
		if !c.grants.Has(StoreRead) {
			return nil, corekit.Denied(c.skill, string(StoreRead))
		}
	default:
		return nil, corekit.Denied(c.skill, "STORE_WRITE")
	}
	return c.db.ExecContext(ctx, stmt, args...)
}

// Query runs a read-class SQL statement, requiring STORE_READ.
func (c *RestrictedContext) Query(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	class := ClassifyStatement(stmt)
	if class == ClassWrite {
		if !c.grants.Has(StoreWrite) {
			return nil, corekit.Denied(c.skill, string(StoreWrite))
		}
	} else if class == ClassUnknown {
		return nil, corekit.Denied(c.skill, string(StoreRead))
	} else if !c.grants.Has(StoreRead) {
		return nil, corekit.Denied(c.skill, string(StoreRead))
	}
	return c.db.QueryContext(ctx, stmt, args...)
}

// Publish requires EVENT_PUBLISH.
func (c *RestrictedContext) Publish(event events.Event) error {
	if !c.grants.Has(EventPublish) {
		return corekit.Denied(c.skill, string(EventPublish))
	}
	event.Skill = c.skill
	return c.bus.Publish(event)
}

// Subscribe requires EVENT_SUBSCRIBE.
func (c *RestrictedContext) Subscribe(handler events.Handler, types ...events.Type) (func(), error) {
	if !c.grants.Has(EventSubscribe) {
		return nil, corekit.Denied(c.skill, string(EventSubscribe))
	}
	return c.bus.Subscribe(handler, types...), nil
}

// CallSkill requires SKILL_CALL.
func (c *RestrictedContext) CallSkill(ctx context.Context, skill, method string, args []any) (any, error) {
	if !c.grants.Has(SkillCall) {
		return nil, corekit.Denied(c.skill, string(SkillCall))
	}
	if c.caller == nil {
		return nil, fmt.Errorf("no skill caller configured")
	}
	return c.caller.Call(ctx, skill, method, args)
}

// Close is a no-op: the shared store handle's lifetime belongs to the
// runtime, never to an individual skill (spec invariant 5).
func (c *RestrictedContext) Close() error {
	return nil
}

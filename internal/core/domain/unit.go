package domain

import (
	"context"

	"github.com/google/uuid"
)

// UnitID identifies one logical unit of execution (a goroutine-scoped
// request, job, ...). It is stable for the unit's lifetime and unique among
// concurrently running units.
type UnitID string

type unitKey struct{}

// NewUnit returns a context carrying a fresh logical unit, replacing any
// unit the parent carried. Use it when spawning concurrent work that must
// not share the parent's transaction.
func NewUnit(ctx context.Context) (context.Context, UnitID) {
	id := UnitID(uuid.NewString())
	return context.WithValue(ctx, unitKey{}, id), id
}

// EnsureUnit returns ctx unchanged when it already carries a unit, otherwise
// a child context with a new one.
func EnsureUnit(ctx context.Context) (context.Context, UnitID) {
	if id, ok := UnitFromContext(ctx); ok {
		return ctx, id
	}
	return NewUnit(ctx)
}

// UnitFromContext extracts the logical unit carried by ctx.
func UnitFromContext(ctx context.Context) (UnitID, bool) {
	id, ok := ctx.Value(unitKey{}).(UnitID)
	return id, ok && id != ""
}

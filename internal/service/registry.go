package service

import (
	"sync"

	"pgtx-coordinator/internal/core/domain"
)

// Registry binds each logical unit to its active transaction. Entries are
// only added and removed by the unit that owns them; the lock protects the
// map itself.
type Registry struct {
	mu      sync.RWMutex
	handles map[domain.UnitID]*TransactionHandle
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[domain.UnitID]*TransactionHandle)}
}

// Get returns the handle registered for unit, or nil.
func (r *Registry) Get(unit domain.UnitID) *TransactionHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[unit]
}

// Put registers h for unit. It reports false and leaves the registry
// unchanged when unit already has a transaction.
func (r *Registry) Put(unit domain.UnitID, h *TransactionHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handles[unit]; exists {
		return false
	}
	r.handles[unit] = h
	return true
}

// Remove drops the entry for unit.
func (r *Registry) Remove(unit domain.UnitID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, unit)
}

// Len returns the number of active transactions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Clear drops every entry and returns the handles that were active.
func (r *Registry) Clear() []*TransactionHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]*TransactionHandle, 0, len(r.handles))
	for _, h := range r.handles {
		active = append(active, h)
	}
	r.handles = make(map[domain.UnitID]*TransactionHandle)
	return active
}

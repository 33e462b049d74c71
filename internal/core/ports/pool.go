package ports

import (
	"context"

	"pgtx-coordinator/internal/core/domain"
)

//go:generate mockgen -source=pool.go -destination=mocks/mock_pool.go -package=mocks

// ConnPool leases connections exclusively to one caller at a time.
type ConnPool interface {
	// Init opens the minimum number of connections and starts the reaper.
	Init(ctx context.Context) error
	// Lease blocks until a connection is free or the wait window elapses.
	Lease(ctx context.Context) (Conn, error)
	// Return hands a leased connection back to the pool.
	Return(conn Conn)
	// Discard closes a leased connection instead of returning it.
	Discard(conn Conn)
	Stats() domain.PoolStats
	IsAlive() bool
	Close()
}

package postgres

import (
	"time"

	"pgtx-coordinator/internal/core/ports"
)

// PooledConn is a backend connection owned by a Pool. While leased it is
// owned exclusively by the leasing caller.
type PooledConn struct {
	ports.Conn

	id        uint64
	createdAt time.Time
	lastUsed  time.Time
	pool      *Pool
}

// ID returns the pool-local identifier of the connection.
func (c *PooledConn) ID() uint64 {
	return c.id
}

// CreatedAt returns when the backend connection was opened.
func (c *PooledConn) CreatedAt() time.Time {
	return c.createdAt
}

func (c *PooledConn) lifetimeExceeded(now time.Time, maxLifetime time.Duration) bool {
	return maxLifetime > 0 && now.Sub(c.createdAt) >= maxLifetime
}

func (c *PooledConn) idleExceeded(now time.Time, maxIdle time.Duration) bool {
	return maxIdle > 0 && now.Sub(c.lastUsed) >= maxIdle
}

package postgres

import (
	"context"

	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/dberror"
)

// HealthCheck implements ports.HealthChecker for the connection pool.
type HealthCheck struct {
	pool func() ports.ConnPool
}

// NewHealthCheck creates a PostgreSQL health checker. pool returns the pool
// currently in use, or nil when none is open.
func NewHealthCheck(pool func() ports.ConnPool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping leases a connection (which runs the liveness probe) and checks it.
func (h *HealthCheck) Ping(ctx context.Context) error {
	pool := h.pool()
	if pool == nil {
		return dberror.PoolClosed()
	}

	conn, err := pool.Lease(ctx)
	if err != nil {
		return err
	}
	defer pool.Return(conn)

	return conn.Ping(ctx)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "postgresql"
}

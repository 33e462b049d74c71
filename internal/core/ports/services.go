package ports

import (
	"context"

	"pgtx-coordinator/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// Coordinator is the operational surface of the transaction driver exposed
// to the admin API.
type Coordinator interface {
	// Stats returns a snapshot of the connection pool.
	Stats() domain.PoolStats
	// GetPrimaryKey returns the single-column primary key of table, or ""
	// when the key is composite or absent.
	GetPrimaryKey(ctx context.Context, table string) (string, error)
	// ResetPrimaryKeyCache forces primary keys to be introspected again.
	ResetPrimaryKeyCache(ctx context.Context)
	// ActiveTransactions returns the number of units with an open transaction.
	ActiveTransactions() int
	// CachedPrimaryKeys returns the number of locally cached tables.
	CachedPrimaryKeys() int
}

package dto

import "pgtx-coordinator/internal/core/domain"

// TableURI binds the :table path parameter.
type TableURI struct {
	Table string `uri:"table" binding:"required,max=128,table_name"`
}

// CoordinatorStatusResponse is the body of GET /debug/pool.
type CoordinatorStatusResponse struct {
	Pool               domain.PoolStats `json:"pool"`
	ActiveTransactions int              `json:"active_transactions"`
	CachedPrimaryKeys  int              `json:"cached_primary_keys"`
}

// PrimaryKeyResponse is the body of GET /debug/primary-key/:table.
// PrimaryKey is null when the table has a composite key or none.
type PrimaryKeyResponse struct {
	Table      string  `json:"table"`
	PrimaryKey *string `json:"primary_key"`
}

// NewPrimaryKeyResponse builds the response for a cached lookup result.
func NewPrimaryKeyResponse(table, column string) PrimaryKeyResponse {
	resp := PrimaryKeyResponse{Table: table}
	if column != "" {
		resp.PrimaryKey = &column
	}
	return resp
}

// CacheResetResponse is the body of POST /debug/pk-cache/reset.
type CacheResetResponse struct {
	Evicted int `json:"evicted"`
}

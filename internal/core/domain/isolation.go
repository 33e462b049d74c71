package domain

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// Isolation level tokens accepted by BeginTransaction.
const (
	IsolationSerializable    = "SERIALIZABLE"
	IsolationRepeatableRead  = "REPEATABLE READ"
	IsolationReadCommitted   = "READ COMMITTED"
	IsolationReadUncommitted = "READ UNCOMMITTED"
)

// MapIsolation converts a caller-facing isolation token into the backend
// isolation level. Unknown or empty tokens map to read committed.
func MapIsolation(token string) pgx.TxIsoLevel {
	normalized := strings.ToUpper(strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(token)))

	switch normalized {
	case IsolationRepeatableRead:
		return pgx.RepeatableRead
	case IsolationSerializable:
		return pgx.Serializable
	case IsolationReadUncommitted:
		return pgx.ReadUncommitted
	default:
		return pgx.ReadCommitted
	}
}

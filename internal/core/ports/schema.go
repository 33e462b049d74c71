package ports

import "context"

//go:generate mockgen -source=schema.go -destination=mocks/mock_schema.go -package=mocks

// SchemaIntrospector reads table metadata through the given querier, so that
// tables created inside an open transaction are visible.
type SchemaIntrospector interface {
	// PrimaryKeys returns the primary key columns of table in key order.
	// exists is false when the table is unknown.
	PrimaryKeys(ctx context.Context, q Querier, table string) (columns []string, exists bool, err error)
}

// PrimaryKeyStore is an optional shared second-level store for the
// primary-key cache. An empty column means the table has no singular key.
type PrimaryKeyStore interface {
	Get(ctx context.Context, table string) (column string, found bool, err error)
	Set(ctx context.Context, table string, column string) error
	Reset(ctx context.Context) error
}

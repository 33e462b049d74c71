package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the wire-level client the coordinator drives. *pgx.Conn satisfies
// it, as do pgxmock connections in tests. Savepoints are issued as plain
// statements on the pgx.Tx returned by BeginTx.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	Deallocate(ctx context.Context, name string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens a new backend connection.
type Dialer func(ctx context.Context) (Conn, error)

// Querier runs statements on a connection or inside an open transaction.
// Both Conn and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

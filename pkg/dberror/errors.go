package dberror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the backend-independent class of a database failure.
type Kind int

const (
	// KindStatement covers everything that is neither a constraint nor a
	// connection problem (syntax, permissions, ...). Never retried.
	KindStatement Kind = iota
	// KindConstraint is an integrity-constraint violation. Never retried.
	KindConstraint
	// KindConnection means the backend link is unusable.
	KindConnection
	// KindPoolExhausted means no connection became free within the wait window.
	KindPoolExhausted
	// KindPoolClosed means the pool was closed before or while waiting.
	KindPoolClosed
)

func (k Kind) String() string {
	switch k {
	case KindStatement:
		return "STATEMENT"
	case KindConstraint:
		return "CONSTRAINT"
	case KindConnection:
		return "CONNECTION"
	case KindPoolExhausted:
		return "POOL_EXHAUSTED"
	case KindPoolClosed:
		return "POOL_CLOSED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrPoolExhausted = errors.New("connection pool exhausted")
	ErrPoolClosed    = errors.New("connection pool closed")
	ErrNoTransaction = errors.New("no active transaction")
	ErrNoUnit        = errors.New("context carries no logical unit")
	ErrNoSuchTable   = errors.New("no such table")
)

// Error is a mapped database failure. Query holds the SQL that produced it
// with parameters interpolated, Err the original backend error.
type Error struct {
	Kind  Kind
	Query string
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("[%s] %v (query: %s)", e.Kind, e.Err, e.Query)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, query string, err error) *Error {
	return &Error{Kind: kind, Query: query, Err: err}
}

// PoolExhausted reports a lease that timed out.
func PoolExhausted(detail string) *Error {
	return New(KindPoolExhausted, "", fmt.Errorf("%w: %s", ErrPoolExhausted, detail))
}

// PoolClosed reports a lease against a closed pool.
func PoolClosed() *Error {
	return New(KindPoolClosed, "", ErrPoolClosed)
}

// Map converts a backend error raised while running query into the stable
// taxonomy. Already mapped errors keep their kind; only a missing query text
// is filled in.
func Map(err error, query string) *Error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		if mapped.Query == "" && query != "" {
			return New(mapped.Kind, query, mapped.Err)
		}
		return mapped
	}

	if isConnectionLoss(err) {
		return New(KindConnection, query, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && isConstraintCode(pgErr.Code) {
		return New(KindConstraint, query, err)
	}

	return New(KindStatement, query, err)
}

// KindOf returns the kind of a mapped error.
func KindOf(err error) (Kind, bool) {
	var mapped *Error
	if errors.As(err, &mapped) {
		return mapped.Kind, true
	}
	return KindStatement, false
}

// IsConnection reports whether err is a mapped connection failure.
func IsConnection(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConnection
}

// IsConstraint reports whether err is a mapped constraint violation.
func IsConstraint(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConstraint
}

func isConstraintCode(code string) bool {
	switch code {
	case pgerrcode.IntegrityConstraintViolation,
		pgerrcode.RestrictViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.ForeignKeyViolation,
		pgerrcode.UniqueViolation,
		pgerrcode.CheckViolation,
		pgerrcode.ExclusionViolation:
		return true
	}
	return false
}

func isConnectionLoss(err error) bool {
	// context.DeadlineExceeded satisfies net.Error; a cancelled caller is not a dead link.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.AdminShutdown, pgerrcode.CrashShutdown, pgerrcode.CannotConnectNow:
			return true
		}
		return pgerrcode.IsConnectionException(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	// pgconn marks errors raised before anything reached the server, such as
	// "conn closed" on a dead connection, as safe to retry.
	if pgconn.SafeToRetry(err) {
		return true
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

package service

import (
	"context"
	"fmt"
	"time"

	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/dberror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	deallocateTimeout = 5 * time.Second
	rollbackTimeout   = 5 * time.Second
)

// TransactionHandle pins one logical transaction to one leased connection and
// emulates nesting with savepoints. Level starts at 1: the backend
// transaction is already open when the handle is built. Level 0 means the
// handle is finalized and must not be reused.
//
// A handle is only ever driven by the logical unit that owns it.
type TransactionHandle struct {
	conn  ports.Conn
	tx    pgx.Tx
	log   zerolog.Logger
	level int

	// prepared statements to drop once the transaction is over
	pending []string
}

// NewTransactionHandle wraps an open backend transaction.
func NewTransactionHandle(conn ports.Conn, tx pgx.Tx, log zerolog.Logger) *TransactionHandle {
	return &TransactionHandle{
		conn:  conn,
		tx:    tx,
		log:   log,
		level: 1,
	}
}

// Level returns the current nesting depth.
func (h *TransactionHandle) Level() int {
	return h.level
}

// Finalized reports whether the backend transaction has been committed or
// rolled back.
func (h *TransactionHandle) Finalized() bool {
	return h.level == 0
}

// Conn returns the leased connection the transaction runs on.
func (h *TransactionHandle) Conn() ports.Conn {
	return h.conn
}

// Tx returns the backend transaction.
func (h *TransactionHandle) Tx() pgx.Tx {
	return h.tx
}

// Begin opens a nested level with a new savepoint.
func (h *TransactionHandle) Begin(ctx context.Context) error {
	if h.Finalized() {
		return dberror.ErrNoTransaction
	}

	query := "SAVEPOINT " + savepointName(h.level+1)
	if _, err := h.tx.Exec(ctx, query); err != nil {
		return dberror.Map(err, query)
	}

	h.level++
	h.log.Info().Int("level", h.level).Msg("savepoint created")
	return nil
}

// Commit releases the innermost savepoint, or commits the backend
// transaction at level 1. The outermost commit finalizes the handle whether
// or not the backend accepted it.
func (h *TransactionHandle) Commit(ctx context.Context) error {
	switch {
	case h.Finalized():
		return dberror.ErrNoTransaction
	case h.level == 1:
		err := h.tx.Commit(ctx)
		h.level = 0
		h.drainPending(ctx)
		if err != nil {
			return dberror.Map(err, "COMMIT")
		}
		h.log.Info().Msg("transaction committed")
		return nil
	}

	query := "RELEASE SAVEPOINT " + savepointName(h.level)
	if _, err := h.tx.Exec(ctx, query); err != nil {
		return dberror.Map(err, query)
	}

	h.level--
	h.log.Info().Int("level", h.level).Msg("savepoint released")
	return nil
}

// Rollback rolls back to the innermost savepoint, or aborts the backend
// transaction at level 1. The outermost rollback finalizes the handle
// whether or not the backend accepted it, and still runs when ctx is
// already cancelled.
func (h *TransactionHandle) Rollback(ctx context.Context) error {
	switch {
	case h.Finalized():
		return dberror.ErrNoTransaction
	case h.level == 1:
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		err := h.tx.Rollback(rctx)
		cancel()
		h.level = 0
		h.drainPending(ctx)
		if err != nil {
			return dberror.Map(err, "ROLLBACK")
		}
		h.log.Info().Msg("transaction rolled back")
		return nil
	}

	query := "ROLLBACK TO SAVEPOINT " + savepointName(h.level)
	if _, err := h.tx.Exec(ctx, query); err != nil {
		return dberror.Map(err, query)
	}

	h.level--
	h.log.Info().Int("level", h.level).Msg("rolled back to savepoint")
	return nil
}

// AddStatementToDeallocate defers dropping a prepared statement until the
// transaction is finalized. A statement cannot be deallocated safely while
// the surrounding transaction may be in a failed state.
func (h *TransactionHandle) AddStatementToDeallocate(name string) {
	h.pending = append(h.pending, name)
}

// drainPending drops every deferred statement. Failures are logged only;
// the transaction outcome is already fixed.
func (h *TransactionHandle) drainPending(ctx context.Context) {
	if len(h.pending) == 0 {
		return
	}

	// The caller's context may already be done when a rollback unwinds.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deallocateTimeout)
	defer cancel()

	for _, name := range h.pending {
		if err := h.conn.Deallocate(dctx, name); err != nil {
			h.log.Warn().Err(err).Str("statement", name).Msg("failed to deallocate prepared statement")
		}
	}
	h.pending = nil
}

func savepointName(level int) string {
	return fmt.Sprintf("SVP%d", level)
}

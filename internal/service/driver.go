package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pgtx-coordinator/internal/core/domain"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/dberror"
	"pgtx-coordinator/pkg/logger"
	"pgtx-coordinator/pkg/sqlparse"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02 15:04:05"

var newStatementName = func() string {
	return "pgtx_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PoolFactory opens a connection pool. The driver calls it lazily on first
// use and again after Disconnect.
type PoolFactory func(ctx context.Context) (ports.ConnPool, error)

// Options tunes the Driver.
type Options struct {
	// Reconnect enables the single transparent retry on connection loss.
	Reconnect bool
	// Location is the backend timezone; time.Time arguments are rendered in it.
	Location *time.Location
	// Store is an optional shared second-level primary-key cache.
	Store ports.PrimaryKeyStore
}

// Driver routes statements and transaction control for many concurrent
// logical units over one connection pool. A unit with an active transaction
// always uses the connection its transaction is pinned to; any other
// statement borrows a connection for its own duration.
type Driver struct {
	connect  PoolFactory
	opts     Options
	log      zerolog.Logger
	registry *Registry
	pk       *pkCache

	mu   sync.Mutex
	pool ports.ConnPool
}

var _ ports.Coordinator = (*Driver)(nil)

// NewDriver creates a Driver. No connection is opened until Connect or the
// first statement.
func NewDriver(connect PoolFactory, introspector ports.SchemaIntrospector, opts Options, log zerolog.Logger) *Driver {
	log = logger.Component(log, "driver")
	return &Driver{
		connect:  connect,
		opts:     opts,
		log:      log,
		registry: NewRegistry(),
		pk:       newPKCache(introspector, opts.Store, log),
	}
}

// Connect opens the pool if it is not open yet.
func (d *Driver) Connect(ctx context.Context) error {
	_, err := d.connPool(ctx)
	return err
}

// IsConnected reports whether the pool is open.
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool != nil && d.pool.IsAlive()
}

// Disconnect closes the pool. Transactions still open are abandoned: their
// connections are closed with the pool and the backend rolls them back.
func (d *Driver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	pool := d.pool
	d.pool = nil
	d.mu.Unlock()

	if pool == nil {
		return nil
	}

	if abandoned := d.registry.Clear(); len(abandoned) > 0 {
		d.log.Warn().Int("transactions", len(abandoned)).Msg("disconnecting with open transactions")
	}
	pool.Close()
	d.pk.reset(ctx)

	d.log.Info().Msg("disconnected")
	return nil
}

// Pool returns the open pool, or nil when disconnected.
func (d *Driver) Pool() ports.ConnPool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool
}

// Stats returns a snapshot of the pool. A disconnected driver reports a
// closed, empty pool.
func (d *Driver) Stats() domain.PoolStats {
	if pool := d.Pool(); pool != nil {
		return pool.Stats()
	}
	return domain.PoolStats{Closed: true}
}

func (d *Driver) connPool(ctx context.Context) (ports.ConnPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pool != nil && d.pool.IsAlive() {
		return d.pool, nil
	}

	pool, err := d.connect(ctx)
	if err != nil {
		return nil, dberror.Map(err, "CONNECT")
	}
	d.pool = pool
	return pool, nil
}

// active returns the transaction of the unit carried by ctx, if any.
func (d *Driver) active(ctx context.Context) (domain.UnitID, *TransactionHandle) {
	unit, ok := domain.UnitFromContext(ctx)
	if !ok {
		return "", nil
	}
	return unit, d.registry.Get(unit)
}

// InTransaction reports whether the unit carried by ctx has an open
// transaction.
func (d *Driver) InTransaction(ctx context.Context) bool {
	_, h := d.active(ctx)
	return h != nil
}

// BeginTransaction starts a transaction for the unit carried by ctx, or a
// nested level when one is already open. isolation only applies to the
// outermost transaction.
func (d *Driver) BeginTransaction(ctx context.Context, isolation string) (bool, error) {
	unit, h := d.active(ctx)
	if unit == "" {
		return false, dberror.ErrNoUnit
	}

	if h != nil {
		if err := h.Begin(ctx); err != nil {
			d.log.Error().Err(err).Str("unit", string(unit)).Msg("nested begin failed")
			return false, err
		}
		return true, nil
	}

	level := domain.MapIsolation(isolation)

	h, err := d.beginOuter(ctx, level)
	if err != nil && d.opts.Reconnect && dberror.IsConnection(err) {
		d.log.Warn().Err(err).Str("unit", string(unit)).Msg("connection lost on begin, retrying once")
		h, err = d.beginOuter(ctx, level)
	}
	if err != nil {
		d.log.Error().Err(err).Str("unit", string(unit)).Msg("begin transaction failed")
		return false, err
	}

	d.registry.Put(unit, h)
	d.log.Info().Str("unit", string(unit)).Str("isolation", string(level)).Msg("transaction started")
	return true, nil
}

func (d *Driver) beginOuter(ctx context.Context, level pgx.TxIsoLevel) (*TransactionHandle, error) {
	pool, err := d.connPool(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Lease(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: level})
	if err != nil {
		mapped := dberror.Map(err, "BEGIN TRANSACTION ISOLATION LEVEL "+strings.ToUpper(string(level)))
		d.release(pool, conn, mapped)
		return nil, mapped
	}

	return NewTransactionHandle(conn, tx, d.log), nil
}

// CommitTransaction commits the innermost level of the unit's transaction.
// Without an active transaction it is a no-op returning false.
func (d *Driver) CommitTransaction(ctx context.Context) (bool, error) {
	unit, h := d.active(ctx)
	if h == nil {
		return false, nil
	}

	err := h.Commit(ctx)
	if h.Finalized() {
		d.finish(unit, h, err)
	}
	if err != nil {
		d.log.Error().Err(err).Str("unit", string(unit)).Msg("commit failed")
		return false, err
	}
	return true, nil
}

// RollbackTransaction rolls back the innermost level of the unit's
// transaction. Without an active transaction it is a no-op returning false.
func (d *Driver) RollbackTransaction(ctx context.Context) (bool, error) {
	unit, h := d.active(ctx)
	if h == nil {
		return false, nil
	}

	err := h.Rollback(ctx)
	if h.Finalized() {
		d.finish(unit, h, err)
	}
	if err != nil {
		d.log.Error().Err(err).Str("unit", string(unit)).Msg("rollback failed")
		return false, err
	}
	return true, nil
}

// finish unregisters a finalized transaction and gives its connection back.
func (d *Driver) finish(unit domain.UnitID, h *TransactionHandle, err error) {
	d.registry.Remove(unit)
	if pool := d.Pool(); pool != nil {
		d.release(pool, h.Conn(), err)
	}
}

// release returns conn to the pool, or discards it when err shows the link
// is dead.
func (d *Driver) release(pool ports.ConnPool, conn ports.Conn, err error) {
	if dberror.IsConnection(err) {
		pool.Discard(conn)
		return
	}
	pool.Return(conn)
}

// Transaction runs fn inside a transaction for the unit carried by ctx,
// creating a unit when ctx has none. It commits when fn returns nil and
// rolls back when fn fails or panics. Nested calls use savepoints.
func (d *Driver) Transaction(ctx context.Context, fn func(ctx context.Context) error, isolation string) (err error) {
	ctx, _ = domain.EnsureUnit(ctx)

	if _, err := d.BeginTransaction(ctx, isolation); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if _, rbErr := d.RollbackTransaction(ctx); rbErr != nil {
				d.log.Error().Err(rbErr).Msg("rollback after panic failed")
			}
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		if _, rbErr := d.RollbackTransaction(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	_, err = d.CommitTransaction(ctx)
	return err
}

// Query runs a statement returning rows.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	var res *Result
	err := d.run(ctx, sql, args, func(q ports.Querier, args []any) error {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		res, err = collectResult(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Execute runs a statement and returns the number of affected rows.
func (d *Driver) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	var affected int64
	err := d.run(ctx, sql, args, func(q ports.Querier, args []any) error {
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

// run executes fn on the unit's transaction, or as a one-shot borrow. A
// one-shot statement that loses its connection is retried once on a fresh
// one; a statement inside a transaction never is.
func (d *Driver) run(ctx context.Context, sql string, args []any, fn func(ports.Querier, []any) error) error {
	args = d.normalize(args)
	start := time.Now()

	var err error
	if _, h := d.active(ctx); h != nil {
		err = fn(h.Tx(), args)
		if err != nil {
			err = dberror.Map(err, sqlparse.Interpolate(sql, args))
		}
	} else {
		err = d.oneShot(ctx, sql, args, fn)
		if err != nil && d.opts.Reconnect && dberror.IsConnection(err) {
			d.log.Warn().Err(err).Msg("connection lost, retrying statement once")
			err = d.oneShot(ctx, sql, args, fn)
		}
	}

	elapsed := time.Since(start)
	if err != nil {
		d.log.Error().Err(err).Dur("elapsed", elapsed).Msg("statement failed")
		return err
	}

	d.log.Debug().Str("sql", sqlparse.Interpolate(sql, args)).Dur("elapsed", elapsed).Msg("statement executed")

	if sqlparse.IsSchemaMutation(sql) {
		d.pk.reset(ctx)
	}
	return nil
}

func (d *Driver) oneShot(ctx context.Context, sql string, args []any, fn func(ports.Querier, []any) error) error {
	pool, err := d.connPool(ctx)
	if err != nil {
		return err
	}

	conn, err := pool.Lease(ctx)
	if err != nil {
		return err
	}

	if err := fn(conn, args); err != nil {
		mapped := dberror.Map(err, sqlparse.Interpolate(sql, args))
		d.release(pool, conn, mapped)
		return mapped
	}

	pool.Return(conn)
	return nil
}

// normalize renders time arguments in the backend timezone.
func (d *Driver) normalize(args []any) []any {
	if d.opts.Location == nil || len(args) == 0 {
		return args
	}

	out := args
	copied := false
	for i, a := range args {
		var t time.Time
		switch v := a.(type) {
		case time.Time:
			t = v
		case *time.Time:
			if v == nil {
				continue
			}
			t = *v
		default:
			continue
		}
		if !copied {
			out = append([]any(nil), args...)
			copied = true
		}
		out[i] = t.In(d.opts.Location).Format(timestampLayout)
	}
	return out
}

// Prepare creates a named prepared statement on the transaction of the unit
// carried by ctx.
func (d *Driver) Prepare(ctx context.Context, sql string) (*PreparedStatement, error) {
	_, h := d.active(ctx)
	if h == nil {
		return nil, dberror.ErrNoTransaction
	}

	name := newStatementName()
	if _, err := h.Tx().Prepare(ctx, name, sql); err != nil {
		return nil, dberror.Map(err, sql)
	}

	return &PreparedStatement{name: name, sql: sql, handle: h, driver: d}, nil
}

// GetPrimaryKey returns the single-column primary key of table, or "" when
// the key is composite or absent. Results are cached until the next
// schema change or ResetPrimaryKeyCache.
func (d *Driver) GetPrimaryKey(ctx context.Context, table string) (string, error) {
	if col, ok := d.pk.cached(table); ok {
		return col, nil
	}

	col, err := d.loadPrimaryKey(ctx, table)
	if err != nil {
		return "", fmt.Errorf("primary key of %s: %w", table, err)
	}
	return col, nil
}

// loadPrimaryKey introspects on the unit's transaction so uncommitted DDL is
// visible, or on a borrowed connection otherwise.
func (d *Driver) loadPrimaryKey(ctx context.Context, table string) (string, error) {
	if _, h := d.active(ctx); h != nil {
		return d.pk.load(ctx, h.Tx(), table)
	}

	pool, err := d.connPool(ctx)
	if err != nil {
		return "", err
	}
	conn, err := pool.Lease(ctx)
	if err != nil {
		return "", err
	}

	col, err := d.pk.load(ctx, conn, table)
	d.release(pool, conn, err)
	return col, err
}

// ResetPrimaryKeyCache forces the next GetPrimaryKey to introspect again.
func (d *Driver) ResetPrimaryKeyCache(ctx context.Context) {
	d.pk.reset(ctx)
}

// ActiveTransactions returns the number of units with an open transaction.
func (d *Driver) ActiveTransactions() int {
	return d.registry.Len()
}

// CachedPrimaryKeys returns the number of tables in the local PK cache.
func (d *Driver) CachedPrimaryKeys() int {
	return d.pk.size()
}

// PreparedStatement is a named statement bound to one transaction.
type PreparedStatement struct {
	name   string
	sql    string
	handle *TransactionHandle
	driver *Driver
	closed bool
}

// Name returns the backend statement name.
func (s *PreparedStatement) Name() string {
	return s.name
}

// Execute runs the statement and returns the number of affected rows.
func (s *PreparedStatement) Execute(ctx context.Context, args ...any) (int64, error) {
	if err := s.usable(); err != nil {
		return 0, err
	}
	args = s.driver.normalize(args)

	tag, err := s.handle.Tx().Exec(ctx, s.name, args...)
	if err != nil {
		return 0, dberror.Map(err, sqlparse.Interpolate(s.sql, args))
	}
	return tag.RowsAffected(), nil
}

// Query runs the statement and buffers its rows.
func (s *PreparedStatement) Query(ctx context.Context, args ...any) (*Result, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	args = s.driver.normalize(args)

	rows, err := s.handle.Tx().Query(ctx, s.name, args...)
	if err != nil {
		return nil, dberror.Map(err, sqlparse.Interpolate(s.sql, args))
	}
	res, err := collectResult(rows)
	if err != nil {
		return nil, dberror.Map(err, sqlparse.Interpolate(s.sql, args))
	}
	return res, nil
}

// Close schedules the statement for deallocation when its transaction ends.
func (s *PreparedStatement) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.handle.AddStatementToDeallocate(s.name)
}

func (s *PreparedStatement) usable() error {
	if s.closed || s.handle.Finalized() {
		return fmt.Errorf("prepared statement %s: %w", s.name, dberror.ErrNoTransaction)
	}
	return nil
}

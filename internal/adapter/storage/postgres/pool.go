package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pgtx-coordinator/config"
	"pgtx-coordinator/internal/core/domain"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/dberror"
	"pgtx-coordinator/pkg/logger"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultValidationInterval = 15 * time.Second
	closeTimeout              = 5 * time.Second
)

// Pool owns a bounded set of backend connections. Every leased connection
// holds one permit of sem, so at most MaxActive connections are leased at
// once; callers beyond that queue on the semaphore in FIFO order.
type Pool struct {
	cfg  config.PoolConfig
	dial ports.Dialer
	log  zerolog.Logger
	sem  *semaphore.Weighted
	now  func() time.Time

	mu      sync.Mutex
	idle    []*PooledConn // least recently used first
	leased  map[*PooledConn]struct{}
	nextID  uint64
	waiting int
	closed  bool

	closeCtx    context.Context
	closeCancel context.CancelFunc
	reaperDone  chan struct{}
}

var _ ports.ConnPool = (*Pool)(nil)

// NewPool creates a pool that opens connections with dial and starts its
// idle reaper. No connection is opened until Init, the first Lease or the
// first reaper sweep.
func NewPool(cfg config.PoolConfig, dial ports.Dialer, log zerolog.Logger) *Pool {
	if cfg.MaxActive < 1 {
		cfg.MaxActive = 1
	}
	if cfg.MinActive > cfg.MaxActive {
		cfg.MinActive = cfg.MaxActive
	}
	if cfg.ValidationInterval <= 0 {
		cfg.ValidationInterval = defaultValidationInterval
	}

	closeCtx, closeCancel := context.WithCancel(context.Background())

	p := &Pool{
		cfg:         cfg,
		dial:        dial,
		log:         logger.Component(log, "pool"),
		sem:         semaphore.NewWeighted(int64(cfg.MaxActive)),
		now:         time.Now,
		leased:      make(map[*PooledConn]struct{}),
		closeCtx:    closeCtx,
		closeCancel: closeCancel,
		reaperDone:  make(chan struct{}),
	}
	go p.runReaper()
	return p
}

// Init opens MinActive connections.
func (p *Pool) Init(ctx context.Context) error {
	if p.isClosed() {
		return dberror.PoolClosed()
	}
	return p.fill(ctx)
}

// Lease returns a connection for exclusive use. It waits at most
// MaxWaitTime for a free slot and fails with a pool-exhausted error after.
func (p *Pool) Lease(ctx context.Context) (ports.Conn, error) {
	if p.isClosed() {
		return nil, dberror.PoolClosed()
	}

	var (
		waitCtx context.Context
		cancel  context.CancelFunc
	)
	if p.cfg.MaxWaitTime > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, p.cfg.MaxWaitTime)
	} else {
		waitCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	stop := context.AfterFunc(p.closeCtx, cancel)
	defer stop()

	p.mu.Lock()
	p.waiting++
	p.mu.Unlock()

	err := p.sem.Acquire(waitCtx, 1)

	p.mu.Lock()
	p.waiting--
	p.mu.Unlock()

	if err != nil {
		switch {
		case p.isClosed():
			return nil, dberror.PoolClosed()
		case ctx.Err() != nil:
			return nil, fmt.Errorf("lease connection: %w", ctx.Err())
		default:
			p.log.Warn().Dur("max_wait", p.cfg.MaxWaitTime).Int("max_active", p.cfg.MaxActive).Msg("pool exhausted")
			return nil, dberror.PoolExhausted(fmt.Sprintf("no connection available within %s", p.cfg.MaxWaitTime))
		}
	}

	conn, err := p.acquire(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	return conn, nil
}

// acquire hands out an idle connection that passes the liveness probe, or
// opens a new one. The caller holds a permit.
func (p *Pool) acquire(ctx context.Context) (*PooledConn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, dberror.PoolClosed()
		}
		n := len(p.idle)
		if n == 0 {
			p.mu.Unlock()
			break
		}
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.leased[c] = struct{}{}
		p.mu.Unlock()

		if c.lifetimeExceeded(p.now(), p.cfg.MaxLifetime) {
			p.log.Debug().Uint64("conn_id", c.id).Msg("recycling connection past max lifetime")
			p.forget(c)
			continue
		}
		if err := c.Ping(ctx); err != nil {
			p.log.Warn().Err(err).Uint64("conn_id", c.id).Msg("idle connection failed liveness probe")
			p.forget(c)
			continue
		}

		c.lastUsed = p.now()
		return c, nil
	}

	c, err := p.open(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.closeConn(c)
		return nil, dberror.PoolClosed()
	}
	p.leased[c] = struct{}{}
	p.mu.Unlock()

	return c, nil
}

// Return makes a leased connection available to the next waiter.
func (p *Pool) Return(conn ports.Conn) {
	c, ok := p.own(conn)
	if !ok {
		return
	}

	now := p.now()

	p.mu.Lock()
	if _, leased := p.leased[c]; !leased {
		p.mu.Unlock()
		p.log.Warn().Uint64("conn_id", c.id).Msg("returned connection is not leased")
		return
	}
	delete(p.leased, c)

	if p.closed || c.lifetimeExceeded(now, p.cfg.MaxLifetime) {
		p.mu.Unlock()
		p.closeConn(c)
		p.sem.Release(1)
		return
	}

	c.lastUsed = now
	p.idle = append(p.idle, c)
	p.mu.Unlock()

	p.sem.Release(1)
}

// Discard closes a leased connection, typically after a connection failure,
// and frees its slot for a replacement.
func (p *Pool) Discard(conn ports.Conn) {
	c, ok := p.own(conn)
	if !ok {
		return
	}

	p.mu.Lock()
	_, leased := p.leased[c]
	delete(p.leased, c)
	p.mu.Unlock()

	p.closeConn(c)
	if leased {
		p.sem.Release(1)
	}
}

// Close fails every waiter, closes idle and leased connections, and
// rejects further leases.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	conns := append([]*PooledConn(nil), p.idle...)
	for c := range p.leased {
		conns = append(conns, c)
	}
	p.idle = nil
	p.leased = make(map[*PooledConn]struct{})
	p.mu.Unlock()

	p.closeCancel()

	select {
	case <-p.reaperDone:
	case <-time.After(closeTimeout):
		p.log.Error().Msg("timed out waiting for reaper to stop")
	}

	for _, c := range conns {
		p.closeConn(c)
	}

	p.log.Info().Int("closed_connections", len(conns)).Msg("pool closed")
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() domain.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return domain.PoolStats{
		Open:      len(p.idle) + len(p.leased),
		Idle:      len(p.idle),
		Leased:    len(p.leased),
		Waiting:   p.waiting,
		MinActive: p.cfg.MinActive,
		MaxActive: p.cfg.MaxActive,
		Closed:    p.closed,
	}
}

// IsAlive reports whether the pool accepts leases.
func (p *Pool) IsAlive() bool {
	return !p.isClosed()
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fill opens connections until MinActive are open. Each new connection
// takes a permit while it is dialled so the MaxActive bound holds.
func (p *Pool) fill(ctx context.Context) error {
	p.mu.Lock()
	missing := p.cfg.MinActive - len(p.idle) - len(p.leased)
	p.mu.Unlock()

	if missing <= 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < missing; i++ {
		if !p.sem.TryAcquire(1) {
			break
		}
		g.Go(func() error {
			defer p.sem.Release(1)

			c, err := p.open(gctx)
			if err != nil {
				return err
			}

			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				p.closeConn(c)
				return nil
			}
			p.idle = append(p.idle, c)
			p.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("warming pool to %d connections: %w", p.cfg.MinActive, err)
	}
	return nil
}

func (p *Pool) open(ctx context.Context) (*PooledConn, error) {
	conn, err := p.dial(ctx)
	if err != nil {
		return nil, dberror.Map(err, "CONNECT")
	}

	now := p.now()

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	p.log.Debug().Uint64("conn_id", id).Msg("connection opened")

	return &PooledConn{
		Conn:      conn,
		id:        id,
		createdAt: now,
		lastUsed:  now,
		pool:      p,
	}, nil
}

// forget drops a connection that was taken for leasing but will not be
// handed out. The caller keeps its permit.
func (p *Pool) forget(c *PooledConn) {
	p.mu.Lock()
	delete(p.leased, c)
	p.mu.Unlock()
	p.closeConn(c)
}

func (p *Pool) closeConn(c *PooledConn) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := c.Close(ctx); err != nil {
		p.log.Debug().Err(err).Uint64("conn_id", c.id).Msg("error closing connection")
		return
	}
	p.log.Debug().Uint64("conn_id", c.id).Msg("connection closed")
}

func (p *Pool) own(conn ports.Conn) (*PooledConn, bool) {
	c, ok := conn.(*PooledConn)
	if !ok || c.pool != p {
		p.log.Error().Msg("connection does not belong to this pool")
		return nil, false
	}
	return c, true
}

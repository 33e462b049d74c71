package postgres

import (
	"context"
	"sync"
	"time"

	"pgtx-coordinator/config"
	"pgtx-coordinator/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
)

// mockConn adapts a pgxmock connection to ports.Conn.
type mockConn struct {
	pgxmock.PgxConnIface
}

func (m mockConn) Deallocate(ctx context.Context, name string) error {
	_, err := m.Exec(ctx, "DEALLOCATE "+name)
	return err
}

// fakeBackend hands out pgxmock connections and records every dial.
type fakeBackend struct {
	mu          sync.Mutex
	conns       []pgxmock.PgxConnIface
	failDial    error
	pingFailsAt map[int]error
}

func (b *fakeBackend) dial(ctx context.Context) (ports.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failDial != nil {
		return nil, b.failDial
	}

	idx := len(b.conns)
	var (
		m   pgxmock.PgxConnIface
		err error
	)
	if pingErr, ok := b.pingFailsAt[idx]; ok {
		m, err = pgxmock.NewConn()
		if err == nil {
			m.ExpectPing().WillReturnError(pingErr)
		}
	} else {
		m, err = pgxmock.NewConn()
	}
	if err != nil {
		return nil, err
	}

	b.conns = append(b.conns, m)
	return mockConn{m}, nil
}

func (b *fakeBackend) dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

func (b *fakeBackend) setDialError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failDial = err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testPoolConfig() config.PoolConfig {
	return config.PoolConfig{
		MinActive:          0,
		MaxActive:          2,
		MaxIdleTime:        30 * time.Second,
		ValidationInterval: time.Hour,
		MaxWaitTime:        2 * time.Second,
	}
}

func newTestPool(cfg config.PoolConfig) (*Pool, *fakeBackend, *fakeClock) {
	backend := &fakeBackend{pingFailsAt: map[int]error{}}
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := NewPool(cfg, backend.dial, zerolog.Nop())
	p.now = clock.Now
	return p, backend, clock
}

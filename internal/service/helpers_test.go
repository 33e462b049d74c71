package service

import (
	"context"
	"testing"

	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/internal/core/ports/mocks"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockConn adapts a pgxmock connection to ports.Conn.
type mockConn struct {
	pgxmock.PgxConnIface
}

func (m mockConn) Deallocate(ctx context.Context, name string) error {
	_, err := m.Exec(ctx, "DEALLOCATE "+name)
	return err
}

type driverDeps struct {
	driver       *Driver
	pool         *mocks.MockConnPool
	introspector *mocks.MockSchemaIntrospector
	db           pgxmock.PgxConnIface
	conn         mockConn
	ctrl         *gomock.Controller
}

func setupDriver(t *testing.T, opts Options) *driverDeps {
	t.Helper()

	ctrl := gomock.NewController(t)
	db, err := pgxmock.NewConn()
	require.NoError(t, err)

	d := &driverDeps{
		pool:         mocks.NewMockConnPool(ctrl),
		introspector: mocks.NewMockSchemaIntrospector(ctrl),
		db:           db,
		conn:         mockConn{db},
		ctrl:         ctrl,
	}
	d.pool.EXPECT().IsAlive().Return(true).AnyTimes()

	d.driver = NewDriver(func(context.Context) (ports.ConnPool, error) {
		return d.pool, nil
	}, d.introspector, opts, zerolog.Nop())

	return d
}

func newMockConn(t *testing.T) (pgxmock.PgxConnIface, mockConn) {
	t.Helper()
	db, err := pgxmock.NewConn()
	require.NoError(t, err)
	return db, mockConn{db}
}

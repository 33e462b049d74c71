package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pgtx-coordinator/config"
	pgStorage "pgtx-coordinator/internal/adapter/storage/postgres"
	redisStorage "pgtx-coordinator/internal/adapter/storage/redis"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConn adapts a pgxmock connection to ports.Conn.
type mockConn struct {
	pgxmock.PgxConnIface
}

func (m mockConn) Deallocate(ctx context.Context, name string) error {
	_, err := m.Exec(ctx, "DEALLOCATE "+name)
	return err
}

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	driver *service.Driver

	mu    sync.Mutex
	conns []pgxmock.PgxConnIface
}

// newTestApp wires the real driver, pool, introspector and Redis store behind
// the admin router. Every dialed backend connection answers one primary key
// lookup for public.items.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	app := &testApp{redis: miniredis.RunT(t)}
	rdb := goredis.NewClient(&goredis.Options{Addr: app.redis.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	dial := func(context.Context) (ports.Conn, error) {
		db, err := pgxmock.NewConn()
		if err != nil {
			return nil, err
		}
		db.ExpectQuery(`information_schema\.tables`).
			WithArgs("public", "items").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		db.ExpectQuery(`PRIMARY KEY`).
			WithArgs("public", "items").
			WillReturnRows(pgxmock.NewRows([]string{"column_name"}).AddRow("id"))

		app.mu.Lock()
		app.conns = append(app.conns, db)
		app.mu.Unlock()
		return mockConn{db}, nil
	}

	connect := func(context.Context) (ports.ConnPool, error) {
		return pgStorage.NewPool(config.PoolConfig{
			MaxActive:          1,
			MaxIdleTime:        time.Minute,
			ValidationInterval: time.Hour,
			MaxWaitTime:        2 * time.Second,
		}, dial, zerolog.Nop()), nil
	}

	app.driver = service.NewDriver(connect, pgStorage.NewIntrospector("public"), service.Options{
		Reconnect: true,
		Store:     redisStorage.NewPKStore(rdb, "", time.Minute),
	}, zerolog.Nop())
	t.Cleanup(func() { _ = app.driver.Disconnect(context.Background()) })

	router := SetupRouter(RouterDeps{
		Coordinator: app.driver,
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(app.driver.Pool),
			redisStorage.NewHealthCheck(rdb),
		},
		Mode:   gin.TestMode,
		Logger: zerolog.Nop(),
	})
	app.server = httptest.NewServer(router)
	t.Cleanup(app.server.Close)

	return app
}

func (a *testApp) call(t *testing.T, method, path string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, a.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func dataOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "missing data envelope: %v", body)
	return data
}

func TestAdminAPI_PrimaryKeyLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Nothing is opened until first use.
	status, body := app.call(t, http.MethodGet, "/debug/pool")
	require.Equal(t, http.StatusOK, status)
	pool := dataOf(t, body)["pool"].(map[string]interface{})
	assert.Equal(t, true, pool["closed"])
	assert.Equal(t, float64(0), pool["open"])

	status, body = app.call(t, http.MethodGet, "/debug/primary-key/items")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "id", dataOf(t, body)["primary_key"])

	cached, err := app.redis.Get("pgtx:pk:items")
	require.NoError(t, err)
	assert.Equal(t, "id", cached)
	assert.Equal(t, time.Minute, app.redis.TTL("pgtx:pk:items"))

	// Served from cache; the backend script has no second lookup.
	status, body = app.call(t, http.MethodGet, "/debug/primary-key/items")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "id", dataOf(t, body)["primary_key"])

	status, body = app.call(t, http.MethodGet, "/debug/pool")
	require.Equal(t, http.StatusOK, status)
	data := dataOf(t, body)
	pool = data["pool"].(map[string]interface{})
	assert.Equal(t, false, pool["closed"])
	assert.Equal(t, float64(1), pool["open"])
	assert.Equal(t, float64(1), pool["idle"])
	assert.Equal(t, float64(0), pool["leased"])
	assert.Equal(t, float64(0), data["active_transactions"])
	assert.Equal(t, float64(1), data["cached_primary_keys"])

	status, body = app.call(t, http.MethodPost, "/debug/pk-cache/reset")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), dataOf(t, body)["evicted"])
	assert.False(t, app.redis.Exists("pgtx:pk:items"))

	app.mu.Lock()
	defer app.mu.Unlock()
	require.Len(t, app.conns, 1)
	assert.NoError(t, app.conns[0].ExpectationsWereMet())
}

func TestAdminAPI_SharedStoreSkipsIntrospection(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.redis.Set("pgtx:pk:orders", "order_id"))

	status, body := app.call(t, http.MethodGet, "/debug/primary-key/orders")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "order_id", dataOf(t, body)["primary_key"])
}

func TestAdminAPI_Health(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.driver.Connect(context.Background()))

	status, body := app.call(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	app.redis.SetError("LOADING redis is loading the dataset")

	status, body = app.call(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "healthy", deps["postgresql"].(map[string]interface{})["status"])
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]interface{})["status"])
}

func TestAdminAPI_HealthAfterDisconnect(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.driver.Connect(context.Background()))
	require.NoError(t, app.driver.Disconnect(context.Background()))

	status, body := app.call(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["postgresql"].(map[string]interface{})["status"])
}

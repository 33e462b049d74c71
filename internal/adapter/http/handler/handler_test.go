package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pgtx-coordinator/internal/core/domain"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/internal/core/ports/mocks"
	"pgtx-coordinator/pkg/dberror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, checkers ...ports.HealthChecker) (*gin.Engine, *mocks.MockCoordinator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	coordinator := mocks.NewMockCoordinator(ctrl)
	r := SetupRouter(RouterDeps{
		Coordinator:    coordinator,
		HealthCheckers: checkers,
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
	})
	return r, coordinator
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "missing data envelope: %s", w.Body.String())
	return data
}

// --- Health ---

func TestHealthCheck_AllHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgresql").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil)

	r, _ := newTestRouter(t, pg)
	w := serve(r, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "healthy", deps["postgresql"].(map[string]interface{})["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgresql").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	rd := mocks.NewMockHealthChecker(ctrl)
	rd.EXPECT().Name().Return("redis").AnyTimes()
	rd.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	r, _ := newTestRouter(t, pg, rd)
	w := serve(r, http.MethodGet, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	redis := body["dependencies"].(map[string]interface{})["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redis["status"])
	assert.Equal(t, "connection refused", redis["error"])
}

// --- Debug ---

func TestPoolStatus(t *testing.T) {
	r, coordinator := newTestRouter(t)
	coordinator.EXPECT().Stats().Return(domain.PoolStats{Open: 2, Idle: 1, Leased: 1, MaxActive: 4})
	coordinator.EXPECT().ActiveTransactions().Return(1)
	coordinator.EXPECT().CachedPrimaryKeys().Return(3)

	w := serve(r, http.MethodGet, "/debug/pool")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["active_transactions"])
	assert.Equal(t, float64(3), data["cached_primary_keys"])
	pool := data["pool"].(map[string]interface{})
	assert.Equal(t, float64(2), pool["open"])
	assert.Equal(t, float64(1), pool["leased"])
	assert.Equal(t, float64(4), pool["max_active"])
	assert.Equal(t, false, pool["closed"])
}

func TestPrimaryKey_Found(t *testing.T) {
	r, coordinator := newTestRouter(t)
	coordinator.EXPECT().GetPrimaryKey(gomock.Any(), "public.items").Return("id", nil)

	w := serve(r, http.MethodGet, "/debug/primary-key/public.items")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "public.items", data["table"])
	assert.Equal(t, "id", data["primary_key"])
}

func TestPrimaryKey_CompositeIsNull(t *testing.T) {
	r, coordinator := newTestRouter(t)
	coordinator.EXPECT().GetPrimaryKey(gomock.Any(), "links").Return("", nil)

	w := serve(r, http.MethodGet, "/debug/primary-key/links")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	v, present := data["primary_key"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestPrimaryKey_InvalidName(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/debug/primary-key/items;drop")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestPrimaryKey_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing table", fmt.Errorf("primary key of ghosts: %w", fmt.Errorf("%w: ghosts", dberror.ErrNoSuchTable)), http.StatusNotFound, "NO_SUCH_TABLE"},
		{"pool exhausted", dberror.PoolExhausted("no connection within 5s"), http.StatusServiceUnavailable, "POOL_EXHAUSTED"},
		{"connection lost", dberror.New(dberror.KindConnection, "", errors.New("unexpected EOF")), http.StatusServiceUnavailable, "DB_CONNECTION"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, coordinator := newTestRouter(t)
			coordinator.EXPECT().GetPrimaryKey(gomock.Any(), "ghosts").Return("", tc.err)

			w := serve(r, http.MethodGet, "/debug/primary-key/ghosts")

			assert.Equal(t, tc.status, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp["error_code"])
		})
	}
}

func TestResetPrimaryKeyCache(t *testing.T) {
	r, coordinator := newTestRouter(t)
	gomock.InOrder(
		coordinator.EXPECT().CachedPrimaryKeys().Return(5),
		coordinator.EXPECT().ResetPrimaryKeyCache(gomock.Any()),
	)

	w := serve(r, http.MethodPost, "/debug/pk-cache/reset")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decodeData(t, w)["evicted"])
}

func TestResetPrimaryKeyCache_WrongMethod(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/debug/pk-cache/reset")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Swagger ---

func TestSwaggerSpec(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/swagger/spec")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/debug/primary-key/{table}")
}

func TestSwaggerUI(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/swagger")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

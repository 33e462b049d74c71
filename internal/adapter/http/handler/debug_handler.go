package handler

import (
	"pgtx-coordinator/internal/adapter/http/dto"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DebugHandler exposes coordinator internals to operators.
type DebugHandler struct {
	coordinator ports.Coordinator
	log         zerolog.Logger
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(coordinator ports.Coordinator, log zerolog.Logger) *DebugHandler {
	return &DebugHandler{coordinator: coordinator, log: log}
}

// PoolStatus handles GET /debug/pool.
func (h *DebugHandler) PoolStatus(c *gin.Context) {
	response.OK(c, dto.CoordinatorStatusResponse{
		Pool:               h.coordinator.Stats(),
		ActiveTransactions: h.coordinator.ActiveTransactions(),
		CachedPrimaryKeys:  h.coordinator.CachedPrimaryKeys(),
	})
}

// PrimaryKey handles GET /debug/primary-key/:table.
func (h *DebugHandler) PrimaryKey(c *gin.Context) {
	var uri dto.TableURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid table name")
		return
	}

	col, err := h.coordinator.GetPrimaryKey(c.Request.Context(), uri.Table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewPrimaryKeyResponse(uri.Table, col))
}

// ResetPrimaryKeyCache handles POST /debug/pk-cache/reset.
func (h *DebugHandler) ResetPrimaryKeyCache(c *gin.Context) {
	evicted := h.coordinator.CachedPrimaryKeys()
	h.coordinator.ResetPrimaryKeyCache(c.Request.Context())
	h.log.Info().Int("evicted", evicted).Msg("primary key cache reset by operator")
	response.OK(c, dto.CacheResetResponse{Evicted: evicted})
}

package handler

import (
	"pgtx-coordinator/internal/adapter/http/middleware"
	"pgtx-coordinator/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Coordinator    ports.Coordinator
	HealthCheckers []ports.HealthChecker
	Mode           string // gin mode; empty means release
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 10))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	debugHandler := NewDebugHandler(deps.Coordinator, deps.Logger)
	debug := r.Group("/debug")
	{
		debug.GET("/pool", debugHandler.PoolStatus)
		debug.GET("/primary-key/:table", debugHandler.PrimaryKey)
		debug.POST("/pk-cache/reset", debugHandler.ResetPrimaryKeyCache)
	}

	return r
}

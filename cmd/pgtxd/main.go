package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pgtx-coordinator/config"
	httpHandler "pgtx-coordinator/internal/adapter/http/handler"
	pgStorage "pgtx-coordinator/internal/adapter/storage/postgres"
	redisStorage "pgtx-coordinator/internal/adapter/storage/redis"
	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/internal/service"
	"pgtx-coordinator/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting pgtx coordinator")

	ctx := context.Background()

	location, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Database.Timezone).Msg("Invalid database timezone")
	}

	opts := service.Options{
		Reconnect: cfg.Database.Reconnect,
		Location:  location,
	}

	healthCheckers := make([]ports.HealthChecker, 0, 2)

	// Optional process-shared primary key cache
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		opts.Store = redisStorage.NewPKStore(rdb, cfg.Redis.KeyPrefix, cfg.Redis.PKTTL)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	connect := func(ctx context.Context) (ports.ConnPool, error) {
		pool, err := pgStorage.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return pool, nil
	}
	driver := service.NewDriver(connect, pgStorage.NewIntrospector(cfg.Database.Schema), opts, log)

	if err := driver.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	healthCheckers = append([]ports.HealthChecker{pgStorage.NewHealthCheck(driver.Pool)}, healthCheckers...)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Coordinator:    driver,
		HealthCheckers: healthCheckers,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := driver.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close connection pool")
	}

	log.Info().Msg("Server exited")
}

package postgres

import (
	"context"
	"fmt"
	"net"
	"time"

	"pgtx-coordinator/config"
	"pgtx-coordinator/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// NewDialer returns a Dialer that opens pgx connections for cfg.
func NewDialer(cfg config.DatabaseConfig) (ports.Dialer, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}
	dialer := &net.Dialer{
		KeepAlive: 30 * time.Second,
		Timeout:   connCfg.ConnectTimeout,
	}
	connCfg.DialFunc = dialer.DialContext

	return func(ctx context.Context) (ports.Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, connCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s:%d: %w", cfg.Host, cfg.Port, err)
		}
		return conn, nil
	}, nil
}

// Connect creates the connection pool for cfg and opens its minimum
// connections. A non-pooled configuration yields a pool of exactly one.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Pool, error) {
	dial, err := NewDialer(cfg)
	if err != nil {
		return nil, err
	}

	poolCfg := cfg.EffectivePool()
	pool := NewPool(poolCfg, dial, log)

	if err := pool.Init(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialising connection pool: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int("min_active", poolCfg.MinActive).
		Int("max_active", poolCfg.MaxActive).
		Bool("pooled", cfg.Pooled).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

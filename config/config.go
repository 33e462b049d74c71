package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	SSLMode        string        `mapstructure:"sslmode"`
	Schema         string        `mapstructure:"schema"`
	Timezone       string        `mapstructure:"timezone"` // must match the server timezone
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Reconnect      bool          `mapstructure:"reconnect"` // retry once on connection loss
	Pooled         bool          `mapstructure:"pooled"`    // false = single shared connection
	Pool           PoolConfig    `mapstructure:"pool"`
}

// PoolConfig holds the connection pool sizing knobs.
type PoolConfig struct {
	MinActive          int           `mapstructure:"min_active"`
	MaxActive          int           `mapstructure:"max_active"`
	MaxIdleTime        time.Duration `mapstructure:"max_idle_time"`
	ValidationInterval time.Duration `mapstructure:"validation_interval"`
	MaxWaitTime        time.Duration `mapstructure:"max_wait_time"`
	MaxLifetime        time.Duration `mapstructure:"max_lifetime"` // 0 disables forced recycling
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
	if d.Timezone != "" {
		dsn += "&timezone=" + d.Timezone
	}
	if d.Schema != "" {
		dsn += "&search_path=" + d.Schema
	}
	return dsn
}

// EffectivePool returns the pool knobs actually applied. A non-pooled
// driver is the degenerate case of a pool fixed at one connection.
func (d DatabaseConfig) EffectivePool() PoolConfig {
	p := d.Pool
	if !d.Pooled {
		p.MinActive = 1
		p.MaxActive = 1
	}
	if p.MaxActive < 1 {
		p.MaxActive = 1
	}
	if p.MinActive > p.MaxActive {
		p.MinActive = p.MaxActive
	}
	return p
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	PKTTL     time.Duration `mapstructure:"pk_ttl"` // expiry of each cached primary key
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PGTX_.
// Nested keys use underscore: PGTX_DATABASE_HOST, PGTX_DATABASE_POOL_MAX_ACTIVE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.reconnect", true)
	v.SetDefault("database.pooled", true)
	v.SetDefault("database.pool.min_active", 0)
	v.SetDefault("database.pool.max_active", 2)
	v.SetDefault("database.pool.max_idle_time", "30s")
	v.SetDefault("database.pool.validation_interval", "15s")
	v.SetDefault("database.pool.max_wait_time", "5s")
	v.SetDefault("database.pool.max_lifetime", "0s")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "pgtx:pk:")
	v.SetDefault("redis.pk_ttl", "10m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PGTX_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PGTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required: env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pgtx-coordinator/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultPKPrefix = "pgtx:pk:"
	defaultPKTTL    = 10 * time.Minute
	resetBatchSize  = 100
)

// PKStore implements ports.PrimaryKeyStore with one Redis key per table,
// shared by every process using the same database. The value is the primary
// key column ("" for composite or absent keys). Every key carries a TTL so a
// value written by a racing introspection after a Reset cannot outlive it.
type PKStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.PrimaryKeyStore = (*PKStore)(nil)

// NewPKStore creates a Redis-backed primary-key store under prefix. A
// non-positive ttl falls back to ten minutes.
func NewPKStore(client *goredis.Client, prefix string, ttl time.Duration) *PKStore {
	if prefix == "" {
		prefix = defaultPKPrefix
	}
	if ttl <= 0 {
		ttl = defaultPKTTL
	}
	return &PKStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *PKStore) key(table string) string {
	return s.prefix + table
}

// Get returns the cached primary key of table.
func (s *PKStore) Get(ctx context.Context, table string) (string, bool, error) {
	col, err := s.client.Get(ctx, s.key(table)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis pk get %s: %w", table, err)
	}
	return col, true, nil
}

// Set stores the primary key of table with the store's TTL.
func (s *PKStore) Set(ctx context.Context, table string, column string) error {
	if err := s.client.Set(ctx, s.key(table), column, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis pk set %s: %w", table, err)
	}
	return nil
}

// Reset drops every key under the store's prefix.
func (s *PKStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, matchPrefix(s.prefix), resetBatchSize).Iterator()

	batch := make([]string, 0, resetBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == resetBatchSize {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis pk reset: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis pk reset: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis pk reset: %w", err)
		}
	}
	return nil
}

// matchPrefix builds a SCAN pattern matching every key that starts with
// prefix, escaping glob metacharacters in the prefix itself.
func matchPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('*')
	return b.String()
}

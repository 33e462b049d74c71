package service

import (
	"context"
	"fmt"
	"sync"

	"pgtx-coordinator/internal/core/ports"
	"pgtx-coordinator/pkg/dberror"

	"github.com/rs/zerolog"
)

// pkCache maps table names to their single-column primary key. An empty
// column records that the table has a composite key or none.
type pkCache struct {
	introspector ports.SchemaIntrospector
	store        ports.PrimaryKeyStore // optional
	log          zerolog.Logger

	mu      sync.RWMutex
	entries map[string]string

	// held while populating or resetting so two units never introspect the
	// same table twice
	fill sync.Mutex
}

func newPKCache(introspector ports.SchemaIntrospector, store ports.PrimaryKeyStore, log zerolog.Logger) *pkCache {
	return &pkCache{
		introspector: introspector,
		store:        store,
		log:          log,
		entries:      make(map[string]string),
	}
}

func (c *pkCache) cached(table string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.entries[table]
	return col, ok
}

// load returns the primary key of table, introspecting through q on a miss.
func (c *pkCache) load(ctx context.Context, q ports.Querier, table string) (string, error) {
	if col, ok := c.cached(table); ok {
		return col, nil
	}

	c.fill.Lock()
	defer c.fill.Unlock()

	if col, ok := c.cached(table); ok {
		return col, nil
	}

	if c.store != nil {
		col, found, err := c.store.Get(ctx, table)
		if err != nil {
			c.log.Warn().Err(err).Str("table", table).Msg("primary key store lookup failed, introspecting")
		} else if found {
			c.put(table, col)
			return col, nil
		}
	}

	columns, exists, err := c.introspector.PrimaryKeys(ctx, q, table)
	if err != nil {
		return "", dberror.Map(err, "")
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", dberror.ErrNoSuchTable, table)
	}

	var col string
	if len(columns) == 1 {
		col = columns[0]
	}
	c.put(table, col)

	if c.store != nil {
		if err := c.store.Set(ctx, table, col); err != nil {
			c.log.Warn().Err(err).Str("table", table).Msg("failed to share primary key")
		}
	}

	c.log.Debug().Str("table", table).Str("primary_key", col).Msg("primary key cached")
	return col, nil
}

func (c *pkCache) put(table, col string) {
	c.mu.Lock()
	c.entries[table] = col
	c.mu.Unlock()
}

// reset drops every cached entry, locally and in the shared store.
func (c *pkCache) reset(ctx context.Context) {
	c.fill.Lock()
	defer c.fill.Unlock()

	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Reset(ctx); err != nil {
			c.log.Warn().Err(err).Msg("failed to reset shared primary key store")
		}
	}
	c.log.Debug().Msg("primary key cache reset")
}

func (c *pkCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

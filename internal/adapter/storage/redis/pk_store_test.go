package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*PKStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPKStore(client, "test:pk:", time.Minute), s
}

func TestPKStore_GetMiss(t *testing.T) {
	store, _ := newTestStore(t)

	col, found, err := store.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, col)
}

func TestPKStore_SetThenGet(t *testing.T) {
	store, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "id"))

	col, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id", col)
	got, err := s.Get("test:pk:users")
	require.NoError(t, err)
	assert.Equal(t, "id", got)
	assert.Equal(t, time.Minute, s.TTL("test:pk:users"))
}

func TestPKStore_KeysExpire(t *testing.T) {
	store, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "id"))
	s.FastForward(time.Minute + time.Second)

	_, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPKStore_LateWriteAfterResetExpires(t *testing.T) {
	store, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "new_id"))
	require.NoError(t, store.Reset(ctx))

	// An introspection started before the schema change lands after the reset.
	require.NoError(t, store.Set(ctx, "users", "old_id"))
	assert.Greater(t, s.TTL("test:pk:users"), time.Duration(0))

	s.FastForward(24 * time.Hour)

	_, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found, "a fresh process must introspect again")
}

func TestPKStore_NoSingleKeyIsStored(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "line_items", ""))

	col, found, err := store.Get(ctx, "line_items")
	require.NoError(t, err)
	assert.True(t, found, "an empty column is a cached answer, not a miss")
	assert.Empty(t, col)
}

func TestPKStore_Reset(t *testing.T) {
	store, s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "id"))
	require.NoError(t, store.Set(ctx, "orders", "order_id"))
	require.NoError(t, s.Set("other:users", "keep"))
	require.NoError(t, store.Reset(ctx))

	assert.False(t, s.Exists("test:pk:users"))
	assert.False(t, s.Exists("test:pk:orders"))
	assert.True(t, s.Exists("other:users"))
	_, found, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPKStore_DefaultPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()

	store := NewPKStore(client, "", 0)
	require.NoError(t, store.Set(context.Background(), "users", "id"))

	got, err := s.Get("pgtx:pk:users")
	require.NoError(t, err)
	assert.Equal(t, "id", got)
	assert.Equal(t, 10*time.Minute, s.TTL("pgtx:pk:users"))
}

func TestPKStore_ResetManyKeys(t *testing.T) {
	store, s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("t%d", i), "id"))
	}
	require.NoError(t, store.Reset(ctx))
	assert.Empty(t, s.Keys())
}

func TestMatchPrefix(t *testing.T) {
	assert.Equal(t, "pgtx:pk:*", matchPrefix("pgtx:pk:"))
	assert.Equal(t, `a\*b\?\[x\]:*`, matchPrefix("a*b?[x]:"))
}

func TestPKStore_ServerDown(t *testing.T) {
	store, s := newTestStore(t)
	s.Close()

	_, _, err := store.Get(context.Background(), "users")
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "users", "id"))
	assert.Error(t, store.Reset(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}

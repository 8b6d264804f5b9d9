package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStorage(t *testing.T, opts ...RedisCartStorageOption) (*RedisCartStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCartStorageWithClient(client, opts...), mr
}

func TestRedisCartStorage_SaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStorage(t)

	value, err := store.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, store.Save(ctx, "cart:s1", []byte(`[{"quantity":2}]`), "a"))
	value, err = store.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"quantity":2}]`, string(value))
	assert.Zero(t, mr.TTL("cart:s1"))

	require.NoError(t, store.Remove(ctx, "cart:s1", "a"))
	assert.False(t, mr.Exists("cart:s1"))
}

func TestRedisCartStorage_EntryTTL(t *testing.T) {
	store, mr := newTestRedisStorage(t, WithEntryTTL(time.Hour))

	require.NoError(t, store.Save(context.Background(), "cart:s1", []byte(`[]`), "a"))
	assert.Equal(t, time.Hour, mr.TTL("cart:s1"))

	mr.FastForward(2 * time.Hour)
	value, err := store.Load(context.Background(), "cart:s1")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisCartStorage_Subscribe(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStorage(t, WithChangeChannel("test:changes"))

	changes := make(chan cart.Change, 4)
	stop, err := store.Subscribe(ctx, "cart:s1", func(c cart.Change) { changes <- c })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Save(ctx, "cart:other", []byte(`[]`), "b"))
	require.NoError(t, store.Save(ctx, "cart:s1", []byte(`[{"quantity":1}]`), "b"))
	require.NoError(t, store.Remove(ctx, "cart:s1", "b"))

	first := receiveChange(t, changes)
	assert.Equal(t, "cart:s1", first.Key)
	assert.Equal(t, "b", first.Origin)
	assert.False(t, first.Deleted)
	assert.JSONEq(t, `[{"quantity":1}]`, string(first.Value))

	second := receiveChange(t, changes)
	assert.True(t, second.Deleted)
	assert.Empty(t, second.Value)

	stop()
	require.NoError(t, store.Save(ctx, "cart:s1", []byte(`[]`), "b"))
	select {
	case c := <-changes:
		t.Fatalf("unexpected change after stop: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisCartStorage_SubscribeFailsWhenDown(t *testing.T) {
	store, mr := newTestRedisStorage(t)
	mr.Close()

	_, err := store.Subscribe(context.Background(), "cart:s1", func(cart.Change) {})
	assert.Error(t, err)

	_, err = store.Load(context.Background(), "cart:s1")
	assert.Error(t, err)
}

func TestCartStorageFactory(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		f := NewCartStorageFactory(config.CartConfig{Storage: "memory"}, config.RedisConfig{})
		store, err := f.CreateStorage()
		require.NoError(t, err)
		assert.IsType(t, &MemoryCartStorage{}, store)
	})

	t.Run("redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		f := NewCartStorageFactory(config.CartConfig{Storage: "redis"}, redisConfigFor(t, mr))
		store, err := f.CreateStorage()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &RedisCartStorage{}, store)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewCartStorageFactory(config.CartConfig{Storage: "redis"}, config.RedisConfig{Host: "127.0.0.1", Port: 1})
		store, err := f.CreateStorage()
		require.NoError(t, err)
		assert.IsType(t, &MemoryCartStorage{}, store)
	})

	t.Run("unreachable redis without fallback", func(t *testing.T) {
		f := NewCartStorageFactory(config.CartConfig{Storage: "redis"}, config.RedisConfig{Host: "127.0.0.1", Port: 1},
			WithInMemoryFallback(false))
		_, err := f.CreateStorage()
		assert.Error(t, err)
	})
}

func redisConfigFor(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	return config.RedisConfig{Host: mr.Host(), Port: mustAtoi(t, mr.Port())}
}

func receiveChange(t *testing.T, ch <-chan cart.Change) cart.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cart change")
		return cart.Change{}
	}
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T, cfg CacheConfig) *MemoryCache {
	t.Helper()

	c := NewMemoryCacheWithConfig(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "schema", []byte(`{"a":1}`), 0))
	got, err := c.Get(ctx, "schema")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	_, err = c.Get(ctx, "missing")
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryCacheExpiration(t *testing.T) {
	c := newTestMemoryCache(t, CacheConfig{DefaultTTL: 20 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "default", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), -1))

	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "default")
	assert.True(t, IsCacheMiss(err))
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryCacheSweep(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))

	c.sweep(time.Now().Add(time.Second))

	_, ok := c.data.Load("partytracker:short")
	assert.False(t, ok)
	_, ok = c.data.Load("partytracker:long")
	assert.True(t, ok)
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprint(i), []byte("v"), 0))
	}

	require.NoError(t, c.Delete(ctx, "0"))
	_, err := c.Get(ctx, "0")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "1")
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCacheCanceledContext(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), context.Canceled)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := newTestMemoryCache(t, DefaultCacheConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			for j := 0; j < 50; j++ {
				_ = c.Set(ctx, key, []byte(key), 0)
				if v, err := c.Get(ctx, key); err == nil {
					assert.Equal(t, key, string(v))
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCacheCloseStopsCleanup(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Close())

	select {
	case <-c.done:
	default:
		t.Fatal("cleanup goroutine still running after Close")
	}
}

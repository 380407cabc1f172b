package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/navrouter/internal/observability"
)

func TestMemoryCache_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(10, 0, observability.NopLogger())
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, c.Set(ctx, "a", []byte("2"), 0))
	got, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	assert.Equal(t, 1, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(0, 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), -1))

	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), got)
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(0, 10*time.Millisecond, nil)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k2", []byte("v"), 0))
	time.Sleep(30 * time.Millisecond)
	c.cleanup()
	assert.Zero(t, c.Len())
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(2, 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	// Touch a so that b becomes the least recently used entry.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(0, 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "never-set"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(0, 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	for _, key := range []string{"lookup:v1:/a", "lookup:v1:/b", "lookup:v2:/a", "other"} {
		require.NoError(t, c.Set(ctx, key, []byte(key), 0))
	}

	n, err := c.DeletePrefix(ctx, "lookup:v1:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "lookup:v2:/a")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "other")
	assert.NoError(t, err)
}

func TestMemoryCache_CloseIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(0, time.Minute, nil)
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory(50, 0, nil)
	t.Cleanup(func() { _ = c.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d-%d", worker, j%20)
				_ = c.Set(ctx, key, []byte(key), 0)
				_, _ = c.Get(ctx, key)
				if j%25 == 0 {
					_, _ = c.DeletePrefix(ctx, fmt.Sprintf("k%d-", worker))
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

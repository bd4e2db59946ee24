//go:build integration

package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("APPEALGEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("APPEALGEN_TEST_REDIS_ADDR not set")
	}
	client, err := NewClient(config.RedisConfig{Addr: addr}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(testClient(t), nil, WithPrefix("appealgen-test:"))
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
	require.NoError(t, cache.Set(ctx, "k1", payload{Name: "Aetna", Score: 7}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "Aetna", Score: 7}, got)

	require.NoError(t, cache.Delete(ctx, "k1"))
	err := cache.Get(ctx, "k1", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheGetOrSetSingleflight(t *testing.T) {
	cache := NewCache(testClient(t), nil, WithPrefix("appealgen-test:"))
	ctx := context.Background()
	_ = cache.Delete(ctx, "shared")

	var loads int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(50 * time.Millisecond)
		return map[string]string{"v": "loaded"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest map[string]string
			require.NoError(t, cache.GetOrSet(ctx, "shared", &dest, time.Minute, loader))
			assert.Equal(t, "loaded", dest["v"])
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyfeed-backend/internal/platform/redis"
)

type report struct {
	Total int64 `json:"total"`
}

func newCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client, "test:"), mr
}

func TestGetMissAndSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got report
	assert.ErrorIs(t, c.Get(ctx, "stats", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "stats", report{Total: 7}, time.Minute))
	require.NoError(t, c.Get(ctx, "stats", &got))
	assert.Equal(t, int64(7), got.Total)
	assert.True(t, mr.Exists("test:stats"))

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "stats", &got), ErrMiss)
}

func TestGetCorruptValue(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("test:stats", "{not json"))

	var got report
	err := c.Get(context.Background(), "stats", &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
}

func TestPurge(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("GET:/api/v1/stories?offset=%d", i), i, 0))
	}
	require.NoError(t, c.Set(ctx, "GET:/api/v1/users/stats", 3, 0))

	n, err := c.Purge(ctx, "GET:*/stories*")
	require.NoError(t, err)
	assert.Equal(t, int64(250), n)
	assert.True(t, mr.Exists("test:GET:/api/v1/users/stats"))

	n, err = c.Purge(ctx, "GET:*/stories*")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// Package cache stores JSON snapshots in redis under a fixed key prefix.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storyfeed-backend/internal/platform/redis"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// purgeBatch bounds both the SCAN page size and each UNLINK call.
const purgeBatch = 100

type CacheService struct {
	rdb    *redis.Client
	prefix string
}

func NewCacheService(rdb *redis.Client, prefix string) *CacheService {
	return &CacheService{rdb: rdb, prefix: prefix}
}

// Get decodes the snapshot stored under key into dest.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if redis.IsNil(err) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// Set stores value under key; ttl 0 keeps it until purged.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Purge unlinks every key matching the glob pattern and reports how many
// were removed. Keys written while the scan runs may survive.
func (c *CacheService) Purge(ctx context.Context, pattern string) (int64, error) {
	var removed int64
	batch := make([]string, 0, purgeBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.rdb.Unlink(ctx, batch...).Result()
		removed += n
		batch = batch[:0]
		return err
	}

	iter := c.rdb.Scan(ctx, 0, c.prefix+pattern, purgeBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"storyfeed-backend/internal/common/config"
	"storyfeed-backend/internal/common/logger"
)

// Client is the go-redis client shared by sessions, caches and the payment
// event consumer.
type Client struct {
	*redis.Client
}

// Open connects using cfg and pings once.
func Open(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}
	c := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}

	logger.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Int("pool_size", cfg.PoolSize).Msg("Redis client initialized")
	return &Client{Client: c}, nil
}

// Wrap adopts an already configured go-redis client.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// IsBusyGroup reports the error XGROUP CREATE returns for an existing group.
func IsBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps go-redis client with optional logger.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", addr))
	return &Client{Client: rdb, logger: logger}, nil
}

// GetString reads a key. The second return is false on a miss; redis
// errors are logged and reported as misses so callers degrade to their
// backing source.
func (c *Client) GetString(ctx context.Context, key string) (string, bool) {
	val, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

// SetString writes a key with a TTL. Errors are logged, not returned.
func (c *Client) SetString(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes keys. Errors are logged, not returned.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

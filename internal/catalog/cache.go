package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:search:"

// RedisCache keeps search results in redis with a fixed TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to the redis instance at redisURL (redis://host:port/db)
// and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, query string) ([]Book, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+query).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, false, fmt.Errorf("decode cached results: %w", err)
	}
	return books, true, nil
}

func (c *RedisCache) Set(ctx context.Context, query string, books []Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKeyPrefix+query, raw, c.ttl).Err()
}

// Ping checks the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the redis connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Package redisx provides the optional Redis client. Redis backs the shared
// widget-state store and the API rate limiter when configured; the app runs
// fully without it.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"cubedeck/internal/config"
)

// Client is an alias for a Redis client
type Client = redis.Client

// Open creates a Redis client from configuration. An empty address means
// Redis is not in use and yields a nil client without error.
func Open(cfg *config.Config) (*Client, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, func() {}, err
	}
	closer := func() { _ = rdb.Close() }
	return rdb, closer, nil
}

// Package cache holds the Redis connection backing the feedback store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	opTimeout   = 3 * time.Second
)

// Cache is a Redis connection shared by the feedback store and the
// readiness probe.
type Cache struct {
	Client *redis.Client
}

// New connects to Redis at url and verifies the connection with a ping.
func New(ctx context.Context, url string) (*Cache, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return &Cache{Client: client}, nil
}

// Close shuts down the connection.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

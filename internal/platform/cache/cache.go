// Package cache provides a Dragonfly/Redis client wrapper and the counters
// built on it.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "pai-classroom"

// Cache wraps a Redis/Dragonfly client.
type Cache struct {
	Client *redis.Client
}

// Key joins parts under KeyPrefix with colons.
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

// ParseURL validates a Redis connection URL and applies the client timeouts.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return opts, nil
}

// New connects to url and pings it once.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache at %s: %w", opts.Addr, err)
	}
	return &Cache{Client: client}, nil
}

// IncrWindow increments the counter for key in the fixed window containing
// now and returns the new count along with the time left in the window. The
// counter expires with its window.
func (c *Cache) IncrWindow(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Duration, error) {
	start := now.Truncate(window)
	k := Key(key, fmt.Sprint(start.Unix()))

	var incr *redis.IntCmd
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("incrementing %s: %w", k, err)
	}
	return incr.Val(), start.Add(window).Sub(now), nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Package cache provides an optional Redis-backed response cache for graph
// views and stats. A nil *Cache is valid and disables caching, so callers
// never branch on configuration.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

const defaultTTL = 5 * time.Minute

// keyPrefix namespaces every entry so a flush never touches other services
// sharing the Redis database.
const keyPrefix = "orbitgraph:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New returns nil when no cache address is configured. Connectivity problems
// are logged, not fatal: the cache is an optimization, the store is the
// source of truth.
func New(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) *Cache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c := &Cache{client: client, ttl: ttl, log: log.With("component", "cache")}
	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warn("cache unreachable, continuing without it", "addr", cfg.Addr, "error", err)
		return nil
	}
	c.log.Info("response cache enabled", "addr", cfg.Addr, "ttl", ttl.String())
	return c
}

// Get unmarshals a cached value into dest. Returns false on a miss or any
// error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Flush drops every cached response under the service prefix. Called after a
// rebuild so queries never serve the previous edge set past the swap.
func (c *Cache) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 128).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("cache flush failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache flush scan failed", "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

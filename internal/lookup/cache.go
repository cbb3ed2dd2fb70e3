// internal/lookup/cache.go
package lookup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mlft9/perimapp/internal/config"
)

// Cache holds successful lookup results so repeated scans of the same
// barcode do not hit the remote database again. Cache failures are silent:
// a broken cache only costs an extra remote call.
type Cache interface {
	Get(ctx context.Context, barcode string) (*ProductData, bool)
	Set(ctx context.Context, barcode string, data *ProductData)
}

// NewCache returns a Redis-backed cache when an address is configured, and
// an in-process one otherwise.
func NewCache(cfg config.RedisConfig, ttl time.Duration) Cache {
	if cfg.Addr == "" {
		return newMemoryCache(ttl)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisCache{rdb: rdb, ttl: ttl}
}

const redisKeyPrefix = "perimapp:lookup:"

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func (c *redisCache) Get(ctx context.Context, barcode string) (*ProductData, bool) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+barcode).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("Lookup cache read failed")
		}
		return nil, false
	}

	var data ProductData
	if err := json.Unmarshal(raw, &data); err != nil {
		logrus.WithError(err).Warn("Lookup cache entry is not valid JSON")
		return nil, false
	}
	return &data, true
}

func (c *redisCache) Set(ctx context.Context, barcode string, data *ProductData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+barcode, raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Lookup cache write failed")
	}
}

type memoryCacheEntry struct {
	data      ProductData
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	ttl     time.Duration
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		entries: make(map[string]memoryCacheEntry),
		ttl:     ttl,
	}
}

func (c *memoryCache) Get(_ context.Context, barcode string) (*ProductData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[barcode]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, barcode)
		return nil, false
	}

	data := entry.data
	return &data, true
}

func (c *memoryCache) Set(_ context.Context, barcode string, data *ProductData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[barcode] = memoryCacheEntry{
		data:      *data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

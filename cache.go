package ogcard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RenderCache stores rendered PNGs by canonical card key.
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, png []byte) error
}

const renderKeyPrefix = "ogcard:png:"

// cacheKey hashes a canonical query into a fixed-length cache key.
func cacheKey(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return renderKeyPrefix + hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	png     []byte
	fetched time.Time
}

// MemoryCache is an in-process RenderCache with TTL. A non-positive TTL
// disables it.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a MemoryCache holding at most maxEntries PNGs.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) valid(e cacheEntry) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

// Get returns a cached PNG that has not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.valid(e) {
		return nil, false, nil
	}
	return e.png, true, nil
}

// Set stores png under key, evicting expired entries when the cache is full.
func (c *MemoryCache) Set(_ context.Context, key string, png []byte) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.entries[key] = cacheEntry{png: png, fetched: c.now()}
	return nil
}

// evict drops expired entries, then the oldest one if none expired.
func (c *MemoryCache) evict() {
	var oldest string
	var oldestAt time.Time
	removed := false
	for k, e := range c.entries {
		if !c.valid(e) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if oldest == "" || e.fetched.Before(oldestAt) {
			oldest, oldestAt = k, e.fetched
		}
	}
	if !removed && oldest != "" {
		delete(c.entries, oldest)
	}
}

// Invalidate clears the cache.
func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// RedisCache keeps rendered PNGs in Redis with an expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache on client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the stored PNG. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores png with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, png []byte) error {
	if c.ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, key, png, c.ttl).Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager handles caching operations over a memory layer and an optional
// Redis layer.
type Manager struct {
	memory    *gocache.Cache
	memoryTTL time.Duration
	redis     *redis.Client
}

// NewManager creates a new cache manager. redisClient may be nil for a
// memory-only cache; memoryTTL <= 0 disables the memory layer.
func NewManager(redisClient *redis.Client, memoryTTL time.Duration) *Manager {
	m := &Manager{
		memoryTTL: memoryTTL,
		redis:     redisClient,
	}
	if memoryTTL > 0 {
		m.memory = gocache.New(memoryTTL, 2*memoryTTL)
	}
	return m
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	if m.memory != nil {
		if v, ok := m.memory.Get(cacheKey); ok {
			entry := v.(*CacheEntry)
			if !entry.IsExpired() {
				CacheHits.WithLabelValues("memory").Inc()
				return entry, nil
			}
			m.memory.Delete(cacheKey)
		}
	}

	if m.redis == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	m.setMemory(cacheKey, &entry)

	return &entry, nil
}

// Set stores a cache entry in every layer with TTL based on the entry's
// Expires field. Expired entries are not stored.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	cacheKey := key.String()
	m.setMemory(cacheKey, entry)

	if m.redis == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry from every layer.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	cacheKey := key.String()

	if m.memory != nil {
		m.memory.Delete(cacheKey)
	}

	if m.redis == nil {
		return nil
	}

	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Flush empties the memory layer. Redis entries are left to expire.
func (m *Manager) Flush() {
	if m.memory != nil {
		m.memory.Flush()
	}
}

func (m *Manager) setMemory(cacheKey string, entry *CacheEntry) {
	if m.memory == nil {
		return
	}
	ttl := min(entry.TTL(), m.memoryTTL)
	if ttl <= 0 {
		return
	}
	m.memory.Set(cacheKey, entry, ttl)
}

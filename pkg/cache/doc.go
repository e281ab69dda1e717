// Package cache stores First Street API batch responses.
//
// The manager keeps two layers:
//
// - An in-process memory layer (go-cache) with a short TTL
// - An optional Redis layer shared between processes
//
// Keys hash the ordered items. A non-empty Scope adds a digest segment so
// clients with different base URLs or API keys sharing one Redis never
// collide.
//
// Entries live until the response's Expires time (or DefaultTTL when the API
// sends none). A Redis hit is promoted into the memory layer.
//
// # Basic Usage
//
//	// Memory-only cache
//	manager := cache.NewManager(nil, 30*time.Second)
//
//	// Memory + Redis
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, 30*time.Second)
//
//	key := cache.CacheKey{
//		Scope:    "https://api.firststreet.org/v1",
//		Endpoint: "/probability/depth",
//		Items:    []string{"fsid:390655", "fsid:394406"},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from the API
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
//   - fsf_cache_hits_total{layer="memory|redis"} - Cache hits
//   - fsf_cache_misses_total - Cache misses
//   - fsf_cache_errors_total{operation} - Cache operation errors
package cache

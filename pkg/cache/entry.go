package cache

import (
	"time"
)

// CacheEntry is one batch response: the raw JSON array returned for an
// endpoint and an ordered list of search items.
type CacheEntry struct {
	Data       []byte    `json:"data"`
	Expires    time.Time `json:"expires"`
	StatusCode int       `json:"status_code"`
	CachedAt   time.Time `json:"cached_at"`
}

// IsExpired reports whether the entry is stale now.
func (e *CacheEntry) IsExpired() bool {
	return e.expiredAt(time.Now())
}

// TTL returns the remaining lifetime, or 0 once expired.
func (e *CacheEntry) TTL() time.Duration {
	return e.ttlAt(time.Now())
}

func (e *CacheEntry) expiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

func (e *CacheEntry) ttlAt(now time.Time) time.Duration {
	return max(e.Expires.Sub(now), 0)
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey identifies one batch request.
type CacheKey struct {
	// Scope separates clients sharing one Redis, e.g. base URL and credentials.
	// Empty means unscoped.
	Scope string
	// Endpoint is the request path (e.g. "/adaptation/summary/county")
	Endpoint string
	// Items are the canonical search item strings, in request order
	Items []string
}

// String generates a deterministic cache key string.
// Format: fsf[:<scope digest>]:<endpoint segments>:<sha256 of items>
// Item order is significant since responses are positional.
func (k CacheKey) String() string {
	endpoint := strings.ReplaceAll(strings.Trim(k.Endpoint, "/"), "/", ":")
	h := sha256.New()
	for _, item := range k.Items {
		h.Write([]byte(item))
		h.Write([]byte{0})
	}
	prefix := "fsf:"
	if k.Scope != "" {
		prefix += ScopeDigest(k.Scope) + ":"
	}
	return prefix + endpoint + ":" + hex.EncodeToString(h.Sum(nil))
}

// ScopeDigest returns the short hex digest used for a scope in key strings.
func ScopeDigest(scope string) string {
	sum := sha256.Sum256([]byte(scope))
	return hex.EncodeToString(sum[:8])
}

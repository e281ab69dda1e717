// Package ratelimit paces requests to the First Street API. It combines a
// client-side token bucket with the quota the API reports through the
// X-RateLimit-Remaining and X-RateLimit-Reset headers, so that callers wait
// for the quota window to reset instead of burning requests on 429s.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRemaining      = "fsf:rate_limit:remaining"
	RedisKeyLimit          = "fsf:rate_limit:limit"
	RedisKeyResetTimestamp = "fsf:rate_limit:reset_timestamp"
	RedisKeyLastUpdate     = "fsf:rate_limit:last_update"
)

// Response headers carrying the API quota.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// State is the last quota reported by the API.
// With Redis configured it is shared by every client instance.
type State struct {
	// Limit is the request quota per window (0 if not reported).
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the quota window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// Known reports whether the state holds data from an API response.
func (s *State) Known() bool {
	return !s.LastUpdate.IsZero()
}

// IsStale returns true if the state is older than maxAge at now.
func (s *State) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.LastUpdate) > maxAge
}

// Exhausted returns true if the quota is used up and the window has not
// reset yet at now.
func (s *State) Exhausted(now time.Time) bool {
	return s.Known() && s.Remaining <= 0 && now.Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset(now time.Time) time.Duration {
	d := s.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

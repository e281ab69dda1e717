package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit tracking.
var (
	fsfRateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fsf_rate_limit_remaining",
		Help: "Requests remaining in the current First Street API quota window",
	})

	fsfRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsf_rate_limit_waits_total",
		Help: "Total number of requests delayed until the API quota window reset",
	})
)

// MaxStateAge is how long a stored quota state may hold requests back.
// Older state, e.g. left in Redis by a process that stopped sending, is
// ignored and the next response refreshes it.
const MaxStateAge = 15 * time.Minute

// Tracker gates requests on a local token bucket and the API-reported quota.
type Tracker struct {
	limiter *rate.Limiter
	store   Store
	clock   clockwork.Clock
	logger  zerolog.Logger
}

// NewTracker creates a tracker allowing requestsPerSecond requests per second
// (<= 0 disables local pacing).
func NewTracker(requestsPerSecond int, store Store, clock clockwork.Clock, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	burst := 0
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = requestsPerSecond
	}

	return &Tracker{
		limiter: rate.NewLimiter(limit, burst),
		store:   store,
		clock:   clock,
		logger:  logger,
	}
}

// GetState returns the last stored quota state.
func (t *Tracker) GetState(ctx context.Context) (State, error) {
	state, err := t.store.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load rate limit state: %w", err)
	}
	return state, nil
}

// Wait blocks until a request may be sent or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	state, err := t.GetState(ctx)
	if err != nil {
		// A broken state store must not stop traffic; local pacing still applies.
		t.logger.Warn().Err(err).Msg("Rate limit state unavailable")
		return nil
	}

	now := t.clock.Now()
	if !state.Exhausted(now) {
		return nil
	}
	if state.IsStale(now, MaxStateAge) {
		t.logger.Debug().
			Time("last_update", state.LastUpdate).
			Time("reset_at", state.ResetAt).
			Msg("Ignoring stale API quota state")
		return nil
	}

	wait := state.TimeUntilReset(now)
	if untilStale := state.LastUpdate.Add(MaxStateAge).Sub(now); untilStale < wait {
		wait = untilStale
	}
	fsfRateLimitWaitsTotal.Inc()
	t.logger.Warn().
		Int("remaining", state.Remaining).
		Dur("wait_duration", wait).
		Msg("API quota exhausted - waiting for reset")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.clock.After(wait):
		return nil
	}
}

// UpdateFromHeaders records the quota reported in response headers.
// Responses without quota headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return fmt.Errorf("%s header missing", HeaderReset)
	}
	resetSeconds, err := strconv.Atoi(resetStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}

	limit := 0
	if limitStr := headers.Get(HeaderLimit); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	now := t.clock.Now()
	state := State{
		Limit:      limit,
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
	}

	if err := t.store.Save(ctx, state); err != nil {
		return err
	}

	fsfRateLimitRemaining.Set(float64(remain))

	event := t.logger.Debug()
	if remain <= 0 {
		event = t.logger.Warn()
	}
	event.
		Int("remaining", remain).
		Int("limit", limit).
		Time("reset_at", state.ResetAt).
		Msg("API quota state updated")

	return nil
}

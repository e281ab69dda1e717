// Package client provides the core First Street Foundation API HTTP client
// with rate limiting, caching, retries and error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/fsf-client/pkg/cache"
	"github.com/Sternrassler/fsf-client/pkg/ratelimit"
	"github.com/Sternrassler/fsf-client/pkg/search"
)

// DefaultBaseURL is the First Street Foundation API v1 root.
const DefaultBaseURL = "https://api.firststreet.org/v1"

// Prometheus metrics for FSF client operations.
var (
	fsfRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsf_requests_total",
		Help: "Total FSF API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	fsfRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsf_request_duration_seconds",
		Help:    "FSF API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	fsfErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsf_errors_total",
		Help: "Total FSF API errors by class",
	}, []string{"class"})
)

// Client is the First Street API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	retry       RetryConfig
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates every request (REQUIRED).
	APIKey string

	// BaseURL is the API root; defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Redis client for the shared cache layer and rate limit state (optional).
	Redis *redis.Client

	// Rate Limiting
	RateLimit int // Requests per second, 0 = unpaced

	// Batching
	BatchSize      int           // Search items per request
	MaxConcurrency int           // Max parallel batch requests
	BatchTimeout   time.Duration // Deadline per batch, retries included

	// HTTP
	Timeout time.Duration // Per-attempt HTTP timeout

	// Caching
	MemoryCacheTTL time.Duration // In-memory cache TTL, 0 (default) disables the layer

	// Retry
	MaxRetries     int // Retries after the first attempt, 0 disables
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		BaseURL:        DefaultBaseURL,
		UserAgent:      "fsf-client/0.1.0",
		RateLimit:      10,
		BatchSize:      100,
		MaxConcurrency: 5,
		BatchTimeout:   2 * time.Minute,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new FSF client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch_size must be > 0 (got %d)", cfg.BatchSize)
	}

	if cfg.MaxConcurrency <= 0 {
		return nil, fmt.Errorf("max_concurrency must be > 0 (got %d)", cfg.MaxConcurrency)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must be >= 0 (got %d)", cfg.RateLimit)
	}

	defaults := DefaultConfig(cfg.APIKey)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaults.BatchTimeout
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaults.InitialBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	logger := log.With().Str("component", "fsf-client").Logger()

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.Redis != nil {
		store = ratelimit.NewRedisStore(cfg.Redis)
	}
	rateLimiter := ratelimit.NewTracker(cfg.RateLimit, store, clockwork.NewRealClock(), logger)

	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries + 1
	retry.InitialBackoff = cfg.InitialBackoff

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rateLimiter,
		cache:       cache.NewManager(cfg.Redis, cfg.MemoryCacheTTL),
		config:      cfg,
		retry:       retry,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request with rate limiting, retries and error
// classification. Any non-2xx outcome is returned as *APIError (possibly
// wrapped in ErrRetryExhausted); on success the caller owns resp.Body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := strings.TrimPrefix(req.URL.Path, c.basePath())

	startTime := time.Now()
	defer func() {
		fsfRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing FSF request")

	var resp *http.Response
	err := retryWithBackoff(ctx, c.retry, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		attempt, err := cloneRequest(req)
		if err != nil {
			return err
		}

		r, err := c.httpClient.Do(attempt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			fsfErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			fsfRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        err,
			}
		}

		if err := c.rateLimiter.UpdateFromHeaders(ctx, r.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}

		status := strconv.Itoa(r.StatusCode)
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			fsfRequestsTotal.WithLabelValues(endpoint, status).Inc()
			resp = r
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody+1))
		r.Body.Close()

		errClass := classifyStatus(r.StatusCode)
		if errClass == "" {
			errClass = ErrorClassServer
		}
		fsfErrorsTotal.WithLabelValues(string(errClass)).Inc()
		fsfRequestsTotal.WithLabelValues(endpoint, status).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", r.StatusCode).
			Str("error_class", string(errClass)).
			Msg("FSF request error")

		return &APIError{
			StatusCode: r.StatusCode,
			ErrorClass: errClass,
			Message:    errorMessage(r.Status, body),
		}
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// cloneRequest returns a fresh copy of req for one attempt, rewinding the body.
func cloneRequest(req *http.Request) (*http.Request, error) {
	attempt := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		attempt.Body = body
	}
	return attempt, nil
}

// Post sends payload as JSON to endpoint, relative to the base URL.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// searchRequest is the batch request body.
type searchRequest struct {
	Search []search.Item `json:"search"`
}

// FetchBatch looks up one batch of search items at endpoint
// (e.g. "/probability/depth/property") and returns one raw record per item,
// in item order. Cached responses are served without a request.
func (c *Client) FetchBatch(ctx context.Context, endpoint string, items []search.Item) ([]json.RawMessage, error) {
	key := c.cacheKey(endpoint, items)

	entry, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		records, decodeErr := decodeRecords(entry.Data, len(items))
		if decodeErr == nil {
			c.logger.Debug().Str("endpoint", endpoint).Int("items", len(items)).Msg("Serving batch from cache")
			return records, nil
		}
		c.logger.Warn().Err(decodeErr).Str("endpoint", endpoint).Msg("Discarding unusable cache entry")
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Msg("Cache delete error")
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
	}

	resp, err := c.Post(ctx, endpoint, searchRequest{Search: items})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	entry, err = cache.ResponseToEntry(resp)
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	records, err := decodeRecords(entry.Data, len(items))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
	}

	return records, nil
}

// cacheKey scopes the batch key to this client's base URL and API key so
// clients sharing one Redis never read each other's responses.
func (c *Client) cacheKey(endpoint string, items []search.Item) cache.CacheKey {
	return cache.CacheKey{
		Scope:    c.baseURL + "\x00" + c.config.APIKey,
		Endpoint: endpoint,
		Items:    itemKeys(items),
	}
}

func itemKeys(items []search.Item) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.String()
	}
	return keys
}

// decodeRecords splits a JSON array response into want raw records.
func decodeRecords(data []byte, want int) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(records) != want {
		return nil, fmt.Errorf("%w: got %d records for %d items", ErrResponseMismatch, len(records), want)
	}
	return records, nil
}

func (c *Client) basePath() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// Config returns the effective client configuration.
func (c *Client) Config() Config {
	return c.config
}

// RateLimitState returns the last API-reported quota.
func (c *Client) RateLimitState(ctx context.Context) (ratelimit.State, error) {
	return c.rateLimiter.GetState(ctx)
}

// Close releases in-process resources. The Redis client belongs to the
// caller and is left open.
func (c *Client) Close() error {
	c.cache.Flush()
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager (for testing).
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}

// Package testutil provides testing utilities for the FSF client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/fsf-client/pkg/search"
)

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordFunc builds the record returned for one search item.
type RecordFunc func(path string, item search.Item) any

// MockFSF is a configurable mock First Street API server. By default every
// POST answers a {"search": [...]} body with one record per item.
type MockFSF struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	record   RecordFunc

	// Tracking
	RequestCount      int
	Paths             []string
	BatchSizes        []int
	LastRequestHeader http.Header
}

// NewMockFSF creates a new mock FSF server.
func NewMockFSF() *MockFSF {
	mock := &MockFSF{
		handlers: make(map[string]http.HandlerFunc),
		record:   DefaultRecord,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Paths = append(mock.Paths, r.URL.Path)
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockFSF) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockFSF) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockFSF) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Paths = nil
	m.BatchSizes = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockFSF) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetRecordFunc replaces the per-item record builder of the default handler.
func (m *MockFSF) SetRecordFunc(fn RecordFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = fn
}

// SetResponse configures a fixed response for a path.
func (m *MockFSF) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockFSF) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetBatchSizes returns the item count of every batch answered by the
// default handler, in arrival order.
func (m *MockFSF) GetBatchSizes() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.BatchSizes...)
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockFSF) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// GetPaths returns every requested path, in arrival order.
func (m *MockFSF) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Paths...)
}

// defaultHandler echoes one record per search item.
func (m *MockFSF) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", "4999")
	w.Header().Set("X-RateLimit-Reset", "60")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Search []search.Item `json:"search"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid search body"}`))
		return
	}

	m.mu.Lock()
	m.BatchSizes = append(m.BatchSizes, len(body.Search))
	record := m.record
	m.mu.Unlock()

	records := make([]any, len(body.Search))
	for i, item := range body.Search {
		records[i] = record(r.URL.Path, item)
	}

	w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(records)
}

// DefaultRecord returns {"fsid": <id>} for numeric FSIDs and {"fsid": null}
// for anything else.
func DefaultRecord(_ string, item search.Item) any {
	if id, err := strconv.ParseInt(item.FSID, 10, 64); err == nil {
		return map[string]any{"fsid": id}
	}
	return map[string]any{"fsid": nil}
}

// NewHealthyResponse creates a standard 200 OK response with quota headers.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "4999",
			"X-RateLimit-Reset":     "60",
			"Expires":               time.Now().Add(5 * time.Minute).Format(http.TimeFormat),
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "1",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUnauthorizedResponse creates a 401 response for a rejected API key.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"error": "Invalid API key"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

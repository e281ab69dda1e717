// Package metrics exposes the Prometheus metrics of the FSF client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, batch) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the FSF client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects everything registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - fsf_rate_limit_remaining (Gauge): Requests remaining in the API quota window
//   - fsf_rate_limit_waits_total (Counter): Requests delayed until the quota window reset
//
// Cache Metrics (pkg/cache):
//   - fsf_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - fsf_cache_misses_total (Counter): Cache misses
//   - fsf_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - fsf_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - fsf_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - fsf_errors_total{class} (Counter): Errors by class (client, auth, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - fsf_retries_total{error_class} (Counter): Retry attempts by error class
//   - fsf_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - fsf_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Batch Metrics (pkg/batch):
//   - fsf_batches_total{outcome} (Counter): Batch requests by outcome (success, error)
//   - fsf_batch_size (Histogram): Search items per batch request
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(fsf_cache_hits_total[5m])) /
//   (sum(rate(fsf_cache_hits_total[5m])) + sum(rate(fsf_cache_misses_total[5m])))
//
//   # Quota Running Low
//   fsf_rate_limit_remaining < 100
//
//   # Request Error Rate
//   rate(fsf_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(fsf_request_duration_seconds_bucket[5m]))
//
//   # Failed Batch Ratio
//   rate(fsf_batches_total{outcome="error"}[5m]) / rate(fsf_batches_total[5m])

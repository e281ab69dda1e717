package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/fsf-client/pkg/search"
)

var (
	fsfBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsf_batches_total",
			Help: "Total number of batch requests by outcome",
		},
		[]string{"outcome"},
	)

	fsfBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fsf_batch_size",
			Help:    "Number of search items per batch request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of batches in flight.
	MaxConcurrency int
	// Timeout per batch request
	Timeout time.Duration
}

// DefaultConfig returns the default fan-out settings.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        60 * time.Second,
	}
}

// BatchFetcher sends one request for a batch of search items. The result
// has exactly one record per item, in item order.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, endpoint string, items []search.Item) ([]json.RawMessage, error)
}

// Fetcher runs batch requests concurrently.
type Fetcher struct {
	fetcher BatchFetcher
	config  Config
}

// NewFetcher creates a new batch fetcher
func NewFetcher(fetcher BatchFetcher, config Config) *Fetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Fetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches every batch and returns the records concatenated in
// batch order. The first failing batch cancels the rest and its error is
// returned.
func (f *Fetcher) FetchAll(ctx context.Context, endpoint string, batches iter.Seq[[]search.Item]) ([]json.RawMessage, error) {
	start := time.Now()
	all := slices.Collect(batches)
	if len(all) == 0 {
		return nil, nil
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("batches", len(all)).
		Int("max_concurrency", f.config.MaxConcurrency).
		Msg("Starting batch fetch")

	results := make([][]json.RawMessage, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.MaxConcurrency)

	for i, items := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fsfBatchSize.Observe(float64(len(items)))

			batchCtx, cancel := context.WithTimeout(gctx, f.config.Timeout)
			defer cancel()

			records, err := f.fetcher.FetchBatch(batchCtx, endpoint, items)
			if err != nil {
				fsfBatchesTotal.WithLabelValues("error").Inc()
				log.Warn().
					Err(err).
					Str("endpoint", endpoint).
					Int("batch", i).
					Int("items", len(items)).
					Msg("Batch fetch failed")
				return fmt.Errorf("batch %d: %w", i, err)
			}

			fsfBatchesTotal.WithLabelValues("success").Inc()
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]json.RawMessage, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("batches", len(all)).
		Int("records", total).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return out, nil
}

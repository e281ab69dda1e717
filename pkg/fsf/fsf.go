// Package fsf is the high-level First Street Foundation API: one method per
// product and subtype, each resolving search input, fetching in concurrent
// batches, mapping records and optionally exporting them to CSV.
//
// Example usage:
//
//	c, err := client.New(client.DefaultConfig(os.Getenv("FSF_API_KEY")))
//	if err != nil {
//		return err
//	}
//	api := fsf.New(c)
//	depths, err := api.Probability.GetDepth(ctx, []string{"390655"}, fsf.Options{})
//
// Every call is independent: with client.DefaultConfig nothing is cached
// between calls. Setting client.Config.MemoryCacheTTL or Config.Redis opts
// into reusing batch responses until the API's Expires time.
package fsf

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/fsf-client/pkg/batch"
	"github.com/Sternrassler/fsf-client/pkg/client"
	"github.com/Sternrassler/fsf-client/pkg/export"
	"github.com/Sternrassler/fsf-client/pkg/logging"
	"github.com/Sternrassler/fsf-client/pkg/models"
	"github.com/Sternrassler/fsf-client/pkg/product"
	"github.com/Sternrassler/fsf-client/pkg/search"
)

// Options control a single lookup.
type Options struct {
	// CSV writes the mapped records to a CSV file after the lookup.
	CSV bool

	// OutputDir is the CSV directory (default export.DefaultOutputDir).
	OutputDir string

	// Limit is the number of search items per request
	// (default: the client's BatchSize).
	Limit int

	// Concurrency caps parallel batch requests
	// (default: the client's MaxConcurrency).
	Concurrency int
}

// API groups the product facades.
type API struct {
	Adaptation  *Adaptation
	Probability *Probability
}

// Option customizes New.
type Option func(*core)

// WithExporter replaces the CSV exporter.
func WithExporter(e export.Exporter) Option {
	return func(c *core) {
		c.exporter = e
	}
}

// WithLogger replaces the facade logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *core) {
		c.logger = l
	}
}

// New creates the facades on top of c.
func New(c *client.Client, opts ...Option) *API {
	cr := &core{
		client:   c,
		exporter: export.NewCSVExporter(),
		logger:   logging.NewLogger("fsf"),
	}
	for _, opt := range opts {
		opt(cr)
	}

	return &API{
		Adaptation:  &Adaptation{core: cr},
		Probability: &Probability{core: cr},
	}
}

// core holds what every facade method shares.
type core struct {
	client   *client.Client
	exporter export.Exporter
	logger   zerolog.Logger
}

// fetch validates loc and input, then looks them up at kind's endpoint.
func fetch[T any](ctx context.Context, c *core, kind product.Kind, input any, loc product.LocationType, opts Options) ([]T, error) {
	if kind.Endpoint().Mode == product.LocationRequired {
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}

	items, err := search.Resolve(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	return fetchItems[T](ctx, c, kind, items, loc, opts)
}

// fetchItems looks up already resolved items.
func fetchItems[T any](ctx context.Context, c *core, kind product.Kind, items []search.Item, loc product.LocationType, opts Options) ([]T, error) {
	cfg := c.client.Config()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.BatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = cfg.MaxConcurrency
	}

	fetcher := batch.NewFetcher(c.client, batch.Config{
		MaxConcurrency: concurrency,
		Timeout:        cfg.BatchTimeout,
	})

	raws, err := fetcher.FetchAll(ctx, kind.Path(loc), search.Batches(items, limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	records, err := models.DecodeAll[T](raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return records, nil
}

// finish exports records when requested and logs "<label> Data Ready.".
func (c *core) finish(label string, target export.Target, records []export.Record, opts Options) error {
	if opts.CSV {
		target.OutputDir = opts.OutputDir
		if _, err := c.exporter.Export(target, records); err != nil {
			return fmt.Errorf("export %s/%s: %w", target.Product, target.Subtype, err)
		}
	}

	c.logger.Info().
		Str("product", target.Product).
		Str("subtype", target.Subtype).
		Int("records", len(records)).
		Msg(label + " Data Ready.")
	return nil
}

// target builds the export target for kind.
func target(kind product.Kind, loc product.LocationType) export.Target {
	e := kind.Endpoint()
	t := export.Target{Product: e.Product, Subtype: e.Subtype}
	if e.Mode == product.LocationRequired {
		t.LocationType = string(loc)
	}
	return t
}

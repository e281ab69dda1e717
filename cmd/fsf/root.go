package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/fsf-client/internal/config"
	"github.com/Sternrassler/fsf-client/pkg/client"
	"github.com/Sternrassler/fsf-client/pkg/fsf"
	"github.com/Sternrassler/fsf-client/pkg/logging"
	"github.com/Sternrassler/fsf-client/pkg/product"
	"github.com/Sternrassler/fsf-client/pkg/search"
)

// app carries the state built by the root command for its subcommands.
type app struct {
	v        *viper.Viper
	settings config.Settings
}

func newRootCommand() *cobra.Command {
	return newApp().command()
}

func newApp() *app {
	return &app{v: config.New()}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "fsf",
		Short:         "First Street Foundation flood risk API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.CheckErr(config.BindFlags(a.v, root.PersistentFlags()))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(a.v)
		if err != nil {
			return err
		}
		a.settings = s
		logging.Setup(s.LoggingConfig())
		return nil
	}

	products := map[string]*cobra.Command{
		"adaptation":  {Use: "adaptation", Short: "Flood adaptation projects"},
		"probability": {Use: "probability", Short: "Flood probability and depth"},
	}
	for _, q := range fsf.Queries() {
		parent, ok := products[q.Product]
		if !ok {
			continue
		}
		parent.AddCommand(a.queryCommand(q))
	}
	root.AddCommand(products["adaptation"], products["probability"])

	return root
}

// queryFlags are the per-lookup flags.
type queryFlags struct {
	search       []string
	file         string
	locationType string
	csv          bool
	outputDir    string
	limit        int
}

func (a *app) queryCommand(q fsf.Query) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   q.Subtype,
		Short: fmt.Sprintf("Look up %s %s data", q.Product, q.Subtype),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, q, f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.search, "search", "s", nil, "FSID, \"lat,lng\" or address (repeatable)")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "File with one search item per line")
	cmd.Flags().BoolVar(&f.csv, "csv", false, "Also write the records to a CSV file")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "CSV output directory (default output_data)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Search items per request (default: --batch-size)")
	cmd.MarkFlagsMutuallyExclusive("search", "file")
	cmd.MarkFlagsOneRequired("search", "file")

	if q.NeedsLocation {
		cmd.Flags().StringVarP(&f.locationType, "location-type", "l", "", "Location type: property, neighborhood, city, zcta, tract, county, cd, state")
		_ = cmd.MarkFlagRequired("location-type")
	}

	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, q fsf.Query, f queryFlags) error {
	var input any = f.search
	if f.file != "" {
		input = search.File(f.file)
	}

	var loc product.LocationType
	if q.NeedsLocation {
		var err error
		if loc, err = product.ParseLocationType(f.locationType); err != nil {
			return err
		}
	}

	rdb, err := connectRedis(cmd.Context(), a.settings)
	if err != nil {
		return err
	}

	api, closeAPI, err := newAPI(a.settings.ClientConfig(rdb))
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return err
	}
	defer closeAPI()

	result, err := api.Run(cmd.Context(), q, input, loc, fsf.Options{
		CSV:       f.csv,
		OutputDir: f.outputDir,
		Limit:     f.limit,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// newAPI builds a client and the facades on top of it.
func newAPI(cfg client.Config) (*fsf.API, func(), error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return fsf.New(c), func() {
		c.Close()
		if cfg.Redis != nil {
			cfg.Redis.Close()
		}
	}, nil
}

// connectRedis opens and pings the configured Redis, if any.
func connectRedis(ctx context.Context, s config.Settings) (*redis.Client, error) {
	opts, err := s.RedisOptions()
	if err != nil || opts == nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

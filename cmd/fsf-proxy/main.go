// Command fsf-proxy serves First Street lookups over HTTP, sharing one
// client (and optionally one Redis cache and quota state) across callers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Sternrassler/fsf-client/internal/config"
	"github.com/Sternrassler/fsf-client/pkg/client"
	"github.com/Sternrassler/fsf-client/pkg/fsf"
	"github.com/Sternrassler/fsf-client/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("fsf-proxy failed")
	}
}

func run() error {
	_ = godotenv.Load()

	v := config.New()
	fs := pflag.NewFlagSet("fsf-proxy", pflag.ExitOnError)
	addr := fs.String("addr", ":8080", "Listen address")
	if err := config.BindFlags(v, fs); err != nil {
		return err
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	settings, err := config.Load(v)
	if err != nil {
		return err
	}
	logging.Setup(settings.LoggingConfig())
	logger := logging.NewLogger("fsf-proxy")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	opts, err := settings.RedisOptions()
	if err != nil {
		return err
	}
	if opts != nil {
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	}

	c, err := client.New(settings.ClientConfig(rdb))
	if err != nil {
		return fmt.Errorf("create FSF client: %w", err)
	}
	defer c.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(fsf.New(c), rdb),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", *addr).Msg("Starting FSF proxy server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down FSF proxy server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

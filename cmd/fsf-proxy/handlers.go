package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
	"github.com/Sternrassler/fsf-client/pkg/client"
	"github.com/Sternrassler/fsf-client/pkg/fsf"
	"github.com/Sternrassler/fsf-client/pkg/metrics"
	"github.com/Sternrassler/fsf-client/pkg/product"
)

// readyTimeout bounds the Redis ping of the readiness check.
const readyTimeout = 2 * time.Second

func newMux(api *fsf.API, rdb *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(rdb))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /v1/{product}/{subtype}", lookupHandler(api))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports 503 while the configured Redis is unreachable.
func readyHandler(rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// lookupHandler serves GET /v1/{product}/{subtype}?search=..&location_type=..
// with the mapped records as JSON.
func lookupHandler(api *fsf.API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := fsf.FindQuery(r.PathValue("product"), r.PathValue("subtype"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		params := r.URL.Query()

		var loc product.LocationType
		if q.NeedsLocation {
			if loc, err = product.ParseLocationType(params.Get("location_type")); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}

		var opts fsf.Options
		if s := params.Get("limit"); s != "" {
			if opts.Limit, err = strconv.Atoi(s); err != nil || opts.Limit <= 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: limit must be a positive integer", apierrors.ErrInvalidArgument))
				return
			}
		}

		result, err := api.Run(r.Context(), q, params["search"], loc, opts)
		if err != nil {
			status := statusFor(err)
			log.Warn().
				Err(err).
				Str("query", q.String()).
				Int("status_code", status).
				Msg("Lookup failed")
			writeError(w, status, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Error().Err(err).Msg("Failed to write response")
		}
	}
}

// statusFor maps a lookup error to the proxy's response status.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, apierrors.ErrInvalidArgument), errors.Is(err, apierrors.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr) && apiErr.ErrorClass == client.ErrorClassRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

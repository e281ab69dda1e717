// Package config loads fsf and fsf-proxy settings from flags, FSF_*
// environment variables and an optional config file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
	"github.com/Sternrassler/fsf-client/pkg/client"
	"github.com/Sternrassler/fsf-client/pkg/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. FSF_API_KEY.
const EnvPrefix = "FSF"

// Setting keys. Flags carry the same names; environment variables use
// EnvPrefix and underscores.
const (
	KeyConfig      = "config"
	KeyAPIKey      = "api-key"
	KeyBaseURL     = "base-url"
	KeyRedisURL    = "redis-url"
	KeyRateLimit   = "rate-limit"
	KeyBatchSize   = "batch-size"
	KeyConcurrency = "concurrency"
	KeyTimeout     = "timeout"
	KeyMaxRetries  = "max-retries"
	KeyMemoryCache = "memory-cache-ttl"
	KeyLogLevel    = "log-level"
	KeyLogPretty   = "log-pretty"
)

// Settings are the resolved values shared by the CLI and the proxy.
type Settings struct {
	APIKey      string
	BaseURL     string
	RedisURL    string
	RateLimit   int
	BatchSize   int
	Concurrency int
	Timeout     time.Duration
	MaxRetries  int
	MemoryCache time.Duration
	LogLevel    logging.LogLevel
	LogPretty   bool
}

// New returns a viper instance reading FSF_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags registers the shared flags on fs and binds them to v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	defaults := client.DefaultConfig("")

	fs.String(KeyConfig, "", "Config file (yaml, json or toml)")
	fs.String(KeyAPIKey, "", "First Street API key")
	fs.String(KeyBaseURL, defaults.BaseURL, "API base URL")
	fs.String(KeyRedisURL, "", "Redis address or redis:// URL for the shared cache and quota state")
	fs.Int(KeyRateLimit, defaults.RateLimit, "Client-side requests per second (0 disables pacing)")
	fs.Int(KeyBatchSize, defaults.BatchSize, "Search items per request")
	fs.Int(KeyConcurrency, defaults.MaxConcurrency, "Parallel batch requests")
	fs.Duration(KeyTimeout, defaults.Timeout, "Per-request HTTP timeout")
	fs.Int(KeyMaxRetries, defaults.MaxRetries, "Retries for server, rate limit and network errors")
	fs.Duration(KeyMemoryCache, defaults.MemoryCacheTTL, "In-process response cache TTL (0 disables)")
	fs.String(KeyLogLevel, string(logging.LevelInfo), "Log level: debug, info, warn, error")
	fs.Bool(KeyLogPretty, false, "Human-readable console logs")

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Load reads the optional config file and resolves Settings.
func Load(v *viper.Viper) (Settings, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var errs []error
	getInt := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", apierrors.ErrInvalidType, key, err))
		}
		return n
	}
	getDuration := func(key string) time.Duration {
		d, err := cast.ToDurationE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", apierrors.ErrInvalidType, key, err))
		}
		return d
	}

	s := Settings{
		APIKey:      strings.TrimSpace(v.GetString(KeyAPIKey)),
		BaseURL:     v.GetString(KeyBaseURL),
		RedisURL:    v.GetString(KeyRedisURL),
		RateLimit:   getInt(KeyRateLimit),
		BatchSize:   getInt(KeyBatchSize),
		Concurrency: getInt(KeyConcurrency),
		Timeout:     getDuration(KeyTimeout),
		MaxRetries:  getInt(KeyMaxRetries),
		MemoryCache: getDuration(KeyMemoryCache),
		LogLevel:    logging.LogLevel(v.GetString(KeyLogLevel)),
		LogPretty:   v.GetBool(KeyLogPretty),
	}

	if _, err := logging.ParseLevel(string(s.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", apierrors.ErrInvalidArgument, err))
	}

	if err := errors.Join(errs...); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// ClientConfig converts s into a client configuration. redisClient may be nil.
func (s Settings) ClientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	cfg.Redis = redisClient
	cfg.RateLimit = s.RateLimit
	cfg.BatchSize = s.BatchSize
	cfg.MaxConcurrency = s.Concurrency
	cfg.MaxRetries = s.MaxRetries
	cfg.MemoryCacheTTL = s.MemoryCache
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	return cfg
}

// RedisOptions parses RedisURL, which is either a redis:// URL or a bare
// host:port address. It returns nil when no Redis is configured.
func (s Settings) RedisOptions() (*redis.Options, error) {
	if s.RedisURL == "" {
		return nil, nil
	}
	if strings.Contains(s.RedisURL, "://") {
		opts, err := redis.ParseURL(s.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: s.RedisURL}, nil
}

// LoggingConfig converts s into a logger configuration.
func (s Settings) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = s.LogLevel
	cfg.Pretty = s.LogPretty
	return cfg
}

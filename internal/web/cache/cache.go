// Package cache stores rendered API responses in memory or Redis and serves
// them with ETag revalidation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value from the cache. A missing or expired key returns
	// ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache. A zero ttl uses the backend default,
	// a negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every value under the backend's prefix
	Clear(ctx context.Context) error

	Close() error
}

// ErrCacheMiss is returned when a key is not found in the cache
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func missError(key string) error {
	return fmt.Errorf("%w: %s", ErrCacheMiss, key)
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// CacheConfig holds common configuration for cache backends
type CacheConfig struct {
	// DefaultTTL is the default time-to-live for cached items
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "partytracker:",
	}
}

// Options selects and configures a backend for New
type Options struct {
	Backend string
	TTL     time.Duration
	Redis   RedisConfig
}

// New creates the cache backend named by opts.Backend. The redis backend is
// pinged so a bad address fails at startup.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := DefaultCacheConfig()
	if opts.TTL > 0 {
		cfg.DefaultTTL = opts.TTL
	}

	switch opts.Backend {
	case BackendMemory, "":
		logger.Info("using in-memory response cache", zap.Duration("ttl", cfg.DefaultTTL))
		return NewMemoryCacheWithConfig(cfg), nil
	case BackendRedis:
		rc := opts.Redis
		rc.CacheConfig = cfg
		c, err := NewRedisCacheWithConfig(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Info("using redis response cache",
			zap.String("addr", rc.Addr),
			zap.Int("db", rc.DB),
			zap.Duration("ttl", cfg.DefaultTTL),
		)
		return c, nil
	case BackendNone:
		logger.Info("response cache disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Noop is a Cache that stores nothing. Every Get is a miss.
type Noop struct{}

func (Noop) Get(_ context.Context, key string) ([]byte, error) { return nil, missError(key) }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Clear(context.Context) error { return nil }

func (Noop) Close() error { return nil }

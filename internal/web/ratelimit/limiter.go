// Package ratelimit counts /api requests per client and decides whether the
// next one is allowed. Limits are per key, usually the client address.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Limiter decides whether a request for key is allowed
type Limiter interface {
	// Allow consumes one request for key and reports the resulting state.
	Allow(ctx context.Context, key string) (*Info, error)
	Close() error
}

// Info describes the limit state after an Allow call
type Info struct {
	// Limit is the number of requests allowed per window
	Limit int
	// Remaining is how many more requests the key may make now
	Remaining int
	// ResetAt is when at least one more request becomes available
	ResetAt time.Time
	Allowed bool
}

// RetryAfter returns how long a denied client should wait, rounded up to
// whole seconds and never less than one.
func (i *Info) RetryAfter(now time.Time) time.Duration {
	wait := i.ResetAt.Sub(now)
	if wait <= time.Second {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a backend for New
type Options struct {
	Backend  string
	Requests int
	Window   time.Duration
	Redis    RedisConfig
}

// New creates the limiter named by opts.Backend. The redis backend is
// pinged so a bad address fails at startup.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Limiter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Requests <= 0 || opts.Window <= 0 {
		return nil, fmt.Errorf("rate limit needs positive requests and window, got %d per %s", opts.Requests, opts.Window)
	}

	switch opts.Backend {
	case BackendMemory, "":
		logger.Info("using in-memory rate limiter",
			zap.Int("requests", opts.Requests),
			zap.Duration("window", opts.Window),
		)
		return NewTokenBucket(TokenBucketConfig{
			Capacity:        opts.Requests,
			Window:          opts.Window,
			CleanupInterval: 5 * opts.Window,
		}), nil
	case BackendRedis:
		rc := opts.Redis
		rc.Limit = opts.Requests
		rc.Window = opts.Window
		l, err := NewRedisLimiterWithConfig(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Info("using redis rate limiter",
			zap.String("addr", rc.Addr),
			zap.Int("requests", opts.Requests),
			zap.Duration("window", opts.Window),
		)
		return l, nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", opts.Backend)
	}
}

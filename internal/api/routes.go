package api

import (
	"time"

	"go.uber.org/zap"

	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/internal/web/cache"
	"github.com/partytracker/partytracker/internal/web/middleware"
	"github.com/partytracker/partytracker/internal/web/profiling"
	"github.com/partytracker/partytracker/internal/web/ratelimit"
	"github.com/partytracker/partytracker/internal/web/router"
	"github.com/partytracker/partytracker/internal/web/static"
)

// Options configures NewRouter
type Options struct {
	Logger *zap.Logger

	// Cache stores /api responses. Nil disables caching, but responses still
	// carry ETags.
	Cache    cache.Cache
	CacheTTL time.Duration

	// RateLimiter limits /api requests per client address. Nil disables
	// limiting.
	RateLimiter ratelimit.Limiter
	// TrustProxy keys rate limits by forwarding headers rather than the
	// connection address.
	TrustProxy bool

	// Profiling mounts /debug/pprof.
	Profiling bool

	// StaticDir is the built web client. Ignored in Dev mode, where the
	// client runs its own dev server and only the API is served.
	StaticDir string
	Dev       bool
}

// NewRouter builds the full HTTP surface:
//
//	GET /healthz
//	GET /api/input/schema
//	GET /api/types
//	GET /api/types/{name}
//	GET /debug/pprof/*     (if Profiling)
//	GET /assets/*          (unless Dev)
//	GET /*  -> index.html  (unless Dev)
func NewRouter(service *inputschema.Service, opts Options) (*router.Router, error) {
	h, err := NewHandler(service)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := opts.Cache
	if c == nil {
		c = cache.Noop{}
	}

	r := router.NewRouter()
	r.Use(middleware.Standard(logger).Middlewares()...)

	r.Get("/healthz", Health)

	cacheConfig := cache.DefaultMiddlewareConfig(c)
	cacheConfig.TTL = opts.CacheTTL
	r.Group("/api", func(api *router.Router) {
		if opts.RateLimiter != nil {
			limitConfig := middleware.DefaultRateLimitConfig(opts.RateLimiter)
			if opts.TrustProxy {
				limitConfig.KeyFunc = middleware.ForwardedClientIP
			}
			api.Use(middleware.RateLimitWithConfig(limitConfig))
		}
		api.Use(cache.Middleware(cacheConfig))
		api.Get("/input/schema", h.InputSchema)
		api.Get("/types", h.Types)
		api.Get("/types/{name}", h.Type)
	})

	if opts.Profiling {
		profiling.Mount(r, profiling.Config{})
		logger.Warn("profiling endpoints enabled", zap.String("prefix", profiling.Prefix))
	}

	if !opts.Dev {
		cfg := static.DefaultConfig(opts.StaticDir)
		if err := cfg.Validate(); err != nil {
			// Serve the API anyway; client routes answer 404 until the
			// client is built.
			logger.Warn("web client not found, serving API only", zap.Error(err))
		}
		static.Mount(r, cfg)
	}

	return r, nil
}

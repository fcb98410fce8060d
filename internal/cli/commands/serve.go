package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partytracker/partytracker/internal/api"
	"github.com/partytracker/partytracker/internal/cli/config"
	"github.com/partytracker/partytracker/internal/editions"
	"github.com/partytracker/partytracker/internal/inputschema"
	"github.com/partytracker/partytracker/internal/web/cache"
	"github.com/partytracker/partytracker/internal/web/ratelimit"
	"github.com/partytracker/partytracker/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web client",
		Long: `Serve the input schema API and, unless --dev is set, the built web client.

The declaration file is compiled before the server starts; any declaration
error aborts startup. SIGINT or SIGTERM drains in-flight requests and exits.`,
		Example: `  partytracker serve
  partytracker serve -a 0.0.0.0 -p 8081 --static-dir ./client/dist
  partytracker serve --dev --schema editions.rs.decl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, shutdown, err := buildServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return shutdown.Run(ctx)
		},
	}

	// Defaults mirror config.New so --help shows real values.
	cmd.Flags().StringP("addr", "a", "127.0.0.1", "IP address to bind")
	cmd.Flags().IntP("port", "p", 8081, "Port to listen on")
	cmd.Flags().String("static-dir", "../client/dist", "Directory of the built web client")
	cmd.Flags().Bool("dev", false, "Serve the API only; the client runs its own dev server")
	cmd.Flags().Bool("pprof", false, "Mount profiling endpoints under /debug/pprof")

	bindFlags(opts.viper, cmd.Flags().Lookup, map[string]string{
		"server.host":       "addr",
		"server.port":       "port",
		"server.static_dir": "static-dir",
		"server.dev":        "dev",
		"server.pprof":      "pprof",
	})

	return cmd
}

// buildServer compiles the declarations and wires the HTTP stack. Nothing
// listens until the returned GracefulShutdown runs.
func buildServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server.Server, *server.GracefulShutdown, error) {
	registry, err := editions.Load(cfg.Schema.File)
	if err != nil {
		return nil, nil, err
	}

	svc, err := inputschema.NewService(registry, cfg.Schema.Root, logger)
	if err != nil {
		return nil, nil, err
	}

	source := cfg.Schema.File
	if source == "" {
		source = "built-in"
	}
	logger.Info("declarations loaded",
		zap.String("source", source),
		zap.Int("types", registry.Len()),
		zap.String("root", cfg.Schema.Root),
		zap.Int("schema_entries", svc.GetInputSchema().Len()),
	)

	responses, err := cache.New(ctx, cache.Options{
		Backend: cfg.Cache.Backend,
		TTL:     cfg.Cache.TTL,
		Redis: cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	closers := []func() error{responses.Close}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(ctx, ratelimit.Options{
			Backend:  cfg.RateLimit.Backend,
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			Redis: ratelimit.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		}, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, limiter.Close)
	}

	router, err := api.NewRouter(svc, api.Options{
		Logger:      logger,
		Cache:       responses,
		CacheTTL:    cfg.Cache.TTL,
		RateLimiter: limiter,
		TrustProxy:  cfg.RateLimit.TrustProxy,
		Profiling:   cfg.Server.Pprof,
		StaticDir:   cfg.Server.StaticDir,
		Dev:         cfg.Server.Dev,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	serverConfig := server.DefaultConfig(router)
	serverConfig.Address = cfg.Server.Addr()
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout

	srv, err := server.New(serverConfig)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	shutdown := server.NewGracefulShutdown(srv, cfg.Server.ShutdownTimeout, logger)
	shutdown.RegisterHook("response cache", func(context.Context) error {
		return responses.Close()
	})
	if limiter != nil {
		shutdown.RegisterHook("rate limiter", func(context.Context) error {
			return limiter.Close()
		})
	}

	if cfg.Server.Dev {
		logger.Info("development mode, web client not served")
	}
	return srv, shutdown, nil
}

package commands

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/partytracker/partytracker/internal/cli/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			Dev:             true,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Schema: config.SchemaConfig{Root: "MarioPartyData"},
		Cache:  config.CacheConfig{Backend: "memory", TTL: time.Minute},
		Log:    config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestServeFlagsBindToConfig(t *testing.T) {
	opts := NewGlobalOptions()
	root := newRootCommand(opts)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.Flags().Set("addr", "0.0.0.0"))
	require.NoError(t, serve.Flags().Set("port", "9090"))
	require.NoError(t, serve.Flags().Set("dev", "true"))
	require.NoError(t, serve.Flags().Set("static-dir", "/srv/client"))
	require.NoError(t, serve.Flags().Set("pprof", "true"))

	cfg, err := opts.Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, "/srv/client", cfg.Server.StaticDir)
	assert.True(t, cfg.Server.Pprof)
}

func TestServeDefaults(t *testing.T) {
	cfg, err := NewGlobalOptions().Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8081", cfg.Server.Addr())
	assert.Equal(t, "../client/dist", cfg.Server.StaticDir)
	assert.False(t, cfg.Server.Dev)
}

func TestBuildServerServesAndShutsDown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, shutdown, err := buildServer(ctx, testConfig(), logger)
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	done := make(chan error, 1)
	go func() { done <- shutdown.Run(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/api/input/schema")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), `{"Mario Party":[`), string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	loaded := logs.FilterMessage("declarations loaded").All()
	require.Len(t, loaded, 1)
	fields := loaded[0].ContextMap()
	assert.Equal(t, "built-in", fields["source"])
	assert.EqualValues(t, 17, fields["types"])
	assert.EqualValues(t, 16, fields["schema_entries"])
	assert.Equal(t, 1, logs.FilterMessage("server stopped").Len())
}

func TestBuildServerWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Cache.Backend = "redis"
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	srv, shutdown, err := buildServer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, srv)
	require.NoError(t, shutdown.Shutdown())
}

func TestBuildServerWithRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Backend: "redis", Requests: 1, Window: time.Minute}
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	srv, shutdown, err := buildServer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, srv.Listen())
	t.Cleanup(func() { _ = shutdown.Shutdown() })

	go func() { _ = srv.Serve() }()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get("http://" + srv.Addr() + "/api/types")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Len(t, mr.Keys(), 1)
}

func TestBuildServerErrors(t *testing.T) {
	t.Run("unknown root", func(t *testing.T) {
		cfg := testConfig()
		cfg.Schema.Root = "Missing"

		_, _, err := buildServer(context.Background(), cfg, zap.NewNop())
		assert.ErrorContains(t, err, "describe input schema root")
	})

	t.Run("declaration errors", func(t *testing.T) {
		cfg := testConfig()
		cfg.Schema.File = writeFile(t, "bad.rs.decl", "struct A { x: i32, x: i32 }")

		_, _, err := buildServer(context.Background(), cfg, zap.NewNop())
		assert.ErrorContains(t, err, "DCL202")
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.Backend = "redis"
		cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}

		_, _, err := buildServer(context.Background(), cfg, zap.NewNop())
		assert.ErrorContains(t, err, "connect to redis")
	})

	t.Run("unreachable redis rate limiter", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, Backend: "redis", Requests: 1, Window: time.Minute}
		cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}

		_, _, err := buildServer(context.Background(), cfg, zap.NewNop())
		assert.ErrorContains(t, err, "connect to redis")
	})
}

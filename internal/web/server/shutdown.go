package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GracefulShutdown runs a server until its context ends, then drains
// connections and runs cleanup hooks.
type GracefulShutdown struct {
	server        *Server
	timeout       time.Duration
	logger        *zap.Logger
	mu            sync.Mutex
	shutdownHooks []namedHook
	shutdownOnce  sync.Once
	shutdownChan  chan struct{}
	shutdownError error
}

// ShutdownHook is a function called during graceful shutdown
type ShutdownHook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   ShutdownHook
}

// NewGracefulShutdown creates a shutdown handler. A non-positive timeout
// defaults to 30 seconds.
func NewGracefulShutdown(server *Server, timeout time.Duration, logger *zap.Logger) *GracefulShutdown {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GracefulShutdown{
		server:       server,
		timeout:      timeout,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// RegisterHook registers a hook run after the server stops accepting
// requests. Hooks run in registration order.
func (gs *GracefulShutdown) RegisterHook(name string, hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdownHooks = append(gs.shutdownHooks, namedHook{name: name, fn: hook})
}

// Run serves until ctx is done, typically from signal.NotifyContext, and
// then shuts down. A listen or serve failure is returned without waiting
// for ctx; hooks still run.
func (gs *GracefulShutdown) Run(ctx context.Context) error {
	if err := gs.server.Listen(); err != nil {
		_ = gs.Shutdown()
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		gs.logger.Info("server listening", zap.String("addr", gs.server.Addr()))
		if err := gs.server.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		gs.logger.Info("shutdown signal received, shutting down gracefully")
		return gs.Shutdown()
	case err := <-errChan:
		_ = gs.Shutdown()
		return err
	}
}

// Shutdown stops the server and runs the hooks once. Concurrent and repeated
// calls wait for the first and return its result.
func (gs *GracefulShutdown) Shutdown() error {
	gs.shutdownOnce.Do(func() {
		defer close(gs.shutdownChan)

		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownError = fmt.Errorf("server shutdown error: %w", err)
			gs.logger.Error("server shutdown failed", zap.Error(err))
		}

		gs.mu.Lock()
		hooks := make([]namedHook, len(gs.shutdownHooks))
		copy(hooks, gs.shutdownHooks)
		gs.mu.Unlock()

		for _, hook := range hooks {
			// A failing hook must not keep the rest from running
			if err := hook.fn(ctx); err != nil {
				gs.logger.Warn("shutdown hook failed", zap.String("hook", hook.name), zap.Error(err))
			}
		}

		if gs.shutdownError == nil {
			gs.logger.Info("server stopped")
		}
	})

	<-gs.shutdownChan
	return gs.shutdownError
}

// Done is closed once shutdown has completed
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.shutdownChan
}

// Package server assembles the application runtime: background workers plus
// the HTTP API, with coordinated shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pkgcache "MarketPulse/pkg/cache"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

// Worker is a long-running background task that stops when its context is
// cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// App owns the process lifecycle.
type App struct {
	httpServer      *xhttp.Server
	workers         []Worker
	cache           pkgcache.Service
	log             *logger.Logger
	shutdownTimeout time.Duration
}

// NewApp assembles the runtime.
func NewApp(
	httpServer *xhttp.Server,
	workers []Worker,
	cache pkgcache.Service,
	log *logger.Logger,
	shutdownTimeout time.Duration,
) *App {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		httpServer:      httpServer,
		workers:         workers,
		cache:           cache,
		log:             log.With("app"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts the workers and the HTTP server, then blocks until SIGINT or
// SIGTERM and shuts everything down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, w := range a.workers {
		go w.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.log.Info("started")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		a.log.Error("http server failed", logger.Error(runErr))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown failed", logger.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Error("cache close failed", logger.Error(err))
		}
	}
	a.log.Info("stopped")
	return runErr
}

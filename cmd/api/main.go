// Command api is the milestone dispatcher invocation server.
//
// It serves POST /invoke for the three invocation modes, health checks and
// prometheus metrics. With SCHEDULER_ENABLED=true it also runs the dispatch
// every hour.
//
// Usage:
//
//	milestone-api
//	API_PORT=8080 SCHEDULER_ENABLED=true milestone-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/api"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/app"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/config"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/invoke"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/logging"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/scheduler"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	logger, closer := logging.New(logging.OptionsFromEnv())
	slog.SetDefault(logger)

	err := run(logger)
	closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return err
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, app.Options{}, logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		return err
	}
	defer a.Close()

	svc := invoke.Serialized(a.Dispatcher)
	router := api.NewRouter(api.Deps{
		Invoker: invoke.NewHandler(svc, logger),
		DB:      a.Pool,
		Metrics: a.Metrics.Handler(),
	})

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Minute, // a full dispatch can run for minutes
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting milestone dispatcher API",
			"addr", addr,
			"environment", cfg.Environment,
			"scheduler", cfg.SchedulerEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if cfg.SchedulerEnabled {
		g.Go(func() error {
			scheduler.Start(gctx, scheduler.DefaultConfig(), func(ctx context.Context) {
				if _, err := svc.Run(ctx); err != nil {
					logger.Error("Scheduled dispatch failed", "error", err)
				}
			}, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}

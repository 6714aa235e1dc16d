// Command api is the Scoracle Ingest control server. It starts imports in
// the background and reports their progress.
//
// Usage:
//
//	scoracle-ingest-api
//	API_PORT=8080 SINK=memory scoracle-ingest-api

// @title Scoracle Ingest API
// @version 1.0.0
// @description Starts and inspects multi-sport imports (NFL, CFB, NBA, MLB, NHL, PGA golf) from public sports feeds into per-sport tables.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-ingest/internal/api"
	"github.com/albapepper/scoracle-ingest/internal/config"
	"github.com/albapepper/scoracle-ingest/internal/pipeline"
	"github.com/albapepper/scoracle-ingest/internal/runs"

	_ "github.com/albapepper/scoracle-ingest/docs" // swagger docs
)

// retainedRuns bounds the finished runs kept for GET /runs.
const retainedRuns = 100

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Open sink and publisher
	p, err := pipeline.Open(ctx, cfg, pipeline.Options{Logger: logger})
	if err != nil {
		logger.Error("Failed to open pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	tracker := runs.NewTracker(p, retainedRuns, logger)

	// Create router
	router := api.NewRouter(tracker, p.Registry(), p.Pool(), cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Ingest API",
			"addr", addr,
			"environment", cfg.Environment,
			"sink", cfg.Sink,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout: stop accepting requests, then cancel
	// and drain active runs.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := tracker.Shutdown(shutdownCtx); err != nil {
		logger.Error("Runs did not stop in time", "error", err)
	}
	logger.Info("Server stopped")
}

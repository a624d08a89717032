/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Billing Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (.env honored in dev)
  2. Initialize structured logging
  3. Initialize SQLite store
  4. Wire services and API handler
  5. Start server with graceful shutdown

ENVIRONMENT:
  PORT          HTTP server port (default: 8080)
  DB_PATH       SQLite database path (default: billing.db)
                Use ":memory:" for in-memory database
  LOG_LEVEL     debug|info|warn|error (default: info)
  LOG_FORMAT    console|json (default: console)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (configurable timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  DB_PATH=./data/billing.db ./server

  # Run with in-memory database
  DB_PATH=:memory: ./server

  # Run on different port
  PORT=3000 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/billing-engine/api"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/config"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/logging"
	"github.com/warp/billing-engine/store/sqlite"
	"github.com/warp/billing-engine/workplan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Initialize(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Sugar

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatalw("Failed to initialize database", "path", cfg.DB.Path, "error", err)
	}
	defer store.Close()

	// Wire services
	clock := billing.SystemClock()
	invoices := invoicing.NewService(store, store, clock)
	work := workplan.NewService(store, invoices, clock)

	// Ensure the invoice sequence exists so issuing works out of the box.
	ctx := context.Background()
	if _, err := store.GetSequence(ctx, invoicing.SequenceInvoices); billing.IsNotFound(err) {
		err = store.PutSequence(ctx, invoicing.SequenceInvoices, billing.SequenceConfig{
			Prefix: "INV", Width: 6, ZeroPad: true, NextNumber: 1,
		})
		if err != nil {
			log.Fatalw("Failed to seed invoice sequence", "error", err)
		}
		log.Infow("Seeded default invoice sequence", "key", invoicing.SequenceInvoices)
	}

	handler := api.NewHandler(invoices, work, store, clock, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("Server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.App.Port))
		log.Infow("API available", "addr", fmt.Sprintf("http://localhost:%d/api", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}

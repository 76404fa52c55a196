/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fleet scheduling engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Load configuration (defaults, optional YAML file, SCHED_ env vars)
  3. Build the zap logger
  4. Open the SQLite store
  5. Wire the availability, override, and overtime services
  6. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)

CONFIGURATION:
  Everything else comes from config defaults and SCHED_-prefixed
  environment variables, e.g. SCHED_SERVER_PORT=3000,
  SCHED_DATABASE_PATH=":memory:", SCHED_LOG_FORMAT=console.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fleetops/scheduling-engine/api"
	"github.com/fleetops/scheduling-engine/config"
	"github.com/fleetops/scheduling-engine/logging"
	"github.com/fleetops/scheduling-engine/schedule"
	"github.com/fleetops/scheduling-engine/store/sqlite"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	policy := schedule.OvertimePolicy{
		DefaultDailyHours: decimal.NewFromFloat(cfg.Overtime.DefaultDailyHours),
		CeilingHours:      decimal.NewFromFloat(cfg.Overtime.CeilingHours),
	}

	availability := schedule.NewAvailability(store, store, store, store, logger)
	overrides := schedule.NewOverrides(store, store, store, logger)
	overtime := schedule.NewOvertime(store, store, store, policy, logger)

	handler := api.NewHandler(store, availability, overrides, overtime, logger)
	router := api.NewRouter(handler, cfg.Server.AllowOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

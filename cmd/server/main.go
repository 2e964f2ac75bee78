/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pallet engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Seed default partner configurations
  4. Create API handler, router and background auditor
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags win over environment variables; environment wins over defaults.
  -port / PORT                    HTTP server port (default: 8080)
  -db / DATABASE_PATH             SQLite path (default: pallets.db,
                                  ":memory:" for in-memory)
  -audit-interval / AUDIT_INTERVAL  Consistency audit interval
                                  (default: 15m, "0" disables)
  LOG_LEVEL                       logrus level (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the auditor and close the database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/auditor.go: Background consistency audit
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/depotline/pallet-engine/api"
	"github.com/depotline/pallet-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and real environment variables win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "pallets.db"), "SQLite database path")
	auditInterval := flag.Duration("audit-interval", envDuration("AUDIT_INTERVAL", 15*time.Minute),
		"consistency audit interval (0 disables)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(envStr("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Default partner configurations; saving is an upsert, safe on reboot.
	if err := api.SeedDefaultPartners(context.Background(), store); err != nil {
		log.WithError(err).Warn("failed to seed default partners")
	}

	handler := api.NewHandler(store, log)
	router := api.NewRouter(handler)

	var auditor *api.Auditor
	if *auditInterval > 0 {
		auditor = api.NewAuditor(store, log, *auditInterval)
		auditor.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": server.Addr,
			"db":   *dbPath,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if auditor != nil {
		auditor.Stop()
	}

	log.Info("server stopped")
}

// =============================================================================
// ENVIRONMENT HELPERS
// =============================================================================

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

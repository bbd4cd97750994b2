/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Load the engine configuration (rotation, quotas, members)
  4. Wire the coordinator and the nightly ledger auditor
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (env fallback in parentheses):
  -port     HTTP server port (PORT, default: 8080)
  -db       SQLite database path (DB_PATH, default: roster.db)
            Use ":memory:" for an in-memory database
  -config   Engine configuration JSON (CONFIG_PATH); when omitted the
            built-in demo configuration is used
  -seed     Load the demo squad with starting balances on boot

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the auditor and close the database
  4. Exit

EXAMPLES:
  # Run with the demo configuration and seed data
  ./server -db=":memory:" -seed

  # Run with a unit's real configuration
  ./server -db="./data/roster.db" -config="./config/unit.json"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/config.go: Configuration schema
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
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/escala/roster-engine/api"
	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/factory"
	"github.com/escala/roster-engine/pricing"
	"github.com/escala/roster-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override env.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "roster.db"), "SQLite database path")
	configPath := flag.String("config", envStr("CONFIG_PATH", ""), "engine configuration JSON")
	seed := flag.Bool("seed", false, "load the demo squad on boot")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Engine configuration
	var cfg *factory.EngineConfig
	if *configPath != "" {
		cfg, err = factory.LoadConfigFile(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load configuration")
		}
		log.WithField("path", *configPath).Info("configuration loaded")
	} else {
		cfg, err = api.DefaultConfig().Build()
		if err != nil {
			log.WithError(err).Fatal("failed to build default configuration")
		}
		log.Info("using built-in demo configuration")
	}

	ctx := context.Background()
	if err := api.ApplyConfig(ctx, store, cfg); err != nil {
		log.WithError(err).Fatal("failed to apply configuration")
	}

	// Engine wiring. The store doubles as the member directory, the
	// holiday calendar, and the blocked-date registry.
	pricer := pricing.NewEngine(store)
	coordinator := credit.NewCoordinator(store, store, cfg.Cycle, pricer, store, cfg.Quotas)

	if *seed {
		if err := api.SeedDemo(ctx, store, coordinator); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
		log.Info("demo squad seeded")
	}

	// Nightly ledger audit
	auditor := api.NewAuditor(store, store, log)
	if err := auditor.Start(); err != nil {
		log.WithError(err).Fatal("failed to start auditor")
	}
	defer auditor.Stop()

	// HTTP server
	handler := api.NewHandler(store, coordinator, auditor, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the benefit tracking engine server. Handles
  configuration, dependency injection, the load-time reset pass, and
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Build the tracker and run the load-time reset pass
  4. Configure HTTP router and daily scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: benefits.db, env DATABASE_PATH)
           Use ":memory:" for an in-memory database
  -log     Log level: debug, info, warn, error (default: info, env LOG_LEVEL)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/benefits.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Daily reset pass
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

	"github.com/warp/benefit-engine/api"
	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/store/sqlite"
	"github.com/warp/benefit-engine/tracker"
)

func main() {
	// .env is optional; flags beat env, env beats defaults.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "benefits.db"), "SQLite database path")
	logLevel := flag.String("log", envStr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.Parse()

	log := logrus.New()
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Build the tracker and run the load-time reset pass.
	trk := tracker.New(store, log)
	today := cycle.FromTime(time.Now().UTC())
	result, err := trk.Load(context.Background(), today)
	if err != nil {
		log.WithError(err).Fatal("failed to load records")
	}
	if result.Changed() || len(result.Pending) > 0 {
		log.WithFields(logrus.Fields{
			"auto_claimed": len(result.AutoClaimed),
			"auto_reset":   len(result.AutoReset),
			"silent_roll":  len(result.SilentRoll),
			"pending":      len(result.Pending),
		}).Info("load-time reset pass completed")
	}

	// Router and daily scheduler
	handler := api.NewHandler(trk, log)
	router := api.NewRouter(handler)

	sched := api.NewScheduler(trk, log)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

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
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
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
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

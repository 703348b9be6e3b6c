/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lead ledger engine server. The composition
  root owns the single Ledger instance; every consumer reaches state
  through the handler's operation contract, never by direct field writes.

STARTUP SEQUENCE:
  1. Load .env (optional) and environment configuration
  2. Build the structured logger
  3. Create the in-memory Ledger
  4. Wire the API handler and router
  5. Start the HTTP server with graceful shutdown

CONFIGURATION (environment, LEADENGINE_ prefix):
  LEADENGINE_PORT               HTTP port (default 8080)
  LEADENGINE_LOG_LEVEL          zerolog level (default info)
  LEADENGINE_DEFAULT_LEAD_COST  Initial default lead cost (default 12)
  LEADENGINE_ALLOWED_ORIGINS    CORS origins, comma separated

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections and waits up to
  30s for active requests. State is in-memory only; nothing to flush.

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/ledger.go: The store this process owns
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

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/lead-engine/api"
	"github.com/warp/lead-engine/ledger"
)

type config struct {
	Port            int      `envconfig:"PORT" default:"8080"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	DefaultLeadCost int64    `envconfig:"DEFAULT_LEAD_COST" default:"12"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

func main() {
	_ = godotenv.Load() // .env is optional

	var cfg config
	if err := envconfig.Process("LEADENGINE", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "lead-engine").Logger().Level(level)

	store := ledger.New(ledger.WithDefaultLeadCost(decimal.NewFromInt(cfg.DefaultLeadCost)))
	handler := api.NewHandler(store, log)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mevlab/dexsim/service/config"
	"github.com/mevlab/dexsim/service/events"
	"github.com/mevlab/dexsim/service/frontrun"
	"github.com/mevlab/dexsim/service/market"
	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/metrics"
	"github.com/mevlab/dexsim/service/risk"
	"github.com/mevlab/dexsim/service/server"
	"github.com/mevlab/dexsim/service/trader"
	"github.com/mevlab/dexsim/service/watcher"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
		"settlement_delay", cfg.SettlementDelay,
		"interleg_delay", cfg.InterLegDelay,
	)

	// Initialize metrics collectors
	m := metrics.NewMetrics(nil)

	// Initialize NATS publisher if configured; the ledger works without one
	var publisher events.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("NATS_URL not set, event publishing disabled")
	}

	// Initialize the ledger with its settlement timer
	pool := mempool.NewPool(cfg.SettlementDelay, nil, publisher, m, logger)

	// Derived market state over the ledger
	engine := market.NewEngine(pool, cfg.InitialLiquidity, cfg.TotalCirculation, cfg.BasePrice, logger)

	// Opportunity scanner and reordering orchestrator
	scanner := watcher.NewScanner(pool, cfg.LiquidityThreshold, cfg.SellThreshold, m, logger)

	// Trader bookkeeper, priced off the market engine, doubles as the
	// orchestrator's reorder recorder
	book := trader.NewBook(cfg.TraderCash, cfg.TraderTokens, engine, logger)

	orch := frontrun.NewOrchestrator(pool, scanner, cfg.SniperAddress, cfg.InterLegDelay, book, publisher, m, logger)

	// Risk scorer
	scorer := risk.NewOpenAIScorer(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, risk analysis will serve the fallback assessment")
	}

	// Initialize HTTP server
	httpServer := server.New(cfg.ServerAddr, cfg, pool, engine, scanner, orch, scorer, book, m, logger)

	logger.Info("server initialized, all dependencies ready",
		"nats_url", cfg.NATSURL,
		"sniper_address", cfg.SniperAddress,
	)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

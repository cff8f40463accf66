package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mevlab/dexsim/service/config"
	"github.com/mevlab/dexsim/service/frontrun"
	"github.com/mevlab/dexsim/service/market"
	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/metrics"
	"github.com/mevlab/dexsim/service/risk"
	"github.com/mevlab/dexsim/service/trader"
	"github.com/mevlab/dexsim/service/watcher"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP surface over the simulation: ledger CRUD, the market
// dashboard, the scanner/orchestrator pair, risk analysis, and the trader's
// books.
type Server struct {
	addr    string
	cfg     *config.Config
	pool    *mempool.Pool
	engine  *market.Engine
	scanner *watcher.Scanner
	orch    *frontrun.Orchestrator
	scorer  risk.Scorer
	book    *trader.Book
	metrics *metrics.Metrics
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server with the given dependencies. The scorer,
// book, and metrics are optional; their endpoints degrade or disappear when
// nil.
func New(addr string, cfg *config.Config, pool *mempool.Pool, engine *market.Engine, scanner *watcher.Scanner, orch *frontrun.Orchestrator, scorer risk.Scorer, book *trader.Book, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		pool:    pool,
		engine:  engine,
		scanner: scanner,
		orch:    orch,
		scorer:  scorer,
		book:    book,
		metrics: m,
		logger:  logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	instrument := func(name string, h http.Handler) http.Handler {
		return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
	}

	// Ledger routes
	mux.Handle("POST /api/v1/transactions", instrument("/api/v1/transactions", handleSubmitTransaction(s.pool, s.logger)))
	mux.Handle("GET /api/v1/transactions", instrument("/api/v1/transactions", handleListTransactions(s.pool, s.logger)))
	mux.Handle("GET /api/v1/transactions/{id}", instrument("/api/v1/transactions/{id}", handleGetTransaction(s.pool, s.logger)))
	mux.Handle("DELETE /api/v1/transactions/{id}", instrument("/api/v1/transactions/{id}", handleDeleteTransaction(s.pool, s.logger)))

	// Typed submission fronts
	mux.Handle("POST /api/v1/trade/{side}", instrument("/api/v1/trade", handleTrade(s.pool, s.logger)))
	mux.Handle("POST /api/v1/liquidity/{action}", instrument("/api/v1/liquidity", handleLiquidity(s.pool, s.logger)))

	// Market state
	mux.Handle("GET /api/v1/dashboard", instrument("/api/v1/dashboard", handleDashboard(s.engine, s.logger)))
	mux.Handle("GET /api/v1/stream/prices", handleStreamPrices(s.engine, s.metrics, s.logger))

	// Scanner and orchestrator
	mux.Handle("GET /api/v1/suspicious", instrument("/api/v1/suspicious", handleSuspicious(s.scanner, s.logger)))
	mux.Handle("POST /api/v1/frontrun", instrument("/api/v1/frontrun", handleFrontrun(s.orch, s.logger)))
	mux.Handle("POST /api/v1/monitoring/activate", instrument("/api/v1/monitoring/activate", handleActivateMonitoring(s.logger)))

	// Risk analysis
	if s.scorer != nil {
		mux.Handle("GET /api/v1/risk", instrument("/api/v1/risk", handleRiskAnalysis(s.pool, s.scorer, s.metrics, s.logger)))
		s.logger.Info("risk analysis endpoint enabled")
	}

	// Trader portfolio
	if s.book != nil {
		mux.Handle("GET /api/v1/portfolio", instrument("/api/v1/portfolio", handlePortfolio(s.book, s.logger)))
		mux.Handle("POST /api/v1/portfolio/trade", instrument("/api/v1/portfolio/trade", handlePortfolioTrade(s.book, s.logger)))
		mux.Handle("GET /api/v1/watchdog", instrument("/api/v1/watchdog", handleWatchdogStatus(s.book, s.logger)))
		mux.Handle("POST /api/v1/watchdog/toggle", instrument("/api/v1/watchdog", handleWatchdogToggle(s.book, s.logger)))
		s.logger.Info("trader portfolio endpoints enabled")
	}

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No write timeout: the frontrun handler blocks across the
		// inter-leg delay and the SSE stream is long-lived.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS
// preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

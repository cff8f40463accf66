package server

import (
	"log/slog"
	"net/http"

	"github.com/mevlab/dexsim/service/market"
	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/metrics"
	"github.com/mevlab/dexsim/service/risk"
)

// handleDashboard returns a handler that serves the derived market state.
// GET /api/v1/dashboard
func handleDashboard(engine *market.Engine, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := engine.Snapshot()
		logger.Debug("dashboard served", "price", snapshot.CurrentPrice)
		writeJSON(w, snapshot, http.StatusOK)
	})
}

// handleRiskAnalysis returns a handler that scores the full ledger. Scorer
// failures degrade to the fixed fallback assessment; this endpoint never
// propagates an upstream failure.
// GET /api/v1/risk
func handleRiskAnalysis(pool *mempool.Pool, scorer risk.Scorer, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		txs := pool.List()

		assessment, err := scorer.Score(r.Context(), txs)
		status := "ok"
		if err != nil {
			logger.Warn("risk scoring failed, serving fallback", "error", err)
			assessment = risk.Fallback()
			status = "fallback"
		}
		if m != nil {
			m.RecordScorerCall(status)
		}

		writeJSON(w, map[string]interface{}{
			"message":          "risk analysis complete",
			"analysis":         assessment,
			"num_transactions": len(txs),
		}, http.StatusOK)
	})
}

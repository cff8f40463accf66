package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mevlab/dexsim/service/frontrun"
	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/watcher"
)

// handleSuspicious returns a handler that lists flagged transactions in
// ledger order.
// GET /api/v1/suspicious
func handleSuspicious(scanner *watcher.Scanner, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flagged := scanner.Scan()
		if flagged == nil {
			flagged = []mempool.Transaction{}
		}
		logger.Debug("suspicious transactions listed", "count", len(flagged))
		writeJSON(w, flagged, http.StatusOK)
	})
}

// handleFrontrun returns a handler that runs the reordering strategy for a
// flagged transaction. The request blocks across the inter-leg delay, so the
// response describes a completed (or failed) run, never an in-flight one.
// POST /api/v1/frontrun
func handleFrontrun(orch *frontrun.Orchestrator, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TxID string `json:"tx_id"`
		}
		if !decodeBody(w, r, &req, logger) {
			return
		}
		if req.TxID == "" {
			writeError(w, errKindBadRequest, "tx_id is required", http.StatusBadRequest)
			return
		}

		result, err := orch.Execute(r.Context(), req.TxID)
		if err != nil {
			logger.Warn("reorder failed", "tx_id", req.TxID, "error", err)
			writeDomainError(w, err)
			return
		}

		logger.Info("reorder executed",
			"tx_id", req.TxID,
			"strategy", result.Strategy,
			"amount", result.Amount,
		)
		writeJSON(w, result, http.StatusOK)
	})
}

// handleActivateMonitoring returns a handler acknowledging a monitoring
// request for a token. The scanner always watches the full ledger, so there
// is nothing to switch on; the endpoint lets clients announce the token they
// care about and get a confirmation. An empty body is accepted.
// POST /api/v1/monitoring/activate
func handleActivateMonitoring(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TokenAddress string `json:"token_address"`
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, errKindBadRequest, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}
		if req.TokenAddress == "" {
			req.TokenAddress = "unknown"
		}

		logger.Info("monitoring activated", "token_address", req.TokenAddress)
		writeJSON(w, map[string]string{
			"message": fmt.Sprintf("Frontrunner monitoring activated for token %s", req.TokenAddress),
		}, http.StatusOK)
	})
}

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mevlab/dexsim/service/trader"
	"github.com/shopspring/decimal"
)

// handlePortfolio returns a handler serving the trader's books valued at the
// current market price.
// GET /api/v1/portfolio
func handlePortfolio(book *trader.Book, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, book.Status(), http.StatusOK)
	})
}

// handlePortfolioTrade returns a handler executing a manual portfolio trade.
// POST /api/v1/portfolio/trade
func handlePortfolioTrade(book *trader.Book, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type   string          `json:"type"`
			Amount decimal.Decimal `json:"amount"`
		}
		if !decodeBody(w, r, &req, logger) {
			return
		}
		if req.Amount.IsNegative() {
			writeError(w, errKindBadRequest, "amount must be non-negative", http.StatusBadRequest)
			return
		}

		entry, err := book.Trade(req.Type, req.Amount, trader.SourceUser)
		if err != nil {
			logger.Debug("portfolio trade rejected", "type", req.Type, "error", err)
			switch {
			case errors.Is(err, trader.ErrInsufficientFunds),
				errors.Is(err, trader.ErrInsufficientHoldings),
				errors.Is(err, trader.ErrInvalidTradeType),
				errors.Is(err, trader.ErrZeroPrice):
				writeError(w, errKindBadRequest, err.Error(), http.StatusBadRequest)
			default:
				writeError(w, errKindInternal, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, map[string]interface{}{
			"message": "trade executed",
			"trade":   entry,
		}, http.StatusOK)
	})
}

// handleWatchdogStatus returns a handler reporting whether automatic
// reordering is enabled.
// GET /api/v1/watchdog
func handleWatchdogStatus(book *trader.Book, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]bool{"activated": book.Watchdog()}, http.StatusOK)
	})
}

// handleWatchdogToggle returns a handler flipping the watchdog flag.
// POST /api/v1/watchdog/toggle
func handleWatchdogToggle(book *trader.Book, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		activated := book.ToggleWatchdog()
		logger.Info("watchdog toggled", "activated", activated)
		writeJSON(w, map[string]interface{}{
			"message":   "watchdog toggled",
			"activated": activated,
		}, http.StatusOK)
	})
}

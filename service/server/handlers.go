package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mevlab/dexsim/service/mempool"
	"github.com/shopspring/decimal"
)

const maxRequestBodySize = 1 << 20 // 1MB - plenty for a transaction payload

// handleSubmitTransaction returns a handler that accepts a raw transaction
// into the ledger.
// POST /api/v1/transactions
func handleSubmitTransaction(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var tx mempool.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			logger.Debug("failed to decode transaction", "error", err)
			if strings.Contains(err.Error(), "http: request body too large") {
				writeError(w, errKindBadRequest, "request body too large: maximum size is 1MB", http.StatusBadRequest)
				return
			}
			writeError(w, errKindBadRequest, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		accepted, err := pool.Submit(tx)
		if err != nil {
			logger.Debug("transaction rejected", "type", tx.Kind, "error", err)
			writeDomainError(w, err)
			return
		}

		writeJSON(w, map[string]interface{}{
			"message":     "Transaction added",
			"transaction": accepted,
		}, http.StatusCreated)
	})
}

// handleListTransactions returns a handler that lists the full ledger in
// insertion order.
// GET /api/v1/transactions
func handleListTransactions(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		txs := pool.List()
		logger.Debug("transactions listed", "count", len(txs))
		writeJSON(w, txs, http.StatusOK)
	})
}

// handleGetTransaction returns a handler that fetches one transaction by id.
// GET /api/v1/transactions/{id}
func handleGetTransaction(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		tx, err := pool.Get(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, tx, http.StatusOK)
	})
}

// handleDeleteTransaction returns a handler that removes a transaction.
// DELETE /api/v1/transactions/{id}
func handleDeleteTransaction(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := pool.Delete(id); err != nil {
			writeDomainError(w, err)
			return
		}
		logger.Info("transaction removed", "tx_id", id)
		writeJSON(w, map[string]string{"message": "Transaction removed"}, http.StatusOK)
	})
}

// tradeRequest is the body of the typed submission fronts.
type tradeRequest struct {
	Buyer    string          `json:"buyer"`
	Seller   string          `json:"seller"`
	Provider string          `json:"provider"`
	Amount   decimal.Decimal `json:"amount"`
	Boost    bool            `json:"mev_boost"`
}

// handleTrade returns a handler that submits a buy or sell on behalf of the
// named party.
// POST /api/v1/trade/{side}
func handleTrade(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		side := r.PathValue("side")

		var req tradeRequest
		if !decodeBody(w, r, &req, logger) {
			return
		}

		var tx mempool.Transaction
		switch side {
		case "buy":
			tx = mempool.Transaction{Kind: mempool.KindBuy, Buyer: req.Buyer, Amount: req.Amount, Boost: req.Boost}
		case "sell":
			tx = mempool.Transaction{Kind: mempool.KindSell, Seller: req.Seller, Amount: req.Amount, Boost: req.Boost}
		default:
			writeError(w, errKindBadRequest, "side must be 'buy' or 'sell'", http.StatusBadRequest)
			return
		}

		accepted, err := pool.Submit(tx)
		if err != nil {
			logger.Debug("trade rejected", "side", side, "error", err)
			writeDomainError(w, err)
			return
		}

		writeJSON(w, map[string]interface{}{
			"message":     "Transaction added",
			"transaction": accepted,
		}, http.StatusCreated)
	})
}

// handleLiquidity returns a handler that submits a liquidity addition or
// removal for the named provider.
// POST /api/v1/liquidity/{action}
func handleLiquidity(pool *mempool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.PathValue("action")

		var req tradeRequest
		if !decodeBody(w, r, &req, logger) {
			return
		}

		var kind mempool.Kind
		switch action {
		case "add":
			kind = mempool.KindAddLiquidity
		case "remove":
			kind = mempool.KindRemoveLiquidity
		default:
			writeError(w, errKindBadRequest, "action must be 'add' or 'remove'", http.StatusBadRequest)
			return
		}

		accepted, err := pool.Submit(mempool.Transaction{
			Kind:     kind,
			Provider: req.Provider,
			Amount:   req.Amount,
			Boost:    req.Boost,
		})
		if err != nil {
			logger.Debug("liquidity submission rejected", "action", action, "error", err)
			writeDomainError(w, err)
			return
		}

		writeJSON(w, map[string]interface{}{
			"message":     "Transaction added",
			"transaction": accepted,
		}, http.StatusCreated)
	})
}

// decodeBody decodes a size-limited JSON body, writing the error response
// itself and reporting whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("failed to decode request body", "error", err)
		if strings.Contains(err.Error(), "http: request body too large") {
			writeError(w, errKindBadRequest, "request body too large: maximum size is 1MB", http.StatusBadRequest)
			return false
		}
		writeError(w, errKindBadRequest, "invalid request body: must be valid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

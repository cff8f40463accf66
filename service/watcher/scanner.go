// Package watcher polls the ledger for transactions worth racing: large
// liquidity removals and large sells. Status is deliberately not filtered —
// a pending whale sell is exactly the thing worth anticipating.
package watcher

import (
	"log/slog"

	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/metrics"
	"github.com/shopspring/decimal"
)

// Ledger is the read-only pool view the scanner consumes.
type Ledger interface {
	List() []mempool.Transaction
}

// Scanner flags transactions whose amount crosses a per-kind threshold.
// Both thresholds are inclusive and independent; no kind other than
// remove_liquidity and sell is ever flagged.
type Scanner struct {
	ledger             Ledger
	liquidityThreshold decimal.Decimal
	sellThreshold      decimal.Decimal
	metrics            *metrics.Metrics
	logger             *slog.Logger
}

// NewScanner creates a scanner with the given inclusive thresholds.
func NewScanner(ledger Ledger, liquidityThreshold, sellThreshold decimal.Decimal, m *metrics.Metrics, logger *slog.Logger) *Scanner {
	return &Scanner{
		ledger:             ledger,
		liquidityThreshold: liquidityThreshold,
		sellThreshold:      sellThreshold,
		metrics:            m,
		logger:             logger,
	}
}

// Scan returns all flagged transactions in ledger iteration order.
func (s *Scanner) Scan() []mempool.Transaction {
	txs := s.ledger.List()

	var flagged []mempool.Transaction
	byKind := make(map[string]int)
	for _, tx := range txs {
		if s.Flagged(&tx) {
			flagged = append(flagged, tx)
			byKind[string(tx.Kind)]++
		}
	}

	if s.metrics != nil {
		s.metrics.RecordScan(byKind)
	}
	if len(flagged) > 0 {
		s.logger.Debug("scan flagged transactions", "count", len(flagged))
	}
	return flagged
}

// Flagged reports whether a single transaction crosses its kind's threshold.
func (s *Scanner) Flagged(tx *mempool.Transaction) bool {
	switch tx.Kind {
	case mempool.KindRemoveLiquidity:
		return tx.Amount.GreaterThanOrEqual(s.liquidityThreshold)
	case mempool.KindSell:
		return tx.Amount.GreaterThanOrEqual(s.sellThreshold)
	}
	return false
}

// Package market derives price, liquidity, and volume from the ledger's
// executed transactions. Nothing here is persisted: every snapshot is
// recomputed from the full executed set, and only the bounded price history
// accumulates between calls.
package market

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mevlab/dexsim/service/mempool"
	"github.com/shopspring/decimal"
)

// historyCap bounds the price history; the oldest point is evicted first.
const historyCap = 50

// Ledger is the read-only view of the transaction pool the engine consumes.
// List must return transactions in insertion order: the trading factor is a
// product accumulated per buy/sell, so replay order changes the price.
type Ledger interface {
	List() []mempool.Transaction
}

// PricePoint is one entry in the snapshot's price history.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Snapshot is the derived market state at one instant.
type Snapshot struct {
	Volume       decimal.Decimal `json:"volume"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	CurrentPrice float64         `json:"current_price"`
	History      []PricePoint    `json:"history"`
}

// Engine computes market snapshots from the ledger.
type Engine struct {
	ledger           Ledger
	initialLiquidity decimal.Decimal
	circulation      decimal.Decimal
	basePrice        float64
	logger           *slog.Logger

	mu      sync.Mutex
	history []PricePoint
}

// NewEngine creates a market engine over the given ledger view.
// initialLiquidity and circulation must be positive.
func NewEngine(ledger Ledger, initialLiquidity, circulation decimal.Decimal, basePrice float64, logger *slog.Logger) *Engine {
	return &Engine{
		ledger:           ledger,
		initialLiquidity: initialLiquidity,
		circulation:      circulation,
		basePrice:        basePrice,
		logger:           logger,
	}
}

// Snapshot recomputes market state from the executed transaction set and
// appends the resulting price to the history. On an empty executed set it
// returns the degenerate snapshot: initial liquidity, base price, zero
// volume.
//
// The price is liquidity_factor * trading_factor * base, where the trading
// factor multiplies (1 + 0.01*amount/circulation) per executed buy and
// (1 - 0.01*amount/circulation) per executed sell, in ledger order. A price
// of exactly zero is reachable when liquidity is fully drained; callers
// dividing by the price must guard for it.
func (e *Engine) Snapshot() Snapshot {
	txs := e.ledger.List()

	liquidity := e.initialLiquidity
	volume := decimal.Zero
	tradingFactor := 1.0
	circulation := e.circulation.InexactFloat64()

	for i := range txs {
		tx := &txs[i]
		if tx.Status != mempool.StatusExecuted {
			continue
		}
		switch tx.Kind {
		case mempool.KindAddLiquidity:
			liquidity = liquidity.Add(tx.Amount)
		case mempool.KindRemoveLiquidity:
			liquidity = liquidity.Sub(tx.Amount)
		case mempool.KindBuy:
			volume = volume.Add(tx.Amount.Abs())
			tradingFactor *= 1 + 0.01*(tx.Amount.InexactFloat64()/circulation)
		case mempool.KindSell:
			volume = volume.Add(tx.Amount.Abs())
			tradingFactor *= 1 - 0.01*(tx.Amount.InexactFloat64()/circulation)
		}
	}

	liquidityFactor := liquidity.InexactFloat64() / e.initialLiquidity.InexactFloat64()
	price := roundPrice(e.basePrice * liquidityFactor * tradingFactor)

	e.mu.Lock()
	e.history = append(e.history, PricePoint{Timestamp: time.Now(), Price: price})
	if len(e.history) > historyCap {
		e.history = e.history[len(e.history)-historyCap:]
	}
	history := make([]PricePoint, len(e.history))
	copy(history, e.history)
	e.mu.Unlock()

	e.logger.Debug("market snapshot computed",
		"price", price,
		"liquidity", liquidity,
		"volume", volume,
	)

	return Snapshot{
		Volume:       volume.Round(2),
		Liquidity:    liquidity,
		CurrentPrice: price,
		History:      history,
	}
}

// CurrentPrice returns the latest computed price. It satisfies the trader's
// price source interface and, like a dashboard poll, records a history point.
func (e *Engine) CurrentPrice() (float64, error) {
	return e.Snapshot().CurrentPrice, nil
}

// roundPrice rounds to 4 decimal places, the dashboard precision.
func roundPrice(p float64) float64 {
	return decimal.NewFromFloat(p).Round(4).InexactFloat64()
}

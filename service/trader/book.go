// Package trader keeps the simulated trader's books: cash, token holdings,
// a trade log, and a bounded valuation history. It is a collaborator of the
// core ledger, not part of it — the reordering orchestrator notifies it
// after the fact, and it prices positions off the market engine with a safe
// default when the price source fails.
package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// historyCap bounds the valuation history, oldest evicted first.
const historyCap = 50

// Trade sources recorded in the log.
const (
	SourceUser = "User"
	SourceAuto = "Auto"
)

var (
	// ErrInsufficientFunds rejects a buy larger than the available cash.
	ErrInsufficientFunds = errors.New("not enough liquidity to buy")
	// ErrInsufficientHoldings rejects a sell larger than the token position.
	ErrInsufficientHoldings = errors.New("not enough tokens to sell")
	// ErrInvalidTradeType rejects anything but buy or sell.
	ErrInvalidTradeType = errors.New("invalid trade type")
	// ErrZeroPrice rejects trades while the market price is exactly zero,
	// since sizing a position would divide by it.
	ErrZeroPrice = errors.New("current price is zero")
)

// PriceSource supplies the current token price. The market engine satisfies
// it directly; a failing source is not an error for the book, which falls
// back to a price of 1.0.
type PriceSource interface {
	CurrentPrice() (float64, error)
}

// TradeEntry is one row of the trade log, newest first.
type TradeEntry struct {
	ID        string          `json:"id"`
	TradeType string          `json:"trade_type"`
	Amount    decimal.Decimal `json:"amount"`
	Source    string          `json:"source"`
	Details   string          `json:"details,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ValuePoint is one entry in the portfolio valuation history.
type ValuePoint struct {
	Timestamp  time.Time       `json:"timestamp"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Status is the portfolio valued at the current market price.
type Status struct {
	Liquidity  decimal.Decimal `json:"liquidity"`
	Tokens     decimal.Decimal `json:"tokens"`
	AssetPrice float64         `json:"asset_price"`
	TotalValue decimal.Decimal `json:"total_value"`
	PnL        decimal.Decimal `json:"pnl"`
	TradeLog   []TradeEntry    `json:"trade_log"`
	History    []ValuePoint    `json:"history"`
}

// Book is the in-memory portfolio and trade log.
type Book struct {
	mu           sync.Mutex
	cash         decimal.Decimal
	tokens       decimal.Decimal
	initialValue decimal.Decimal
	log          []TradeEntry
	history      []ValuePoint
	watchdog     bool

	prices PriceSource
	logger *slog.Logger
}

// NewBook creates a portfolio with the given starting cash and token
// position. The initial value for P&L is the starting cash.
func NewBook(cash, tokens decimal.Decimal, prices PriceSource, logger *slog.Logger) *Book {
	return &Book{
		cash:         cash,
		tokens:       tokens,
		initialValue: cash,
		watchdog:     true,
		prices:       prices,
		logger:       logger,
	}
}

// price fetches the current market price, defaulting to 1.0 when the source
// fails or is unreachable.
func (b *Book) price() float64 {
	p, err := b.prices.CurrentPrice()
	if err != nil {
		b.logger.Warn("price lookup failed, defaulting", "error", err)
		return 1.0
	}
	return p
}

// Trade executes a buy or sell of the given USD amount at the current market
// price and logs it under the given source.
func (b *Book) Trade(tradeType string, amount decimal.Decimal, source string) (*TradeEntry, error) {
	price := b.price()
	if price == 0 {
		return nil, ErrZeroPrice
	}
	priceDec := decimal.NewFromFloat(price)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch tradeType {
	case "buy":
		if amount.GreaterThan(b.cash) {
			return nil, ErrInsufficientFunds
		}
		b.cash = b.cash.Sub(amount)
		b.tokens = b.tokens.Add(amount.Div(priceDec))
	case "sell":
		tokensToSell := amount.Div(priceDec)
		if tokensToSell.GreaterThan(b.tokens) {
			return nil, ErrInsufficientHoldings
		}
		b.tokens = b.tokens.Sub(tokensToSell)
		b.cash = b.cash.Add(amount)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTradeType, tradeType)
	}

	entry := TradeEntry{
		ID:        uuid.NewString(),
		TradeType: tradeType,
		Amount:    amount,
		Source:    source,
		Timestamp: time.Now(),
	}
	b.log = append([]TradeEntry{entry}, b.log...)

	b.logger.Info("trade executed",
		"trade_type", tradeType,
		"amount", amount,
		"price", price,
		"source", source,
	)
	return &entry, nil
}

// Record implements the orchestrator's bookkeeping notification: it appends
// an Auto entry to the trade log without touching positions. The reorder's
// legs live in the ledger, not in this portfolio.
func (b *Book) Record(ctx context.Context, tradeType string, amount decimal.Decimal, details string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := TradeEntry{
		ID:        uuid.NewString(),
		TradeType: tradeType,
		Amount:    amount,
		Source:    SourceAuto,
		Details:   details,
		Timestamp: time.Now(),
	}
	b.log = append([]TradeEntry{entry}, b.log...)

	b.logger.Info("autotrade recorded", "trade_type", tradeType, "amount", amount)
	return nil
}

// Status values the portfolio at the current price and appends the total to
// the valuation history.
func (b *Book) Status() Status {
	price := b.price()
	priceDec := decimal.NewFromFloat(price)

	b.mu.Lock()
	defer b.mu.Unlock()

	assetValue := b.tokens.Mul(priceDec)
	total := b.cash.Add(assetValue).Round(2)

	b.history = append(b.history, ValuePoint{Timestamp: time.Now(), TotalValue: total})
	if len(b.history) > historyCap {
		b.history = b.history[len(b.history)-historyCap:]
	}

	log := make([]TradeEntry, len(b.log))
	copy(log, b.log)
	history := make([]ValuePoint, len(b.history))
	copy(history, b.history)

	return Status{
		Liquidity:  b.cash.Round(2),
		Tokens:     b.tokens,
		AssetPrice: price,
		TotalValue: total,
		PnL:        total.Sub(b.initialValue).Round(2),
		TradeLog:   log,
		History:    history,
	}
}

// Watchdog reports whether automatic reordering is enabled.
func (b *Book) Watchdog() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watchdog
}

// ToggleWatchdog flips the watchdog flag and returns the new state.
func (b *Book) ToggleWatchdog() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchdog = !b.watchdog
	return b.watchdog
}

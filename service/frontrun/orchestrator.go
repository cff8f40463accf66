// Package frontrun races flagged transactions by injecting a pair of boosted
// counter-transactions around them: pull liquidity before a whale pulls
// theirs and re-add it afterwards, or buy ahead of a large sell and unload
// behind it.
package frontrun

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mevlab/dexsim/service/events"
	"github.com/mevlab/dexsim/service/mempool"
	"github.com/mevlab/dexsim/service/metrics"
	"github.com/shopspring/decimal"
)

// Ledger is the pool surface the orchestrator needs: refetching the victim
// and injecting its own legs.
type Ledger interface {
	Get(id string) (*mempool.Transaction, error)
	Submit(tx mempool.Transaction) (*mempool.Transaction, error)
}

// Flagger re-checks that a transaction still crosses its kind's threshold.
// The watcher's scanner satisfies this.
type Flagger interface {
	Flagged(tx *mempool.Transaction) bool
}

// Recorder receives the bookkeeping notification after a completed run.
// Failures are logged and dropped; the ledger mutation is not transactional
// with the notification.
type Recorder interface {
	Record(ctx context.Context, tradeType string, amount decimal.Decimal, details string) error
}

// Leg amount markups over the victim's amount.
var (
	liquidityMarkup = decimal.NewFromFloat(1.10)
	sellMarkup      = decimal.NewFromFloat(1.05)
)

// Result describes a completed two-leg run.
type Result struct {
	Strategy   string          `json:"strategy"`
	VictimTxID string          `json:"victim_tx_id"`
	Amount     decimal.Decimal `json:"amount"`
	FrontLegID string          `json:"front_leg_id"`
	BackLegID  string          `json:"back_leg_id"`
	Message    string          `json:"message"`
}

// Orchestrator executes reordering runs. Runs are serialized: both legs
// trade under one controlled address, and interleaving two runs' legs under
// the same address would make the resulting positions unreadable, so a
// second Execute blocks until the first completes.
type Orchestrator struct {
	mu sync.Mutex

	ledger       Ledger
	flagger      Flagger
	sniper       string
	interLegWait time.Duration

	recorder  Recorder
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator trading under the sniper address.
// interLegWait should exceed the ledger's settlement delay so the back leg
// lands after the victim's natural settlement. The recorder and publisher
// are optional.
func NewOrchestrator(ledger Ledger, flagger Flagger, sniper string, interLegWait time.Duration, recorder Recorder, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		ledger:       ledger,
		flagger:      flagger,
		sniper:       sniper,
		interLegWait: interLegWait,
		recorder:     recorder,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// Execute runs the reordering strategy for the flagged transaction. The
// victim is refetched by id: mempool.ErrNotFound if it vanished,
// ErrThresholdNotMet if its amount no longer crosses the threshold,
// ErrUnsupportedStrategy for any kind without a strategy. Leg failures come
// back as *LegError with the remaining leg aborted.
//
// The inter-leg wait holds no ledger lock; other submissions land freely
// between the legs.
func (o *Orchestrator) Execute(ctx context.Context, txID string) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	result, err := o.execute(ctx, txID)

	if o.metrics != nil {
		strategy := "unknown"
		status := "ok"
		if result != nil {
			strategy = result.Strategy
		}
		if err != nil {
			status = "failed"
		}
		o.metrics.RecordReorder(strategy, status, time.Since(start).Seconds())
	}
	return result, err
}

func (o *Orchestrator) execute(ctx context.Context, txID string) (*Result, error) {
	victim, err := o.ledger.Get(txID)
	if err != nil {
		return nil, err
	}

	switch victim.Kind {
	case mempool.KindRemoveLiquidity:
		if !o.flagger.Flagged(victim) {
			return nil, ErrThresholdNotMet
		}
		return o.runLegs(ctx, victim, string(mempool.KindRemoveLiquidity),
			mempool.KindRemoveLiquidity, mempool.KindAddLiquidity, liquidityMarkup)
	case mempool.KindSell:
		if !o.flagger.Flagged(victim) {
			return nil, ErrThresholdNotMet
		}
		return o.runLegs(ctx, victim, string(mempool.KindSell),
			mempool.KindBuy, mempool.KindSell, sellMarkup)
	default:
		return nil, ErrUnsupportedStrategy
	}
}

// runLegs submits the boosted front leg, waits out the masking delay, then
// submits the boosted back leg and fires the bookkeeping notification.
func (o *Orchestrator) runLegs(ctx context.Context, victim *mempool.Transaction, strategy string, frontKind, backKind mempool.Kind, markup decimal.Decimal) (*Result, error) {
	amount := victim.Amount.Mul(markup).Round(2)

	o.logger.Info("executing reorder",
		"strategy", strategy,
		"victim_tx_id", victim.ID,
		"victim_amount", victim.Amount,
		"leg_amount", amount,
	)

	front, err := o.ledger.Submit(o.leg(frontKind, amount))
	if err != nil {
		return &Result{Strategy: strategy, VictimTxID: victim.ID}, &LegError{Strategy: strategy, Leg: LegFront, Err: err}
	}

	// The masking delay outlasts the settlement delay, so the victim settles
	// naturally between the legs. No ledger lock is held here.
	select {
	case <-time.After(o.interLegWait):
	case <-ctx.Done():
		return &Result{Strategy: strategy, VictimTxID: victim.ID, FrontLegID: front.ID},
			&LegError{Strategy: strategy, Leg: LegBack, Err: ctx.Err()}
	}

	back, err := o.ledger.Submit(o.leg(backKind, amount))
	if err != nil {
		return &Result{Strategy: strategy, VictimTxID: victim.ID, FrontLegID: front.ID},
			&LegError{Strategy: strategy, Leg: LegBack, Err: err}
	}

	result := &Result{
		Strategy:   strategy,
		VictimTxID: victim.ID,
		Amount:     amount,
		FrontLegID: front.ID,
		BackLegID:  back.ID,
		Message:    fmt.Sprintf("autotrade executed: %s then %s of %s after %s", frontKind, backKind, amount, o.interLegWait),
	}

	o.notify(ctx, strategy, amount)
	o.publishReorder(victim.ID, result)
	return result, nil
}

// leg builds one boosted counter-transaction under the controlled address.
func (o *Orchestrator) leg(kind mempool.Kind, amount decimal.Decimal) mempool.Transaction {
	tx := mempool.Transaction{Kind: kind, Amount: amount, Boost: true}
	switch kind {
	case mempool.KindBuy:
		tx.Buyer = o.sniper
	case mempool.KindSell:
		tx.Seller = o.sniper
	case mempool.KindAddLiquidity, mempool.KindRemoveLiquidity:
		tx.Provider = o.sniper
	}
	return tx
}

// notify tells the bookkeeper about the completed run. A bookkeeping failure
// never fails the run: the legs are already executed in the ledger.
func (o *Orchestrator) notify(ctx context.Context, strategy string, amount decimal.Decimal) {
	if o.recorder == nil {
		return
	}
	details := fmt.Sprintf("autotrade: %s strategy, both legs of %s under %s", strategy, amount, o.sniper)
	if err := o.recorder.Record(ctx, strategy, amount, details); err != nil {
		o.logger.Warn("bookkeeping notification failed", "strategy", strategy, "error", err)
	}
}

// publishReorder emits the reorder event, fire-and-forget.
func (o *Orchestrator) publishReorder(victimID string, result *Result) {
	if o.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := &events.ReorderEvent{
		Strategy:   result.Strategy,
		VictimTxID: victimID,
		Amount:     result.Amount.String(),
		FrontLegID: result.FrontLegID,
		BackLegID:  result.BackLegID,
		ExecutedAt: time.Now(),
	}
	if err := o.publisher.PublishReorder(ctx, event); err != nil {
		o.logger.Warn("failed to publish reorder event", "victim_tx_id", victimID, "error", err)
	}
}

package mempool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mevlab/dexsim/service/events"
	"github.com/mevlab/dexsim/service/metrics"
)

// Pool is the shared in-memory transaction ledger. It owns every transaction
// ever accepted and is the single mutation point for the whole system:
// request handlers insert and delete, the settler flips pending entries to
// executed, and all derived computation (market state, opportunity scans)
// reads through List.
//
// Iteration order is insertion order. The price computation replays buys and
// sells multiplicatively, so the order transactions come back in is part of
// the contract, not a convenience.
type Pool struct {
	mu    sync.RWMutex
	txs   map[string]*Transaction
	order []string

	settler Settler
	delay   time.Duration

	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewPool creates a ledger that settles non-boosted transactions after
// settleDelay. A nil settler gets the timer-based default. The publisher and
// metrics are optional; a nil publisher means settlement events are not
// emitted.
func NewPool(settleDelay time.Duration, settler Settler, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Pool {
	if settler == nil {
		settler = NewTimerSettler()
	}
	return &Pool{
		txs:       make(map[string]*Transaction),
		settler:   settler,
		delay:     settleDelay,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Submit validates and accepts a transaction. The id, status, and submission
// time on the payload are overwritten by the pool. Boosted transactions are
// executed on arrival; everything else starts pending and is handed to the
// settler. The returned transaction is a copy.
func (p *Pool) Submit(tx Transaction) (*Transaction, error) {
	if err := validate(&tx); err != nil {
		return nil, err
	}

	tx.ID = uuid.NewString()
	tx.SubmittedAt = time.Now()
	if tx.Boost {
		tx.Status = StatusExecuted
	} else {
		tx.Status = StatusPending
	}

	p.mu.Lock()
	stored := tx
	p.txs[tx.ID] = &stored
	p.order = append(p.order, tx.ID)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordSubmission(string(tx.Kind), string(tx.Status))
	}
	p.logger.Debug("transaction accepted",
		"tx_id", tx.ID,
		"type", tx.Kind,
		"amount", tx.Amount,
		"status", tx.Status,
	)

	if tx.Boost {
		p.publishSettled(&tx)
	} else {
		p.settler.Schedule(tx.ID, p.delay, p.settle)
	}

	return &tx, nil
}

// Get returns a copy of the transaction with the given id.
func (p *Pool) Get(id string) (*Transaction, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored, ok := p.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	tx := *stored
	return &tx, nil
}

// List returns copies of all transactions in insertion order.
func (p *Pool) List() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Transaction, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.txs[id])
	}
	return out
}

// Delete removes a transaction from the ledger. A pending transaction
// deleted before its timer fires never becomes executed; the settler's
// existence check at fire time makes the stale timer a no-op.
func (p *Pool) Delete(id string) error {
	p.mu.Lock()
	_, ok := p.txs[id]
	if !ok {
		p.mu.Unlock()
		return ErrNotFound
	}
	delete(p.txs, id)
	for i, oid := range p.order {
		if oid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordDeletion()
	}
	p.logger.Debug("transaction removed", "tx_id", id)
	return nil
}

// Len returns the number of transactions currently in the ledger.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// settle flips a pending transaction to executed. It is the settler's fire
// callback: the transaction may have been deleted or already executed by the
// time the timer goes off, and both cases are silent no-ops.
func (p *Pool) settle(id string) {
	p.mu.Lock()
	stored, ok := p.txs[id]
	if !ok || stored.Status != StatusPending {
		p.mu.Unlock()
		return
	}
	stored.Status = StatusExecuted
	tx := *stored
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordSettlement(string(tx.Kind))
	}
	p.logger.Info("transaction settled", "tx_id", id, "type", tx.Kind)
	p.publishSettled(&tx)
}

// publishSettled emits a settlement event from a detached goroutine. The
// ledger mutation is already committed by the time this runs; a slow or
// failing broker must not stall the submitting caller, so failures are
// logged and dropped.
func (p *Pool) publishSettled(tx *Transaction) {
	if p.publisher == nil {
		return
	}
	event := &events.SettlementEvent{
		TxID:      tx.ID,
		Kind:      string(tx.Kind),
		Amount:    tx.Amount.String(),
		Boosted:   tx.Boost,
		SettledAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.publisher.PublishSettlement(ctx, event); err != nil {
			p.logger.Warn("failed to publish settlement event", "tx_id", event.TxID, "error", err)
		}
	}()
}

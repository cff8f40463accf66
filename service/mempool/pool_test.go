package mempool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mevlab/dexsim/service/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	validBuyer    = "0x" + strings.Repeat("a", 40)
	validSeller   = "0x" + strings.Repeat("b", 40)
	validProvider = "0x" + strings.Repeat("c", 40)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPool(t *testing.T) (*Pool, *MockSettler) {
	t.Helper()
	settler := NewMockSettler()
	pool := NewPool(10*time.Second, settler, nil, nil, testLogger())
	return pool, settler
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tx    Transaction
		field string
	}{
		{
			name:  "missing type",
			tx:    Transaction{Amount: decimal.NewFromInt(100)},
			field: "type",
		},
		{
			name:  "negative amount",
			tx:    Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(-1)},
			field: "amount",
		},
		{
			name:  "buy without buyer",
			tx:    Transaction{Kind: KindBuy, Amount: decimal.NewFromInt(100)},
			field: "buyer",
		},
		{
			name:  "buy with non-hex buyer",
			tx:    Transaction{Kind: KindBuy, Buyer: "0x" + strings.Repeat("Z", 40), Amount: decimal.NewFromInt(100)},
			field: "buyer",
		},
		{
			name:  "buy with short buyer",
			tx:    Transaction{Kind: KindBuy, Buyer: "0x" + strings.Repeat("a", 39), Amount: decimal.NewFromInt(100)},
			field: "buyer",
		},
		{
			name:  "buy with missing prefix",
			tx:    Transaction{Kind: KindBuy, Buyer: strings.Repeat("a", 42), Amount: decimal.NewFromInt(100)},
			field: "buyer",
		},
		{
			name:  "sell without seller",
			tx:    Transaction{Kind: KindSell, Amount: decimal.NewFromInt(100)},
			field: "seller",
		},
		{
			name:  "sell validates seller not buyer",
			tx:    Transaction{Kind: KindSell, Buyer: validBuyer, Amount: decimal.NewFromInt(100)},
			field: "seller",
		},
		{
			name:  "add_liquidity without provider",
			tx:    Transaction{Kind: KindAddLiquidity, Amount: decimal.NewFromInt(100)},
			field: "provider",
		},
		{
			name:  "remove_liquidity with too-long provider",
			tx:    Transaction{Kind: KindRemoveLiquidity, Provider: "0x" + strings.Repeat("c", 41), Amount: decimal.NewFromInt(100)},
			field: "provider",
		},
		{
			name:  "generic kind with bad from",
			tx:    Transaction{Kind: "transfer", From: "nonsense", Amount: decimal.NewFromInt(100)},
			field: "from",
		},
		{
			name:  "generic kind with bad to",
			tx:    Transaction{Kind: "transfer", To: "0x123", Amount: decimal.NewFromInt(100)},
			field: "to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, _ := newTestPool(t)

			_, err := pool.Submit(tt.tx)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)

			// Rejected submissions never mutate the ledger.
			assert.Equal(t, 0, pool.Len())
		})
	}
}

func TestSubmit_GenericKindWithoutAddressesAccepted(t *testing.T) {
	pool, _ := newTestPool(t)

	tx, err := pool.Submit(Transaction{Kind: "transfer", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
}

func TestSubmit_AssignsUniqueIDs(t *testing.T) {
	pool, _ := newTestPool(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tx, err := pool.Submit(Transaction{
			ID:     "client-supplied", // must be discarded
			Kind:   KindBuy,
			Buyer:  validBuyer,
			Amount: decimal.NewFromInt(int64(i)),
		})
		require.NoError(t, err)
		assert.NotEqual(t, "client-supplied", tx.ID)
		assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
	}
}

func TestSubmit_BoostExecutesImmediately(t *testing.T) {
	pool, settler := newTestPool(t)

	tx, err := pool.Submit(Transaction{Kind: KindSell, Seller: validSeller, Amount: decimal.NewFromInt(100), Boost: true})
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, tx.Status)

	// The settler never sees boosted transactions.
	assert.Empty(t, settler.Scheduled())
}

func TestSubmit_PendingThenSettles(t *testing.T) {
	pool, settler := newTestPool(t)

	tx, err := pool.Submit(Transaction{Kind: KindSell, Seller: validSeller, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)

	scheduled := settler.Scheduled()
	require.Len(t, scheduled, 1)
	assert.Equal(t, tx.ID, scheduled[0].TxID)
	assert.Equal(t, 10*time.Second, scheduled[0].Delay)

	settler.Fire(tx.ID)

	got, err := pool.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, got.Status)

	// Settling twice is a no-op.
	settler.Fire(tx.ID)
	got, err = pool.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, got.Status)
}

func TestDelete_BeforeSettlementPreventsExecution(t *testing.T) {
	pool, settler := newTestPool(t)

	tx, err := pool.Submit(Transaction{Kind: KindRemoveLiquidity, Provider: validProvider, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	require.NoError(t, pool.Delete(tx.ID))

	// The stale timer firing after deletion must not revive the transaction.
	settler.Fire(tx.ID)

	_, err = pool.Get(tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, pool.Len())
}

func TestDelete_Unknown(t *testing.T) {
	pool, _ := newTestPool(t)
	assert.ErrorIs(t, pool.Delete("nope"), ErrNotFound)
}

func TestGet_Unknown(t *testing.T) {
	pool, _ := newTestPool(t)
	_, err := pool.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	pool, _ := newTestPool(t)

	var ids []string
	for i := 0; i < 10; i++ {
		tx, err := pool.Submit(Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(int64(i))})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	listed := pool.List()
	require.Len(t, listed, 10)
	for i, tx := range listed {
		assert.Equal(t, ids[i], tx.ID)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(int64(i))))
	}
}

func TestTimerSettler_SettlesAfterDelay(t *testing.T) {
	pool := NewPool(20*time.Millisecond, NewTimerSettler(), nil, nil, testLogger())

	tx, err := pool.Submit(Transaction{Kind: KindSell, Seller: validSeller, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)

	require.Eventually(t, func() bool {
		got, err := pool.Get(tx.ID)
		return err == nil && got.Status == StatusExecuted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestConcurrentSubmitsAndReads(t *testing.T) {
	pool, _ := newTestPool(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := pool.Submit(Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(int64(n*100 + j))})
				assert.NoError(t, err)
				pool.List()
			}
		}(i)
	}
	wg.Wait()

	listed := pool.List()
	assert.Len(t, listed, 200)

	seen := make(map[string]bool)
	for _, tx := range listed {
		require.False(t, seen[tx.ID], "duplicate id")
		seen[tx.ID] = true
	}
}

func TestSettlementEventsPublished(t *testing.T) {
	settler := NewMockSettler()
	publisher := events.NewMockPublisher()
	pool := NewPool(10*time.Second, settler, publisher, nil, testLogger())

	boosted, err := pool.Submit(Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(50), Boost: true})
	require.NoError(t, err)

	pending, err := pool.Submit(Transaction{Kind: KindSell, Seller: validSeller, Amount: decimal.NewFromInt(75)})
	require.NoError(t, err)
	settler.Fire(pending.ID)

	// Publishing is detached from the submit and settle paths.
	require.Eventually(t, func() bool {
		return len(publisher.Settlements()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	byID := make(map[string]*events.SettlementEvent)
	for _, e := range publisher.Settlements() {
		byID[e.TxID] = e
	}
	require.Contains(t, byID, boosted.ID)
	assert.True(t, byID[boosted.ID].Boosted)
	require.Contains(t, byID, pending.ID)
	assert.False(t, byID[pending.ID].Boosted)
}

// blockingPublisher stalls settlement publishes until released.
type blockingPublisher struct {
	release   chan struct{}
	published chan struct{}
}

func (b *blockingPublisher) PublishSettlement(ctx context.Context, event *events.SettlementEvent) error {
	<-b.release
	close(b.published)
	return nil
}

func (b *blockingPublisher) PublishReorder(ctx context.Context, event *events.ReorderEvent) error {
	return nil
}

func (b *blockingPublisher) Close() error { return nil }

func TestSubmit_DoesNotBlockOnSlowPublisher(t *testing.T) {
	publisher := &blockingPublisher{release: make(chan struct{}), published: make(chan struct{})}
	pool := NewPool(10*time.Second, NewMockSettler(), publisher, nil, testLogger())

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		tx, err := pool.Submit(Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(50), Boost: true})
		assert.NoError(t, err)
		assert.Equal(t, StatusExecuted, tx.Status)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("submit blocked on event publishing")
	}

	// The event still goes out once the broker recovers.
	close(publisher.release)
	select {
	case <-publisher.published:
	case <-time.After(2 * time.Second):
		t.Fatal("settlement event was never published")
	}
}

func TestSettlementEventFailureDoesNotAffectLedger(t *testing.T) {
	settler := NewMockSettler()
	publisher := events.NewMockPublisher()
	publisher.SetPublishError(fmt.Errorf("nats down"))
	pool := NewPool(10*time.Second, settler, publisher, nil, testLogger())

	tx, err := pool.Submit(Transaction{Kind: KindBuy, Buyer: validBuyer, Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	settler.Fire(tx.ID)

	got, err := pool.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, got.Status)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x"+strings.Repeat("a", 40)))
	assert.True(t, ValidAddress("0x"+strings.Repeat("A", 40)))
	assert.True(t, ValidAddress("0x6a038a9481dd46186da3cf63e7e2d85398abc047"))
	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("0x"))
	assert.False(t, ValidAddress("0X"+strings.Repeat("a", 40)))
	assert.False(t, ValidAddress(" 0x"+strings.Repeat("a", 40)))
	assert.False(t, ValidAddress("0x"+strings.Repeat("a", 40)+" "))
}

package market

import (
	"io"
	"log/slog"
	"testing"

	"github.com/mevlab/dexsim/service/mempool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	txs []mempool.Transaction
}

func (s *stubLedger) List() []mempool.Transaction { return s.txs }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func executed(kind mempool.Kind, amount int64) mempool.Transaction {
	return mempool.Transaction{
		Kind:   kind,
		Amount: decimal.NewFromInt(amount),
		Status: mempool.StatusExecuted,
	}
}

func newTestEngine(ledger Ledger) *Engine {
	return NewEngine(ledger, decimal.NewFromInt(1000000), decimal.NewFromInt(1000000), 1.0, testLogger())
}

func TestSnapshot_EmptyLedger(t *testing.T) {
	engine := newTestEngine(&stubLedger{})

	snap := engine.Snapshot()
	assert.True(t, snap.Liquidity.Equal(decimal.NewFromInt(1000000)), "liquidity %s", snap.Liquidity)
	assert.True(t, snap.Volume.Equal(decimal.Zero))
	assert.Equal(t, 1.0, snap.CurrentPrice)
	require.Len(t, snap.History, 1)
	assert.Equal(t, 1.0, snap.History[0].Price)
}

func TestSnapshot_PendingTransactionsIgnored(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		{Kind: mempool.KindSell, Amount: decimal.NewFromInt(500000), Status: mempool.StatusPending},
		{Kind: mempool.KindRemoveLiquidity, Amount: decimal.NewFromInt(300000), Status: mempool.StatusPending},
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.True(t, snap.Liquidity.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, snap.Volume.Equal(decimal.Zero))
	assert.Equal(t, 1.0, snap.CurrentPrice)
}

func TestSnapshot_LiquiditySums(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindAddLiquidity, 200000),
		executed(mempool.KindRemoveLiquidity, 50000),
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.True(t, snap.Liquidity.Equal(decimal.NewFromInt(1150000)), "liquidity %s", snap.Liquidity)
	// 1150000/1000000 with a neutral trading factor.
	assert.Equal(t, 1.15, snap.CurrentPrice)
}

func TestSnapshot_VolumeSumsBuysAndSells(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindBuy, 1000),
		executed(mempool.KindSell, 2500),
		executed(mempool.KindAddLiquidity, 100000), // liquidity moves are not volume
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.True(t, snap.Volume.Equal(decimal.NewFromInt(3500)), "volume %s", snap.Volume)
}

func TestSnapshot_TradingAndLiquidityFactorsCombine(t *testing.T) {
	// sell 900000 of a 1000000 circulation: factor 1 - 0.01*0.9 = 0.991.
	// add_liquidity 200000: liquidity factor 1.2.
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindSell, 900000),
		executed(mempool.KindAddLiquidity, 200000),
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.InDelta(t, 1.1892, snap.CurrentPrice, 1e-9)
}

func TestSnapshot_PriceRoundedToFourPlaces(t *testing.T) {
	// buy 123456: factor 1 + 0.01*0.123456 = 1.00123456, rounds to 1.0012.
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindBuy, 123456),
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.Equal(t, 1.0012, snap.CurrentPrice)
}

func TestSnapshot_FullyDrainedLiquidityZeroesPrice(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindRemoveLiquidity, 1000000),
	}}
	engine := newTestEngine(ledger)

	snap := engine.Snapshot()
	assert.True(t, snap.Liquidity.Equal(decimal.Zero))
	assert.Equal(t, 0.0, snap.CurrentPrice)
}

func TestSnapshot_HistoryCapped(t *testing.T) {
	engine := newTestEngine(&stubLedger{})

	var snap Snapshot
	for i := 0; i < historyCap+10; i++ {
		snap = engine.Snapshot()
	}
	assert.Len(t, snap.History, historyCap)
}

func TestCurrentPrice(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		executed(mempool.KindAddLiquidity, 500000),
	}}
	engine := newTestEngine(ledger)

	price, err := engine.CurrentPrice()
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
}

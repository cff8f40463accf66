package watcher

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

func newTestScanner(ledger Ledger) *Scanner {
	return NewScanner(ledger, decimal.NewFromInt(150000), decimal.NewFromInt(800000), nil, testLogger())
}

func TestFlagged_ThresholdsInclusive(t *testing.T) {
	scanner := newTestScanner(&stubLedger{})

	tests := []struct {
		name   string
		kind   mempool.Kind
		amount string
		want   bool
	}{
		{"removal at threshold", mempool.KindRemoveLiquidity, "150000", true},
		{"removal above threshold", mempool.KindRemoveLiquidity, "400000", true},
		{"removal just under", mempool.KindRemoveLiquidity, "149999.99", false},
		{"sell at threshold", mempool.KindSell, "800000", true},
		{"sell above threshold", mempool.KindSell, "1200000", true},
		{"sell just under", mempool.KindSell, "799999.99", false},
		{"sell under removal threshold not cross-checked", mempool.KindSell, "150000", false},
		{"large buy never flagged", mempool.KindBuy, "5000000", false},
		{"large add never flagged", mempool.KindAddLiquidity, "5000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mempool.Transaction{Kind: tt.kind, Amount: decimal.RequireFromString(tt.amount)}
			assert.Equal(t, tt.want, scanner.Flagged(&tx))
		})
	}
}

func TestScan_ReturnsFlaggedInLedgerOrder(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		{ID: "a", Kind: mempool.KindSell, Amount: decimal.NewFromInt(900000)},
		{ID: "b", Kind: mempool.KindBuy, Amount: decimal.NewFromInt(900000)},
		{ID: "c", Kind: mempool.KindRemoveLiquidity, Amount: decimal.NewFromInt(150000)},
		{ID: "d", Kind: mempool.KindSell, Amount: decimal.NewFromInt(100)},
	}}
	scanner := newTestScanner(ledger)

	flagged := scanner.Scan()
	require.Len(t, flagged, 2)
	assert.Equal(t, "a", flagged[0].ID)
	assert.Equal(t, "c", flagged[1].ID)
}

func TestScan_FlagsPendingTransactions(t *testing.T) {
	ledger := &stubLedger{txs: []mempool.Transaction{
		{ID: "pending-whale", Kind: mempool.KindSell, Amount: decimal.NewFromInt(800000), Status: mempool.StatusPending},
	}}
	scanner := newTestScanner(ledger)

	flagged := scanner.Scan()
	require.Len(t, flagged, 1)
	assert.Equal(t, "pending-whale", flagged[0].ID)
}

func TestScan_EmptyLedger(t *testing.T) {
	scanner := newTestScanner(&stubLedger{})
	assert.Empty(t, scanner.Scan())
}

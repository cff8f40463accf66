package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host state can't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDR", "LOG_LEVEL", "NATS_URL",
		"INITIAL_LIQUIDITY", "TOTAL_CIRCULATION", "BASE_PRICE",
		"SETTLEMENT_DELAY", "INTERLEG_DELAY",
		"LIQUIDITY_THRESHOLD", "SELL_THRESHOLD", "SNIPER_ADDRESS",
		"TRADER_CASH", "TRADER_TOKENS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.NATSURL)
	assert.True(t, cfg.InitialLiquidity.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, cfg.TotalCirculation.Equal(decimal.NewFromInt(1000000)))
	assert.Equal(t, 1.0, cfg.BasePrice)
	assert.Equal(t, 10*time.Second, cfg.SettlementDelay)
	assert.Equal(t, 15*time.Second, cfg.InterLegDelay)
	assert.True(t, cfg.LiquidityThreshold.Equal(decimal.NewFromInt(150000)))
	assert.True(t, cfg.SellThreshold.Equal(decimal.NewFromInt(800000)))
	assert.Equal(t, "0x6a038a9481dd46186da3cf63e7e2d85398abc047", cfg.SniperAddress)
	assert.True(t, cfg.TraderCash.Equal(decimal.NewFromInt(100000)))
	assert.True(t, cfg.TraderTokens.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("SETTLEMENT_DELAY", "100ms")
	t.Setenv("INTERLEG_DELAY", "250ms")
	t.Setenv("SELL_THRESHOLD", "500000.50")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 100*time.Millisecond, cfg.SettlementDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.InterLegDelay)
	assert.True(t, cfg.SellThreshold.Equal(decimal.RequireFromString("500000.50")))
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"bad duration", "SETTLEMENT_DELAY", "soon", "SETTLEMENT_DELAY"},
		{"negative duration", "INTERLEG_DELAY", "-5s", "INTERLEG_DELAY"},
		{"bad decimal", "SELL_THRESHOLD", "lots", "SELL_THRESHOLD"},
		{"zero liquidity", "INITIAL_LIQUIDITY", "0", "INITIAL_LIQUIDITY must be positive"},
		{"negative circulation", "TOTAL_CIRCULATION", "-1", "TOTAL_CIRCULATION must be positive"},
		{"bad sniper address", "SNIPER_ADDRESS", "0xnope", "SNIPER_ADDRESS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_InterLegMustExceedSettlement(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTLEMENT_DELAY", "15s")
	t.Setenv("INTERLEG_DELAY", "15s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERLEG_DELAY")
}

func TestLoad_AggregatesErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTLEMENT_DELAY", "soon")
	t.Setenv("SELL_THRESHOLD", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SETTLEMENT_DELAY")
	assert.Contains(t, err.Error(), "SELL_THRESHOLD")
}

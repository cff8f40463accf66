package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mevlab/dexsim/service/mempool"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment
// variables. All required fields are validated at startup to ensure
// fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// NATS configuration; empty disables event publishing.
	NATSURL string

	// Market parameters
	InitialLiquidity decimal.Decimal
	TotalCirculation decimal.Decimal
	BasePrice        float64

	// Settlement configuration
	SettlementDelay time.Duration

	// Reordering configuration
	InterLegDelay      time.Duration
	LiquidityThreshold decimal.Decimal
	SellThreshold      decimal.Decimal
	SniperAddress      string

	// Trader portfolio configuration
	TraderCash   decimal.Decimal
	TraderTokens decimal.Decimal

	// Risk scorer configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads configuration from environment variables and validates all
// fields. Returns an error aggregating every invalid setting.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// NATS configuration (optional)
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Market parameters
	var err error
	if cfg.InitialLiquidity, err = parseDecimal("INITIAL_LIQUIDITY", "1000000"); err != nil {
		errs = append(errs, err)
	} else if !cfg.InitialLiquidity.IsPositive() {
		errs = append(errs, fmt.Errorf("INITIAL_LIQUIDITY must be positive"))
	}

	if cfg.TotalCirculation, err = parseDecimal("TOTAL_CIRCULATION", "1000000"); err != nil {
		errs = append(errs, err)
	} else if !cfg.TotalCirculation.IsPositive() {
		errs = append(errs, fmt.Errorf("TOTAL_CIRCULATION must be positive"))
	}

	if base, err := parseDecimal("BASE_PRICE", "1.0"); err != nil {
		errs = append(errs, err)
	} else {
		cfg.BasePrice = base.InexactFloat64()
	}

	// Settlement configuration
	if cfg.SettlementDelay, err = parseDuration("SETTLEMENT_DELAY", "10s"); err != nil {
		errs = append(errs, err)
	}

	// Reordering configuration
	if cfg.InterLegDelay, err = parseDuration("INTERLEG_DELAY", "15s"); err != nil {
		errs = append(errs, err)
	}
	if cfg.SettlementDelay > 0 && cfg.InterLegDelay > 0 && cfg.InterLegDelay <= cfg.SettlementDelay {
		// The back leg must land after the victim's natural settlement.
		errs = append(errs, fmt.Errorf("INTERLEG_DELAY (%s) must exceed SETTLEMENT_DELAY (%s)", cfg.InterLegDelay, cfg.SettlementDelay))
	}

	if cfg.LiquidityThreshold, err = parseDecimal("LIQUIDITY_THRESHOLD", "150000"); err != nil {
		errs = append(errs, err)
	}
	if cfg.SellThreshold, err = parseDecimal("SELL_THRESHOLD", "800000"); err != nil {
		errs = append(errs, err)
	}

	cfg.SniperAddress = getEnvOrDefault("SNIPER_ADDRESS", "0x6a038a9481dd46186da3cf63e7e2d85398abc047")
	if !mempool.ValidAddress(cfg.SniperAddress) {
		errs = append(errs, fmt.Errorf("SNIPER_ADDRESS is not a valid hex address"))
	}

	// Trader portfolio configuration
	if cfg.TraderCash, err = parseDecimal("TRADER_CASH", "100000"); err != nil {
		errs = append(errs, err)
	}
	if cfg.TraderTokens, err = parseDecimal("TRADER_TOKENS", "5000"); err != nil {
		errs = append(errs, err)
	}

	// Risk scorer configuration (key may be empty; the scorer then fails
	// closed and analysis endpoints serve the fallback assessment)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", "gpt-4o")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// MustLoad loads configuration and exits the process on failure.
// Use this in main() for fail-fast startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// getEnvOrDefault returns the environment variable value or a default if
// not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration environment variable with a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration (e.g. '10s'): %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// parseDecimal parses a decimal environment variable with a default.
func parseDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := getEnvOrDefault(key, defaultValue)
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a valid decimal number: %w", key, err)
	}
	return d, nil
}

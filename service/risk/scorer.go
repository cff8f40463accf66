// Package risk wraps the natural-language risk analysis of ledger activity
// behind a narrow capability: hand the scorer transactions, get back a
// score, a level, and an explanation. The scorer may fail; callers degrade
// to Fallback() and never surface the failure as their own.
package risk

import (
	"context"

	"github.com/mevlab/dexsim/service/mempool"
)

// Risk levels the scorer may return. Unknown is reserved for the fallback.
const (
	LevelLow     = "Low"
	LevelMedium  = "Medium"
	LevelHigh    = "High"
	LevelUnknown = "Unknown"
)

// Assessment is the scorer's verdict over a set of transactions.
type Assessment struct {
	// RiskScore is 0 (lowest) to 100 (highest).
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`
	// Explanation is the model's reasoning, free text.
	Explanation string `json:"explanation"`
}

// Scorer analyzes transactions for rug-pull-shaped activity. Implementations
// have exactly one failure mode: an error, which callers must swap for
// Fallback().
type Scorer interface {
	Score(ctx context.Context, txs []mempool.Transaction) (*Assessment, error)
}

// Fallback is the assessment used whenever scoring fails.
func Fallback() *Assessment {
	return &Assessment{
		RiskScore:   0,
		RiskLevel:   LevelUnknown,
		Explanation: "Failed to analyze transactions.",
	}
}

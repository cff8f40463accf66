package frontrun

import (
	"errors"
	"fmt"
)

// ErrThresholdNotMet means the victim transaction's amount no longer crosses
// its kind's threshold by the time the orchestrator refetched it.
var ErrThresholdNotMet = errors.New("transaction no longer meets its threshold")

// ErrUnsupportedStrategy means the flagged transaction's kind has no
// reordering strategy.
var ErrUnsupportedStrategy = errors.New("transaction kind matches no reordering strategy")

// Legs of a reordering run.
const (
	LegFront = "front_run"
	LegBack  = "back_run"
)

// LegError reports which leg of a reordering run failed. A failed back-run
// is not rolled back; the front leg stays executed in the ledger and the
// inconsistency is reported, not corrected.
type LegError struct {
	Strategy string
	Leg      string
	Err      error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("%s %s leg failed: %v", e.Strategy, e.Leg, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}

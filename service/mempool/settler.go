package mempool

import "time"

// Settler schedules the delayed pending-to-executed transition for a single
// transaction. Schedule must not block the caller; fire is invoked at most
// once per call, after delay. There is no cancel: the fire callback checks
// existence and status itself, so a transaction deleted before the timer
// goes off is simply skipped.
type Settler interface {
	Schedule(txID string, delay time.Duration, fire func(txID string))
}

// TimerSettler is the production Settler, one time.AfterFunc per scheduled
// transaction. Timers for different transactions are independent; nothing is
// shared, so concurrent settlements cannot interfere.
type TimerSettler struct{}

// NewTimerSettler creates the timer-based settler.
func NewTimerSettler() *TimerSettler {
	return &TimerSettler{}
}

// Schedule arms a one-shot timer that invokes fire after delay.
func (s *TimerSettler) Schedule(txID string, delay time.Duration, fire func(txID string)) {
	time.AfterFunc(delay, func() { fire(txID) })
}

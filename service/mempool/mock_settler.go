package mempool

import (
	"sync"
	"time"
)

// MockSettler is a Settler for tests. It records every schedule call and
// lets the test fire settlements deterministically instead of waiting on
// wall-clock timers.
type MockSettler struct {
	mu        sync.Mutex
	scheduled []ScheduledSettlement
}

// ScheduledSettlement is one recorded Schedule call.
type ScheduledSettlement struct {
	TxID  string
	Delay time.Duration
	fire  func(txID string)
}

// NewMockSettler creates a mock settler for testing.
func NewMockSettler() *MockSettler {
	return &MockSettler{}
}

// Schedule records the call without arming any timer.
func (m *MockSettler) Schedule(txID string, delay time.Duration, fire func(txID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, ScheduledSettlement{TxID: txID, Delay: delay, fire: fire})
}

// Fire invokes the recorded fire callback for txID, as the timer would.
// Firing an id that was never scheduled is a no-op. Safe to call twice.
func (m *MockSettler) Fire(txID string) {
	m.mu.Lock()
	var fire func(string)
	for _, s := range m.scheduled {
		if s.TxID == txID {
			fire = s.fire
			break
		}
	}
	m.mu.Unlock()

	if fire != nil {
		fire(txID)
	}
}

// FireAll fires every recorded settlement in schedule order.
func (m *MockSettler) FireAll() {
	m.mu.Lock()
	scheduled := make([]ScheduledSettlement, len(m.scheduled))
	copy(scheduled, m.scheduled)
	m.mu.Unlock()

	for _, s := range scheduled {
		s.fire(s.TxID)
	}
}

// Scheduled returns the recorded schedule calls.
func (m *MockSettler) Scheduled() []ScheduledSettlement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScheduledSettlement, len(m.scheduled))
	copy(out, m.scheduled)
	return out
}

package risk

import (
	"context"
	"sync"

	"github.com/mevlab/dexsim/service/mempool"
)

// MockScorer is a deterministic Scorer for tests.
type MockScorer struct {
	mu         sync.Mutex
	assessment *Assessment
	err        error
	calls      int
}

// NewMockScorer creates a mock that returns the given assessment.
func NewMockScorer(assessment *Assessment) *MockScorer {
	return &MockScorer{assessment: assessment}
}

// SetError makes subsequent Score calls fail with err.
func (m *MockScorer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Score returns the configured assessment or error.
func (m *MockScorer) Score(ctx context.Context, txs []mempool.Transaction) (*Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.assessment, nil
}

// Calls returns how many times Score was invoked.
func (m *MockScorer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

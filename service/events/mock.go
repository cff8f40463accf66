package events

import (
	"context"
	"sync"
)

// MockPublisher is a mock implementation of Publisher for testing.
type MockPublisher struct {
	mu          sync.RWMutex
	settlements []*SettlementEvent
	reorders    []*ReorderEvent
	publishErr  error
	closed      bool
}

// NewMockPublisher creates a new mock publisher for testing.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// SetPublishError makes every subsequent publish call fail with err.
func (m *MockPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// PublishSettlement records the event and returns any configured error.
func (m *MockPublisher) PublishSettlement(ctx context.Context, event *SettlementEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.settlements = append(m.settlements, event)
	return nil
}

// PublishReorder records the event and returns any configured error.
func (m *MockPublisher) PublishReorder(ctx context.Context, event *ReorderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.reorders = append(m.reorders, event)
	return nil
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Settlements returns all recorded settlement events.
func (m *MockPublisher) Settlements() []*SettlementEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*SettlementEvent, len(m.settlements))
	copy(out, m.settlements)
	return out
}

// Reorders returns all recorded reorder events.
func (m *MockPublisher) Reorders() []*ReorderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ReorderEvent, len(m.reorders))
	copy(out, m.reorders)
	return out
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

package testutil

import (
	"fmt"
	"sync"
)

// MockGenerator hands out identifiers from a fixed list, then falls back to
// "id-N", and counts how often it was called
type MockGenerator struct {
	mu sync.Mutex

	ids   []string
	calls int
}

// MockOption is a functional option for configuring MockGenerator
type MockOption func(*MockGenerator)

// WithIDs sets the identifiers returned first, in order
func WithIDs(ids ...string) MockOption {
	return func(m *MockGenerator) {
		m.ids = append(m.ids, ids...)
	}
}

// NewMockGenerator creates a new mock generator with the given options
func NewMockGenerator(opts ...MockOption) *MockGenerator {
	mock := &MockGenerator{}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

// NewID returns the next identifier
func (m *MockGenerator) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.calls <= len(m.ids) {
		return m.ids[m.calls-1]
	}

	return fmt.Sprintf("id-%d", m.calls)
}

// Calls returns how many identifiers were handed out
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// MockRotationStateStore is a mock implementation of RotationStateStore for testing
type MockRotationStateStore struct {
	mu     sync.RWMutex
	states map[string]*domain.RotationState
}

// NewMockRotationStateStore creates a new MockRotationStateStore
func NewMockRotationStateStore() *MockRotationStateStore {
	return &MockRotationStateStore{
		states: make(map[string]*domain.RotationState),
	}
}

func (m *MockRotationStateStore) Save(ctx context.Context, state *domain.RotationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.Index] = state
	return nil
}

func (m *MockRotationStateStore) Get(ctx context.Context, index string) (*domain.RotationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[index]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

func (m *MockRotationStateStore) List(ctx context.Context) ([]*domain.RotationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RotationState
	for _, state := range m.states {
		result = append(result, state)
	}
	return result, nil
}

func (m *MockRotationStateStore) Delete(ctx context.Context, index string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, index)
	return nil
}

func (m *MockRotationStateStore) UpdateStatus(ctx context.Context, index string, status domain.RotationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[index]
	if !ok {
		return domain.ErrNotFound
	}
	state.Status = status
	return nil
}

// Helper methods for testing

func (m *MockRotationStateStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]*domain.RotationState)
}

func (m *MockRotationStateStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

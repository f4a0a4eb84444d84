package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// MockTypeStore is a mock implementation of TypeStore for testing
type MockTypeStore struct {
	mu    sync.RWMutex
	types map[string]*domain.TypeDescriptor
}

// NewMockTypeStore creates a new MockTypeStore
func NewMockTypeStore() *MockTypeStore {
	return &MockTypeStore{
		types: make(map[string]*domain.TypeDescriptor),
	}
}

func (m *MockTypeStore) Save(ctx context.Context, desc *domain.TypeDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[desc.Name] = desc
	return nil
}

func (m *MockTypeStore) Get(ctx context.Context, name string) (*domain.TypeDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	desc, ok := m.types[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return desc, nil
}

func (m *MockTypeStore) List(ctx context.Context) ([]*domain.TypeDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]*domain.TypeDescriptor, 0, len(names))
	for _, name := range names {
		result = append(result, m.types[name])
	}
	return result, nil
}

func (m *MockTypeStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[name]; !ok {
		return domain.ErrNotFound
	}
	delete(m.types, name)
	return nil
}

// Helper methods for testing

func (m *MockTypeStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = make(map[string]*domain.TypeDescriptor)
}

func (m *MockTypeStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.types)
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Ensure MockStorageManager implements StorageManager
var _ driven.StorageManager = (*MockStorageManager)(nil)

// MockStorageManager is a mock implementation of StorageManager for testing
type MockStorageManager struct {
	mu     sync.Mutex
	tables []string

	// EnsureErr is returned by EnsureIndexedColumn when set
	EnsureErr error
}

// NewMockStorageManager creates a new MockStorageManager
func NewMockStorageManager() *MockStorageManager {
	return &MockStorageManager{}
}

func (m *MockStorageManager) EnsureIndexedColumn(ctx context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnsureErr != nil {
		return m.EnsureErr
	}
	m.tables = append(m.tables, table)
	return nil
}

func (m *MockStorageManager) Ping(ctx context.Context) error {
	return nil
}

// Tables returns every table EnsureIndexedColumn was called with
func (m *MockStorageManager) Tables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tables...)
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Ensure MockSchemaSource implements SchemaSource
var _ driven.SchemaSource = (*MockSchemaSource)(nil)

// MockSchemaSource is a mock implementation of SchemaSource for testing
type MockSchemaSource struct {
	mu       sync.RWMutex
	snapshot *domain.SchemaSnapshot

	// SnapshotErr is returned by Snapshot when set
	SnapshotErr error
}

// NewMockSchemaSource creates a mock source serving the given snapshot
func NewMockSchemaSource(snapshot *domain.SchemaSnapshot) *MockSchemaSource {
	return &MockSchemaSource{snapshot: snapshot}
}

func (m *MockSchemaSource) Snapshot(ctx context.Context) (*domain.SchemaSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	return m.snapshot, nil
}

// SetSnapshot swaps the served snapshot (for test setup)
func (m *MockSchemaSource) SetSnapshot(snapshot *domain.SchemaSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
}

package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Ensure MockSearchDaemon implements SearchDaemon
var _ driven.SearchDaemon = (*MockSearchDaemon)(nil)

// AttributeUpdate records one UpdateAttributes call for assertions.
type AttributeUpdate struct {
	Indexes []string
	Attr    string
	Values  map[domain.DocumentID]int64
}

// MockSearchDaemon is a mock implementation of SearchDaemon for testing.
// It records every control-channel call and supports error injection.
type MockSearchDaemon struct {
	mu        sync.Mutex
	updates   []AttributeUpdate
	reindexes [][]string

	// Custom behavior hooks (optional)
	UpdateErr  error
	ReindexErr error
	SearchFn   func(indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
	ExcerptsFn func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error)
	HealthErr  error
}

// NewMockSearchDaemon creates a new MockSearchDaemon
func NewMockSearchDaemon() *MockSearchDaemon {
	return &MockSearchDaemon{}
}

func (m *MockSearchDaemon) UpdateAttributes(ctx context.Context, indexes []string, attr string, values map[domain.DocumentID]int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return 0, m.UpdateErr
	}
	copied := make(map[domain.DocumentID]int64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	m.updates = append(m.updates, AttributeUpdate{
		Indexes: append([]string(nil), indexes...),
		Attr:    attr,
		Values:  copied,
	})
	return len(values), nil
}

func (m *MockSearchDaemon) TriggerReindex(ctx context.Context, indexes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReindexErr != nil {
		return m.ReindexErr
	}
	m.reindexes = append(m.reindexes, append([]string(nil), indexes...))
	return nil
}

func (m *MockSearchDaemon) Search(ctx context.Context, indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	if m.SearchFn != nil {
		return m.SearchFn(indexes, query, opts)
	}
	return &domain.SearchResult{Query: query, Indexes: indexes}, nil
}

func (m *MockSearchDaemon) BuildExcerpts(ctx context.Context, index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
	if m.ExcerptsFn != nil {
		return m.ExcerptsFn(index, docs, words, opts)
	}
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = strings.ReplaceAll(doc, words, opts.BeforeMatch+words+opts.AfterMatch)
	}
	return out, nil
}

func (m *MockSearchDaemon) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// Helper methods for testing

func (m *MockSearchDaemon) Updates() []AttributeUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AttributeUpdate(nil), m.updates...)
}

func (m *MockSearchDaemon) Reindexes() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.reindexes...)
}

func (m *MockSearchDaemon) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = nil
	m.reindexes = nil
}

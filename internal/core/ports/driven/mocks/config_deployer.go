package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Ensure MockConfigDeployer implements ConfigDeployer
var _ driven.ConfigDeployer = (*MockConfigDeployer)(nil)

// MockConfigDeployer is a mock implementation of ConfigDeployer for testing
type MockConfigDeployer struct {
	mu      sync.Mutex
	deploys []*domain.IndexConfiguration

	// Custom behavior hooks (optional)
	RenderFn  func(cfg *domain.IndexConfiguration) (string, error)
	DeployErr error
	HealthErr error
}

// NewMockConfigDeployer creates a new MockConfigDeployer
func NewMockConfigDeployer() *MockConfigDeployer {
	return &MockConfigDeployer{}
}

func (m *MockConfigDeployer) Render(cfg *domain.IndexConfiguration) (string, error) {
	if m.RenderFn != nil {
		return m.RenderFn(cfg)
	}
	return "# mock configuration\n", nil
}

func (m *MockConfigDeployer) Deploy(ctx context.Context, cfg *domain.IndexConfiguration) (*domain.DeployResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeployErr != nil {
		return nil, m.DeployErr
	}
	m.deploys = append(m.deploys, cfg)
	return &domain.DeployResult{
		Success: true,
		Indexes: domain.IndexNames(cfg.AllIndexes()),
	}, nil
}

func (m *MockConfigDeployer) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// Helper methods for testing

func (m *MockConfigDeployer) Deploys() []*domain.IndexConfiguration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.IndexConfiguration(nil), m.deploys...)
}

func (m *MockConfigDeployer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deploys = nil
}

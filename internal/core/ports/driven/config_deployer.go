package driven

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// ConfigDeployer renders a built index configuration into the daemon's
// configuration format and uploads it to the indexer agent. Only the
// deployer knows backend syntax; the core hands it structured declarations.
type ConfigDeployer interface {
	// Render produces the daemon configuration file for the given build
	// without touching the agent. Used for previews and deploys alike.
	Render(cfg *domain.IndexConfiguration) (string, error)

	// Deploy renders and uploads the configuration to the indexer agent.
	Deploy(ctx context.Context, cfg *domain.IndexConfiguration) (*domain.DeployResult, error)

	// HealthCheck verifies the indexer agent is reachable.
	HealthCheck(ctx context.Context) error
}

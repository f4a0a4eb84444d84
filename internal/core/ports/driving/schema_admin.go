package driving

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// SchemaAdminService manages type registrations and drives configuration
// builds: snapshot, field mapping, rendering, deploy, registry rebuild.
type SchemaAdminService interface {
	// RegisterType creates or updates a type registration.
	// ErrSchemaReadOnly when the schema source is declarative.
	RegisterType(ctx context.Context, desc *domain.TypeDescriptor) error

	// GetType retrieves a registration by type name
	GetType(ctx context.Context, name string) (*domain.TypeDescriptor, error)

	// ListTypes retrieves all registered types
	ListTypes(ctx context.Context) ([]*domain.TypeDescriptor, error)

	// DeregisterType removes a type registration.
	// ErrSchemaReadOnly when the schema source is declarative.
	DeregisterType(ctx context.Context, name string) error

	// BuildConfiguration runs the full build pipeline and swaps the
	// topology registry on success.
	BuildConfiguration(ctx context.Context) (*domain.DeployResult, error)

	// PreviewConfiguration renders the configuration without deploying.
	PreviewConfiguration(ctx context.Context) (string, error)
}

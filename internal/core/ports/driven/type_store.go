package driven

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// TypeStore handles registered-type persistence (PostgreSQL)
type TypeStore interface {
	// Save creates or updates a type registration
	Save(ctx context.Context, desc *domain.TypeDescriptor) error

	// Get retrieves a registration by type name
	Get(ctx context.Context, name string) (*domain.TypeDescriptor, error)

	// List retrieves all registered types
	List(ctx context.Context) ([]*domain.TypeDescriptor, error)

	// Delete removes a type registration
	Delete(ctx context.Context, name string) error
}

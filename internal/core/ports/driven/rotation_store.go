package driven

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// RotationStateStore handles per-index rotation bookkeeping (PostgreSQL)
type RotationStateStore interface {
	// Save creates or updates rotation state
	Save(ctx context.Context, state *domain.RotationState) error

	// Get retrieves rotation state for an index
	Get(ctx context.Context, index string) (*domain.RotationState, error)

	// List retrieves rotation states for all indexes
	List(ctx context.Context) ([]*domain.RotationState, error)

	// Delete deletes rotation state for an index
	Delete(ctx context.Context, index string) error

	// UpdateStatus updates only the status field
	UpdateStatus(ctx context.Context, index string, status domain.RotationStatus) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// RotationService coordinates index rebuilds
type RotationService interface {
	// RotateDeltas rebuilds every delta index
	RotateDeltas(ctx context.Context) (*domain.RotationResult, error)

	// RebuildAll rebuilds every index, primary and delta. This is the path
	// that clears accumulated dirty flags.
	RebuildAll(ctx context.Context) (*domain.RotationResult, error)

	// RebuildType rebuilds the indexes covering one registered type
	RebuildType(ctx context.Context, typeName string) (*domain.RotationResult, error)

	// GetRotationState retrieves the rotation state for an index
	GetRotationState(ctx context.Context, index string) (*domain.RotationState, error)

	// ListRotationStates retrieves rotation states for all indexes
	ListRotationStates(ctx context.Context) ([]*domain.RotationState, error)
}

// Scheduler manages periodic rotation scheduling
type Scheduler interface {
	// Start begins the scheduler loop
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler
	Stop()

	// EnsureDefaults installs the default schedule entries if missing
	EnsureDefaults(ctx context.Context) error

	// TriggerNow immediately enqueues a scheduled task, ignoring its
	// schedule
	TriggerNow(ctx context.Context, id string) (*domain.Task, error)
}

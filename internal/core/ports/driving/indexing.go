package driving

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// IndexingCoordinator keeps the two-tier index aligned with record
// mutations: mark the primary copy dirty, rebuild the delta tier.
type IndexingCoordinator interface {
	// OnWrite handles a record insert or update. No-op while bulk mode is
	// active.
	OnWrite(ctx context.Context, record domain.RecordRef) error

	// OnDelete handles a record delete. Same flow as OnWrite: the primary
	// copy is marked dirty and the delta tier rebuilt without the row.
	OnDelete(ctx context.Context, record domain.RecordRef) error

	// Reindex triggers a rebuild of exactly the given indexes.
	Reindex(ctx context.Context, indexes []domain.IndexDescriptor) error

	// EnterBulkMode suspends synchronization. Idempotent.
	EnterBulkMode()

	// ExitBulkMode resumes synchronization and rebuilds every configured
	// index, primary and delta, because dirty tracking was suspended.
	ExitBulkMode(ctx context.Context) error

	// BulkMode reports whether synchronization is currently suspended.
	BulkMode() bool
}

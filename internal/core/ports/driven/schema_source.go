package driven

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// SchemaSource builds the schema-description snapshot the mapper consumes:
// every registered type with its parent link, source table, own fields
// (name to storage type), own relations, kind overrides and many-to-many
// whitelist. Implementations read a declaration file or introspect the
// relational store.
type SchemaSource interface {
	// Snapshot loads the full schema description. Called at configuration
	// build time, never on the per-write path.
	Snapshot(ctx context.Context) (*domain.SchemaSnapshot, error)
}

// WatchableSchemaSource is implemented by sources that can report external
// schema changes (e.g. an edited declaration file).
type WatchableSchemaSource interface {
	SchemaSource

	// Watch returns a channel that receives after every detected change.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

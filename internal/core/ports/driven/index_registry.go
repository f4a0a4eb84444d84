package driven

import (
	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// IndexRegistry is the process-wide topology registry: which configured
// indexes cover which registered type. Populated wholesale by the
// configuration builder; read-only to everyone else. An index covers a type
// when its declared type equals the type or any of its ancestors.
type IndexRegistry interface {
	// Rebuild swaps in a new schema snapshot and index configuration
	// atomically. The previous topology is discarded.
	Rebuild(snapshot *domain.SchemaSnapshot, cfg *domain.IndexConfiguration)

	// Snapshot returns the schema snapshot of the last rebuild, or nil.
	Snapshot() *domain.SchemaSnapshot

	// Configuration returns the configuration of the last rebuild, or nil.
	Configuration() *domain.IndexConfiguration

	// IndexesFor resolves every index covering the named type, primaries
	// first. ErrTypeNotRegistered when the type is unknown to the current
	// snapshot; ErrNoIndexes when the type is registered but no built index
	// covers it.
	IndexesFor(typeName string) ([]domain.IndexDescriptor, error)

	// PrimaryIndexesFor filters IndexesFor down to primary indexes.
	PrimaryIndexesFor(typeName string) ([]domain.IndexDescriptor, error)

	// DeltaIndexesFor filters IndexesFor down to delta indexes.
	DeltaIndexesFor(typeName string) ([]domain.IndexDescriptor, error)

	// AllIndexes returns every configured index, or nil before the first
	// rebuild.
	AllIndexes() []domain.IndexDescriptor

	// Ready reports whether a configuration has been built.
	Ready() bool
}

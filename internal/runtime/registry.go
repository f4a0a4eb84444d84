package runtime

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Registry is the process-wide index topology: which configured indexes
// cover which registered type. The configuration builder swaps its contents
// wholesale; everything else only reads. Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	snapshot *domain.SchemaSnapshot
	config   *domain.IndexConfiguration

	// byType is derived at rebuild time: covering indexes per type name,
	// primaries before deltas, chain order within each tier.
	byType map[string][]domain.IndexDescriptor
}

// Ensure Registry implements IndexRegistry
var _ driven.IndexRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry. Every resolution fails with
// ErrNoIndexes until the first Rebuild.
func NewRegistry() *Registry {
	return &Registry{}
}

// Rebuild swaps in a new snapshot and configuration atomically and
// recomputes the per-type covering sets.
func (r *Registry) Rebuild(snapshot *domain.SchemaSnapshot, cfg *domain.IndexConfiguration) {
	byType := make(map[string][]domain.IndexDescriptor)

	if snapshot != nil && cfg != nil {
		owned := make(map[string][]domain.IndexDescriptor)
		for _, src := range cfg.Sources {
			owned[src.Type] = src.Indexes()
		}

		for _, name := range snapshot.TypeNames() {
			chain, err := snapshot.Chain(name)
			if err != nil {
				// The builder validates snapshots before rebuilding, so a
				// broken chain here only loses that one type's resolution.
				continue
			}

			var primaries, deltas []domain.IndexDescriptor
			for _, t := range chain {
				for _, idx := range owned[t.Name] {
					if idx.Delta {
						deltas = append(deltas, idx)
					} else {
						primaries = append(primaries, idx)
					}
				}
			}
			if len(primaries)+len(deltas) > 0 {
				byType[name] = append(primaries, deltas...)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
	r.config = cfg
	r.byType = byType
}

// Snapshot returns the schema snapshot of the last rebuild, or nil.
func (r *Registry) Snapshot() *domain.SchemaSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Configuration returns the configuration of the last rebuild, or nil.
func (r *Registry) Configuration() *domain.IndexConfiguration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// IndexesFor resolves every index covering the named type: the type's own
// pairs plus its registered ancestors', primaries first.
func (r *Registry) IndexesFor(typeName string) ([]domain.IndexDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.config == nil || r.snapshot == nil {
		return nil, fmt.Errorf("%w: configuration has not been built", domain.ErrNoIndexes)
	}
	if _, ok := r.snapshot.Type(typeName); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTypeNotRegistered, typeName)
	}
	indexes := r.byType[typeName]
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: no configured index covers type %q", domain.ErrNoIndexes, typeName)
	}
	return indexes, nil
}

// PrimaryIndexesFor filters IndexesFor down to primary indexes.
func (r *Registry) PrimaryIndexesFor(typeName string) ([]domain.IndexDescriptor, error) {
	indexes, err := r.IndexesFor(typeName)
	if err != nil {
		return nil, err
	}
	return domain.FilterDelta(indexes, false), nil
}

// DeltaIndexesFor filters IndexesFor down to delta indexes.
func (r *Registry) DeltaIndexesFor(typeName string) ([]domain.IndexDescriptor, error) {
	indexes, err := r.IndexesFor(typeName)
	if err != nil {
		return nil, err
	}
	return domain.FilterDelta(indexes, true), nil
}

// AllIndexes returns every configured index, or nil before the first
// rebuild.
func (r *Registry) AllIndexes() []domain.IndexDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.config == nil {
		return nil
	}
	return r.config.AllIndexes()
}

// Ready reports whether a configuration has been built.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config != nil
}

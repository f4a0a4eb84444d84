package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
	"github.com/custodia-labs/sphinxsync/internal/metrics"
)

// Coordinator keeps the search daemon aligned with record mutations.
// Every write and delete runs the same 2-step flow:
//  1. Mark the document dirty in every primary index covering the record's
//     type, in a single batched attribute update.
//  2. Trigger a rebuild of every delta index covering the type, so the
//     change becomes searchable on the next rotation.
//
// Failures propagate to the caller without retries, and dirty marks are
// never rolled back: once set, a document stays dirty until the next full
// primary rebuild. A stale document that is marked dirty is merely hidden;
// a stale document that looks clean would be served.
//
// While bulk mode is active both steps are skipped. ExitBulkMode
// compensates with one full rebuild of every configured index, because
// dirty tracking was suspended for the whole bulk window.
type Coordinator struct {
	registry driven.IndexRegistry
	daemon   driven.SearchDaemon
	logger   *slog.Logger

	mu   sync.Mutex
	bulk bool
}

// CoordinatorConfig holds dependencies for Coordinator.
type CoordinatorConfig struct {
	Registry driven.IndexRegistry
	Daemon   driven.SearchDaemon
	Logger   *slog.Logger
}

var _ driving.IndexingCoordinator = (*Coordinator)(nil)

// NewCoordinator creates a new indexing coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		registry: cfg.Registry,
		daemon:   cfg.Daemon,
		logger:   logger,
	}
}

// OnWrite handles a record insert or update.
func (c *Coordinator) OnWrite(ctx context.Context, record domain.RecordRef) error {
	return c.synchronize(ctx, domain.EventWrite, record)
}

// OnDelete handles a record delete. Deletes follow the write flow exactly:
// the dirty mark hides the primary copy, and the delta rebuild drops the
// row from the delta tier.
func (c *Coordinator) OnDelete(ctx context.Context, record domain.RecordRef) error {
	return c.synchronize(ctx, domain.EventDelete, record)
}

// synchronize propagates one mutation to the daemon.
func (c *Coordinator) synchronize(ctx context.Context, kind domain.EventKind, record domain.RecordRef) error {
	if record.Type == "" {
		return fmt.Errorf("%w: record type is empty", domain.ErrInvalidInput)
	}

	if c.BulkMode() {
		c.logger.Debug("bulk mode active, skipping sync", "kind", string(kind), "type", record.Type, "id", record.ID)
		metrics.SyncEvents.WithLabelValues(string(kind), "skipped").Inc()
		return nil
	}

	// Resolve the covering indexes once and split them by tier.
	indexes, err := c.registry.IndexesFor(record.Type)
	if err != nil {
		metrics.SyncEvents.WithLabelValues(string(kind), "error").Inc()
		return err
	}
	primaries := domain.FilterDelta(indexes, false)
	deltas := domain.FilterDelta(indexes, true)

	// The daemon-side ID is derived from the base of the type's ancestor
	// chain, so every subtype of one root shares an ID namespace. Invalid
	// record IDs are rejected here, before any daemon call.
	base, err := c.registry.Snapshot().BaseOf(record.Type)
	if err != nil {
		metrics.SyncEvents.WithLabelValues(string(kind), "error").Inc()
		return err
	}
	docID, err := domain.NewDocumentID(base.Name, record.ID)
	if err != nil {
		metrics.SyncEvents.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	// Step 1: one attribute update marks the document dirty across every
	// covering primary index.
	if len(primaries) > 0 {
		values := map[domain.DocumentID]int64{docID: 1}
		if _, err := c.daemon.UpdateAttributes(ctx, domain.IndexNames(primaries), domain.DirtyAttr, values); err != nil {
			metrics.SyncEvents.WithLabelValues(string(kind), "error").Inc()
			return fmt.Errorf("failed to mark %s dirty: %w", record, err)
		}
		metrics.DirtyMarked.Inc()
	}

	// Step 2: one trigger rebuilds every covering delta index. Primary
	// indexes are never rebuilt per mutation.
	if err := c.Reindex(ctx, deltas); err != nil {
		metrics.SyncEvents.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	c.logger.Debug("record synchronized",
		"kind", string(kind),
		"type", record.Type,
		"id", record.ID,
		"doc_id", docID.String(),
		"primary_indexes", len(primaries),
		"delta_indexes", len(deltas),
	)
	metrics.SyncEvents.WithLabelValues(string(kind), "ok").Inc()
	return nil
}

// Reindex asks the indexer agent to rebuild exactly the given indexes. The
// call returns once the agent accepts the trigger; the rebuild itself
// completes asynchronously behind index rotation.
func (c *Coordinator) Reindex(ctx context.Context, indexes []domain.IndexDescriptor) error {
	if len(indexes) == 0 {
		return nil
	}

	names := domain.IndexNames(indexes)
	if err := c.daemon.TriggerReindex(ctx, names); err != nil {
		return fmt.Errorf("failed to trigger reindex: %w", err)
	}

	metrics.ReindexTriggers.WithLabelValues(reindexTier(indexes)).Inc()
	return nil
}

// reindexTier labels a reindex by the heaviest tier it touches.
func reindexTier(indexes []domain.IndexDescriptor) string {
	for _, idx := range indexes {
		if !idx.Delta {
			return "full"
		}
	}
	return "delta"
}

// EnterBulkMode suspends synchronization. Safe to call repeatedly.
func (c *Coordinator) EnterBulkMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bulk {
		return
	}
	c.bulk = true
	metrics.BulkMode.Set(1)
	c.logger.Info("bulk mode entered, synchronization suspended")
}

// ExitBulkMode resumes synchronization and rebuilds every configured index,
// primary and delta. The rebuild is unconditional: it runs even if bulk
// mode was never entered, because callers use it to force the daemon back
// to a known-good state. The flag flips before the trigger so writes
// landing during the rebuild are tracked again rather than lost.
func (c *Coordinator) ExitBulkMode(ctx context.Context) error {
	c.mu.Lock()
	c.bulk = false
	c.mu.Unlock()
	metrics.BulkMode.Set(0)

	c.logger.Info("bulk mode exited, rebuilding all indexes")
	return c.Reindex(ctx, c.registry.AllIndexes())
}

// BulkMode reports whether synchronization is suspended.
func (c *Coordinator) BulkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bulk
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
	"github.com/custodia-labs/sphinxsync/internal/metrics"
)

// rotationLockName guards every rotation path. Delta rotations and full
// rebuilds drive the same indexer agent, so they must not overlap across
// instances.
const rotationLockName = "rotation"

// Ensure RotationOrchestrator implements RotationService
var _ driving.RotationService = (*RotationOrchestrator)(nil)

// RotationOrchestrator drives scheduled and manual index rebuilds:
//  1. Take the rotation lock (multi-instance deployments)
//  2. Mark per-index bookkeeping as running
//  3. Trigger the rebuild on the indexer agent
//  4. Record the outcome per index
//
// Completed bookkeeping means the agent accepted the trigger; the build and
// rotation themselves finish asynchronously inside the daemon.
type RotationOrchestrator struct {
	registry      driven.IndexRegistry
	daemon        driven.SearchDaemon
	rotationStore driven.RotationStateStore
	lock          driven.DistributedLock
	logger        *slog.Logger
	lockTTL       time.Duration
}

// RotationOrchestratorConfig holds dependencies for RotationOrchestrator.
// Lock is optional; without one rotations are only guarded per process.
type RotationOrchestratorConfig struct {
	Registry      driven.IndexRegistry
	Daemon        driven.SearchDaemon
	RotationStore driven.RotationStateStore
	Lock          driven.DistributedLock
	Logger        *slog.Logger
	LockTTL       time.Duration // default: 5m
}

// NewRotationOrchestrator creates a new rotation orchestrator.
func NewRotationOrchestrator(cfg RotationOrchestratorConfig) *RotationOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 5 * time.Minute
	}

	return &RotationOrchestrator{
		registry:      cfg.Registry,
		daemon:        cfg.Daemon,
		rotationStore: cfg.RotationStore,
		lock:          cfg.Lock,
		logger:        logger,
		lockTTL:       lockTTL,
	}
}

// RotateDeltas rebuilds every delta index.
func (o *RotationOrchestrator) RotateDeltas(ctx context.Context) (*domain.RotationResult, error) {
	return o.rotate(ctx, "delta", domain.FilterDelta(o.registry.AllIndexes(), true))
}

// RebuildAll rebuilds every index, primary and delta.
func (o *RotationOrchestrator) RebuildAll(ctx context.Context) (*domain.RotationResult, error) {
	return o.rotate(ctx, "full", o.registry.AllIndexes())
}

// RebuildType rebuilds the indexes covering one registered type.
func (o *RotationOrchestrator) RebuildType(ctx context.Context, typeName string) (*domain.RotationResult, error) {
	indexes, err := o.registry.IndexesFor(typeName)
	if err != nil {
		return nil, err
	}
	return o.rotate(ctx, "type", indexes)
}

// rotate runs one guarded rotation over the given indexes.
func (o *RotationOrchestrator) rotate(ctx context.Context, kind string, indexes []domain.IndexDescriptor) (*domain.RotationResult, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: nothing to rotate", domain.ErrNoIndexes)
	}

	// Step 1: take the rotation lock
	if o.lock != nil {
		acquired, err := o.lock.Acquire(ctx, rotationLockName, o.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire rotation lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrRotationInProgress
		}
		defer func() {
			if err := o.lock.Release(ctx, rotationLockName); err != nil {
				o.logger.Warn("failed to release rotation lock", "error", err)
			}
		}()
	}

	start := time.Now()
	names := domain.IndexNames(indexes)
	o.logger.Info("rotation starting", "kind", kind, "indexes", names)

	// Step 2: mark bookkeeping as running
	o.markRunning(ctx, indexes, start)

	// Step 3: trigger the rebuild
	err := o.daemon.TriggerReindex(ctx, names)
	duration := time.Since(start).Seconds()
	metrics.RotationDuration.WithLabelValues(kind).Observe(duration)

	// Step 4: record the outcome
	if err != nil {
		o.markFailed(ctx, indexes, err)
		metrics.RotationResults.WithLabelValues(kind, "error").Inc()
		o.logger.Error("rotation failed", "kind", kind, "duration_seconds", duration, "error", err)
		return &domain.RotationResult{
			Indexes:  names,
			Success:  false,
			Error:    err.Error(),
			Duration: duration,
		}, fmt.Errorf("failed to trigger %s rotation: %w", kind, err)
	}

	o.markCompleted(ctx, indexes)
	metrics.RotationResults.WithLabelValues(kind, "ok").Inc()
	o.logger.Info("rotation triggered", "kind", kind, "indexes", len(names), "duration_seconds", duration)

	return &domain.RotationResult{
		Indexes:  names,
		Success:  true,
		Duration: duration,
	}, nil
}

// GetRotationState retrieves the rotation state for an index.
func (o *RotationOrchestrator) GetRotationState(ctx context.Context, index string) (*domain.RotationState, error) {
	return o.rotationStore.Get(ctx, index)
}

// ListRotationStates retrieves rotation states for all indexes, sorted by
// index name.
func (o *RotationOrchestrator) ListRotationStates(ctx context.Context) ([]*domain.RotationState, error) {
	states, err := o.rotationStore.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Index < states[j].Index })
	return states, nil
}

// markRunning transitions bookkeeping to running. Bookkeeping failures are
// logged, never fatal: the rotation matters more than its paper trail.
func (o *RotationOrchestrator) markRunning(ctx context.Context, indexes []domain.IndexDescriptor, start time.Time) {
	for _, idx := range indexes {
		state, err := o.rotationStore.Get(ctx, idx.Name)
		if err != nil {
			state = &domain.RotationState{Index: idx.Name, Delta: idx.Delta}
		}
		state.Status = domain.RotationStatusRunning
		state.StartedAt = &start
		state.CompletedAt = nil
		state.Error = ""
		if err := o.rotationStore.Save(ctx, state); err != nil {
			o.logger.Warn("failed to update rotation state", "index", idx.Name, "error", err)
		}
	}
}

func (o *RotationOrchestrator) markCompleted(ctx context.Context, indexes []domain.IndexDescriptor) {
	now := time.Now()
	for _, idx := range indexes {
		state, err := o.rotationStore.Get(ctx, idx.Name)
		if err != nil {
			continue
		}
		state.Status = domain.RotationStatusCompleted
		state.CompletedAt = &now
		state.Runs++
		state.Error = ""
		if err := o.rotationStore.Save(ctx, state); err != nil {
			o.logger.Warn("failed to update rotation state", "index", idx.Name, "error", err)
		}
	}
}

func (o *RotationOrchestrator) markFailed(ctx context.Context, indexes []domain.IndexDescriptor, cause error) {
	now := time.Now()
	for _, idx := range indexes {
		state, err := o.rotationStore.Get(ctx, idx.Name)
		if err != nil {
			continue
		}
		state.Status = domain.RotationStatusFailed
		state.CompletedAt = &now
		state.Error = cause.Error()
		if err := o.rotationStore.Save(ctx, state); err != nil {
			o.logger.Warn("failed to update rotation state", "index", idx.Name, "error", err)
		}
	}
}

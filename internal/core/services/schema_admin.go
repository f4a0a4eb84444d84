package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
	"github.com/custodia-labs/sphinxsync/internal/metrics"
)

// Ensure schemaAdminService implements SchemaAdminService
var _ driving.SchemaAdminService = (*schemaAdminService)(nil)

// schemaAdminService manages type registrations and drives the
// configuration build pipeline.
type schemaAdminService struct {
	source        driven.SchemaSource
	typeStore     driven.TypeStore // nil when the schema source is declarative
	mapper        *Mapper
	deployer      driven.ConfigDeployer
	registry      driven.IndexRegistry
	storage       driven.StorageManager
	rotationStore driven.RotationStateStore
	logger        *slog.Logger
}

// SchemaAdminConfig holds dependencies for the schema admin service.
// TypeStore may be nil; registration calls then fail with ErrSchemaReadOnly
// and the schema source alone defines the registered types.
type SchemaAdminConfig struct {
	Source        driven.SchemaSource
	TypeStore     driven.TypeStore
	Mapper        *Mapper
	Deployer      driven.ConfigDeployer
	Registry      driven.IndexRegistry
	Storage       driven.StorageManager
	RotationStore driven.RotationStateStore
	Logger        *slog.Logger
}

// NewSchemaAdminService creates a new SchemaAdminService.
func NewSchemaAdminService(cfg SchemaAdminConfig) driving.SchemaAdminService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mapper := cfg.Mapper
	if mapper == nil {
		mapper = NewMapper(MapperConfig{Logger: logger})
	}

	return &schemaAdminService{
		source:        cfg.Source,
		typeStore:     cfg.TypeStore,
		mapper:        mapper,
		deployer:      cfg.Deployer,
		registry:      cfg.Registry,
		storage:       cfg.Storage,
		rotationStore: cfg.RotationStore,
		logger:        logger,
	}
}

// RegisterType creates or updates a type registration.
func (s *schemaAdminService) RegisterType(ctx context.Context, desc *domain.TypeDescriptor) error {
	if s.typeStore == nil {
		return domain.ErrSchemaReadOnly
	}
	if desc == nil {
		return fmt.Errorf("%w: type descriptor is nil", domain.ErrInvalidInput)
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	// A parent must be registered before its descendants so ancestor chains
	// stay resolvable.
	if desc.Parent != "" {
		if _, err := s.typeStore.Get(ctx, desc.Parent); err != nil {
			return fmt.Errorf("%w: parent type %q", domain.ErrTypeNotRegistered, desc.Parent)
		}
	}

	if err := s.typeStore.Save(ctx, desc); err != nil {
		return fmt.Errorf("failed to save type registration: %w", err)
	}

	s.logger.Info("type registered", "type", desc.Name, "parent", desc.Parent)
	return nil
}

// GetType retrieves a registration by type name.
func (s *schemaAdminService) GetType(ctx context.Context, name string) (*domain.TypeDescriptor, error) {
	if s.typeStore != nil {
		return s.typeStore.Get(ctx, name)
	}

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	desc, ok := snapshot.Type(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTypeNotRegistered, name)
	}
	return desc, nil
}

// ListTypes retrieves all registered types, sorted by name.
func (s *schemaAdminService) ListTypes(ctx context.Context) ([]*domain.TypeDescriptor, error) {
	if s.typeStore != nil {
		return s.typeStore.List(ctx)
	}

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	names := snapshot.TypeNames()
	sort.Strings(names)
	out := make([]*domain.TypeDescriptor, 0, len(names))
	for _, name := range names {
		desc, _ := snapshot.Type(name)
		out = append(out, desc)
	}
	return out, nil
}

// DeregisterType removes a type registration.
func (s *schemaAdminService) DeregisterType(ctx context.Context, name string) error {
	if s.typeStore == nil {
		return domain.ErrSchemaReadOnly
	}
	if err := s.typeStore.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("type deregistered", "type", name)
	return nil
}

// BuildConfiguration runs the full build pipeline:
//  1. Snapshot the schema description
//  2. Map every registered type into document sources
//  3. Declare the indexed-flag column on every source table
//  4. Render and upload the configuration to the indexer agent
//  5. Swap the topology registry wholesale
//  6. Reconcile rotation bookkeeping with the new index set
func (s *schemaAdminService) BuildConfiguration(ctx context.Context) (*domain.DeployResult, error) {
	result, err := s.buildConfiguration(ctx)
	if err != nil {
		metrics.ConfigBuilds.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ConfigBuilds.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *schemaAdminService) buildConfiguration(ctx context.Context) (*domain.DeployResult, error) {
	// Step 1: snapshot the schema description
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	// Step 2: map registered types into document sources
	cfg, err := s.mapper.BuildConfiguration(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to map schema: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("%w: no searchable types registered", domain.ErrInvalidInput)
	}

	// Step 3: the generated configuration reads and flips the indexed-flag
	// column, so the column must exist before the agent sees the config.
	for _, table := range sourceTables(cfg) {
		if err := s.storage.EnsureIndexedColumn(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to declare indexed flag on %s: %w", table, err)
		}
	}

	// Step 4: render and upload to the indexer agent
	result, err := s.deployer.Deploy(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy configuration: %w", err)
	}

	// Step 5: swap the topology registry
	s.registry.Rebuild(snapshot, cfg)

	// Step 6: reconcile rotation bookkeeping
	s.reconcileRotationStates(ctx, cfg)

	s.logger.Info("configuration built",
		"types", len(cfg.Sources),
		"indexes", len(cfg.AllIndexes()),
		"checksum", result.Checksum,
	)
	return result, nil
}

// PreviewConfiguration renders the configuration without deploying it.
func (s *schemaAdminService) PreviewConfiguration(ctx context.Context) (string, error) {
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load schema: %w", err)
	}
	cfg, err := s.mapper.BuildConfiguration(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to map schema: %w", err)
	}
	return s.deployer.Render(cfg)
}

// reconcileRotationStates seeds bookkeeping for new indexes and drops it
// for indexes that left the configuration. Bookkeeping failures do not fail
// the build.
func (s *schemaAdminService) reconcileRotationStates(ctx context.Context, cfg *domain.IndexConfiguration) {
	if s.rotationStore == nil {
		return
	}

	configured := make(map[string]bool)
	for _, idx := range cfg.AllIndexes() {
		configured[idx.Name] = true
		if _, err := s.rotationStore.Get(ctx, idx.Name); err == nil {
			continue
		}
		state := &domain.RotationState{
			Index:  idx.Name,
			Delta:  idx.Delta,
			Status: domain.RotationStatusIdle,
		}
		if err := s.rotationStore.Save(ctx, state); err != nil {
			s.logger.Warn("failed to seed rotation state", "index", idx.Name, "error", err)
		}
	}

	states, err := s.rotationStore.List(ctx)
	if err != nil {
		s.logger.Warn("failed to list rotation states", "error", err)
		return
	}
	for _, state := range states {
		if configured[state.Index] {
			continue
		}
		if err := s.rotationStore.Delete(ctx, state.Index); err != nil {
			s.logger.Warn("failed to drop stale rotation state", "index", state.Index, "error", err)
		}
	}
}

// sourceTables returns the distinct source tables in configuration order.
func sourceTables(cfg *domain.IndexConfiguration) []string {
	var tables []string
	seen := make(map[string]bool)
	for _, src := range cfg.Sources {
		if !seen[src.Table] {
			seen[src.Table] = true
			tables = append(tables, src.Table)
		}
	}
	return tables
}

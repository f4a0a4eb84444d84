package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// Mapper turns the schema snapshot into field, relation and source
// declarations for the configuration generator. It walks each type's
// inheritance chain base type first, so descendant declarations and
// overrides win on name collisions.
type Mapper struct {
	logger *slog.Logger
}

// MapperConfig holds dependencies for Mapper.
type MapperConfig struct {
	Logger *slog.Logger
}

// NewMapper creates a new schema mapper.
func NewMapper(cfg MapperConfig) *Mapper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{logger: logger}
}

// MapFields resolves the full ordered field list of a type: own fields plus
// inherited ones, one descriptor per surviving field name. The kind comes
// from the chain's merged override table when present, otherwise from the
// declared storage type. Fields with storage types nothing maps to are
// dropped, never failed on.
func (m *Mapper) MapFields(snapshot *domain.SchemaSnapshot, typeName string) ([]domain.FieldDescriptor, error) {
	chain, err := snapshot.Chain(typeName)
	if err != nil {
		return nil, err
	}

	overrides := mergedOverrides(chain)

	// Ordered by first declaration; a re-declaration in a descendant
	// replaces the descriptor in place.
	var names []string
	seen := make(map[string]bool)
	byName := make(map[string]domain.FieldDescriptor)

	for _, t := range chain {
		for _, f := range t.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
			kind, known := overrides[f.Name]
			if !known {
				kind, known = inferKind(f.Type)
			}
			if !known {
				m.logger.Debug("skipping field with unmapped storage type",
					"type", t.Name,
					"field", f.Name,
					"storage_type", f.Type,
				)
				delete(byName, f.Name)
				continue
			}
			byName[f.Name] = domain.FieldDescriptor{
				Name:  f.Name,
				Owner: t.Name,
				Kind:  kind,
			}
		}
	}

	fields := make([]domain.FieldDescriptor, 0, len(names))
	for _, name := range names {
		if desc, ok := byName[name]; ok {
			fields = append(fields, desc)
		}
	}
	return fields, nil
}

// MapRelations resolves the multi-valued attribute declarations of a type:
// every has-many relation in the chain, plus the many-to-many relations
// admitted by the chain's merged whitelist. Each descriptor carries the
// structured sub-query the generator renders into backend syntax.
func (m *Mapper) MapRelations(snapshot *domain.SchemaSnapshot, typeName string) ([]domain.RelationDescriptor, error) {
	chain, err := snapshot.Chain(typeName)
	if err != nil {
		return nil, err
	}

	baseID := domain.BaseID(chain[0].Name)
	whitelist := mergedManyManyFilter(chain)

	var names []string
	byName := make(map[string]domain.RelationDescriptor)

	add := func(owner string, kind domain.RelationKind, r domain.RelationSpec) {
		selectColumn := r.SelectColumn
		if selectColumn == "" {
			selectColumn = "id"
		}
		if _, seen := byName[r.Name]; !seen {
			names = append(names, r.Name)
		}
		byName[r.Name] = domain.RelationDescriptor{
			Name:  r.Name,
			Owner: owner,
			Kind:  kind,
			Query: domain.QuerySpec{
				Table:        r.Table,
				JoinColumn:   r.JoinColumn,
				SelectColumn: selectColumn,
				BaseID:       baseID,
			},
		}
	}

	for _, t := range chain {
		for _, r := range t.HasMany {
			add(t.Name, domain.RelationHasMany, r)
		}
		for _, r := range t.ManyMany {
			if !domain.AdmitsManyMany(whitelist, r.Name) {
				m.logger.Debug("skipping many-to-many relation outside whitelist",
					"type", t.Name,
					"relation", r.Name,
				)
				continue
			}
			add(t.Name, domain.RelationManyMany, r)
		}
	}

	relations := make([]domain.RelationDescriptor, 0, len(names))
	for _, name := range names {
		relations = append(relations, byName[name])
	}
	return relations, nil
}

// BuildSource assembles the complete declaration set for one registered
// type: resolved table, namespace hash, mapped fields and relations, and
// the type's primary and delta index pair.
func (m *Mapper) BuildSource(snapshot *domain.SchemaSnapshot, typeName string) (*domain.DocumentSource, error) {
	base, err := snapshot.BaseOf(typeName)
	if err != nil {
		return nil, err
	}
	table, err := snapshot.TableOf(typeName)
	if err != nil {
		return nil, err
	}
	fields, err := m.MapFields(snapshot, typeName)
	if err != nil {
		return nil, err
	}
	relations, err := m.MapRelations(snapshot, typeName)
	if err != nil {
		return nil, err
	}

	primary, delta := domain.IndexPair(typeName)
	return &domain.DocumentSource{
		Type:      typeName,
		Table:     table,
		BaseID:    domain.BaseID(base.Name),
		Fields:    fields,
		Relations: relations,
		Primary:   primary,
		Delta:     []domain.IndexDescriptor{delta},
	}, nil
}

// BuildConfiguration maps every registered type into the full index
// configuration. Base types sharing a 32-bit namespace hash are logged;
// that collision is a documented limitation, not something fixable here.
func (m *Mapper) BuildConfiguration(snapshot *domain.SchemaSnapshot) (*domain.IndexConfiguration, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	cfg := &domain.IndexConfiguration{BuiltAt: snapshot.BuiltAt}
	baseIDs := make(map[uint32]string)

	for _, name := range snapshot.TypeNames() {
		src, err := m.BuildSource(snapshot, name)
		if err != nil {
			return nil, fmt.Errorf("failed to build source for type %s: %w", name, err)
		}

		base, err := snapshot.BaseOf(name)
		if err != nil {
			return nil, err
		}
		if other, ok := baseIDs[src.BaseID]; ok && other != base.Name {
			m.logger.Warn("base type hash collision",
				"base_type", base.Name,
				"collides_with", other,
				"base_id", src.BaseID,
			)
		}
		baseIDs[src.BaseID] = base.Name

		cfg.Sources = append(cfg.Sources, *src)
	}

	return cfg, nil
}

// mergedOverrides folds the chain's per-type override tables into one map,
// descendant entries winning per field name.
func mergedOverrides(chain []*domain.TypeDescriptor) map[string]domain.FieldKind {
	merged := make(map[string]domain.FieldKind)
	for _, t := range chain {
		for name, kind := range t.Overrides {
			merged[name] = kind
		}
	}
	return merged
}

// mergedManyManyFilter unions the chain's whitelists, so a descendant
// inherits the relations its ancestors admitted and may admit more.
func mergedManyManyFilter(chain []*domain.TypeDescriptor) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, t := range chain {
		for _, name := range t.ManyManyFilter {
			if !seen[name] {
				seen[name] = true
				merged = append(merged, name)
			}
		}
	}
	return merged
}

// inferKind maps a declared storage type onto a semantic kind. The
// parametric suffix is stripped first, so "varchar(255)" and "timestamp
// with time zone" reduce to their leading type name.
func inferKind(storageType string) (domain.FieldKind, bool) {
	base := strings.ToLower(strings.TrimSpace(storageType))
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}

	switch base {
	case "text", "varchar", "char", "character", "string", "citext":
		return domain.KindText, true
	case "boolean", "bool":
		return domain.KindBoolean, true
	case "timestamp", "timestamptz", "datetime", "date":
		return domain.KindTimestamp, true
	case "references", "belongs_to":
		return domain.KindForeignKey, true
	case "enum", "uuid":
		return domain.KindNumericHash, true
	default:
		return "", false
	}
}

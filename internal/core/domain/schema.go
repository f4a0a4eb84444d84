package domain

import (
	"fmt"
	"sort"
	"time"
)

// FieldKind is the semantic kind a storage field maps to in the index:
// full-text field for KindText, typed attribute for the rest.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindBoolean     FieldKind = "boolean"
	KindTimestamp   FieldKind = "timestamp"
	KindForeignKey  FieldKind = "foreign_key"
	KindNumericHash FieldKind = "numeric_hash"
)

// Valid reports whether k is one of the declared kinds. Override tables are
// operator input, so this gets checked at snapshot build time.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindBoolean, KindTimestamp, KindForeignKey, KindNumericHash:
		return true
	}
	return false
}

// FieldSpec declares one storage field on a type: the column name and its
// declared storage type, parametric suffix included ("varchar(255)").
type FieldSpec struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// RelationSpec declares one association on a type. For one-to-many relations
// Table is the related table; for many-to-many it is the join table. In both
// cases JoinColumn holds the owning record's ID and SelectColumn the related
// record's ID.
type RelationSpec struct {
	Name         string `json:"name" yaml:"name"`
	Table        string `json:"table" yaml:"table"`
	JoinColumn   string `json:"join_column" yaml:"join_column"`
	SelectColumn string `json:"select_column" yaml:"select_column"`
}

// ManyManyAll is the whitelist wildcard admitting every many-to-many
// relation of a type into the index.
const ManyManyAll = "*"

// TypeDescriptor is the explicit schema description of one registered record
// type. It is plain data built by a schema source; nothing here is derived by
// runtime reflection.
type TypeDescriptor struct {
	// Name is the registered type name, unique within a snapshot.
	Name string `json:"name" yaml:"name"`

	// Parent names the ancestor type, empty for base types.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Table is the backing table. Empty inherits the nearest ancestor's
	// table (single-table inheritance).
	Table string `json:"table,omitempty" yaml:"table,omitempty"`

	// Fields are the type's OWN declared fields in declaration order.
	// Inherited fields come from walking the ancestor chain.
	Fields []FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`

	// HasMany and ManyMany are the type's own declared relations.
	HasMany  []RelationSpec `json:"has_many,omitempty" yaml:"has_many,omitempty"`
	ManyMany []RelationSpec `json:"many_many,omitempty" yaml:"many_many,omitempty"`

	// Overrides force a semantic kind per field name, taking precedence
	// over inference from the storage type.
	Overrides map[string]FieldKind `json:"overrides,omitempty" yaml:"overrides,omitempty"`

	// ManyManyFilter whitelists many-to-many relations for indexing:
	// nil or empty excludes all, [ManyManyAll] admits all, otherwise an
	// explicit set of relation names.
	ManyManyFilter []string `json:"filterable_many_many,omitempty" yaml:"filterable_many_many,omitempty"`
}

// AdmitsManyMany reports whether the relation name passes a many-to-many
// whitelist.
func AdmitsManyMany(filter []string, name string) bool {
	for _, f := range filter {
		if f == ManyManyAll || f == name {
			return true
		}
	}
	return false
}

// AdmitsManyMany checks the relation name against this type's own whitelist.
func (t *TypeDescriptor) AdmitsManyMany(name string) bool {
	return AdmitsManyMany(t.ManyManyFilter, name)
}

// Validate checks the descriptor's operator-provided parts.
func (t *TypeDescriptor) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: type name is empty", ErrInvalidInput)
	}
	if t.Parent == "" && t.Table == "" {
		return fmt.Errorf("%w: base type %q declares no table", ErrInvalidInput, t.Name)
	}
	for name, kind := range t.Overrides {
		if !kind.Valid() {
			return fmt.Errorf("%w: type %q overrides field %q with unknown kind %q", ErrInvalidInput, t.Name, name, kind)
		}
	}
	for _, r := range t.HasMany {
		if r.Name == "" || r.Table == "" || r.JoinColumn == "" {
			return fmt.Errorf("%w: type %q has_many relation %q missing table or join column", ErrInvalidInput, t.Name, r.Name)
		}
	}
	for _, r := range t.ManyMany {
		if r.Name == "" || r.Table == "" || r.JoinColumn == "" || r.SelectColumn == "" {
			return fmt.Errorf("%w: type %q many_many relation %q missing join table columns", ErrInvalidInput, t.Name, r.Name)
		}
	}
	return nil
}

// SchemaSnapshot is the schema-description value object the mapper and the
// configuration builder work from. It is built wholesale by a schema source
// and treated as immutable afterwards.
type SchemaSnapshot struct {
	Types   map[string]*TypeDescriptor `json:"types"`
	BuiltAt time.Time                  `json:"built_at"`
}

// NewSchemaSnapshot indexes the given descriptors by name.
func NewSchemaSnapshot(types []*TypeDescriptor) *SchemaSnapshot {
	s := &SchemaSnapshot{
		Types:   make(map[string]*TypeDescriptor, len(types)),
		BuiltAt: time.Now(),
	}
	for _, t := range types {
		s.Types[t.Name] = t
	}
	return s
}

// Type looks up a descriptor by name.
func (s *SchemaSnapshot) Type(name string) (*TypeDescriptor, bool) {
	t, ok := s.Types[name]
	return t, ok
}

// TypeNames returns all registered type names, sorted for deterministic
// iteration.
func (s *SchemaSnapshot) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain returns the ancestor chain of a type, base type first, the type
// itself last. A dangling parent link or a cycle is a registration error.
func (s *SchemaSnapshot) Chain(name string) ([]*TypeDescriptor, error) {
	var reversed []*TypeDescriptor
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			return nil, fmt.Errorf("%w: inheritance cycle through type %q", ErrInvalidInput, cur)
		}
		seen[cur] = true
		t, ok := s.Types[cur]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrTypeNotRegistered, cur)
		}
		reversed = append(reversed, t)
		cur = t.Parent
	}
	chain := make([]*TypeDescriptor, len(reversed))
	for i, t := range reversed {
		chain[len(reversed)-1-i] = t
	}
	return chain, nil
}

// BaseOf returns the root of a type's ancestor chain. The base type defines
// the document ID namespace for every descendant.
func (s *SchemaSnapshot) BaseOf(name string) (*TypeDescriptor, error) {
	chain, err := s.Chain(name)
	if err != nil {
		return nil, err
	}
	return chain[0], nil
}

// TableOf resolves the backing table of a type: its own if declared,
// otherwise the nearest ancestor's.
func (s *SchemaSnapshot) TableOf(name string) (string, error) {
	chain, err := s.Chain(name)
	if err != nil {
		return "", err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Table != "" {
			return chain[i].Table, nil
		}
	}
	return "", fmt.Errorf("%w: no table declared in chain of %q", ErrInvalidInput, name)
}

// Validate checks every descriptor and every chain in the snapshot.
func (s *SchemaSnapshot) Validate() error {
	for _, name := range s.TypeNames() {
		if err := s.Types[name].Validate(); err != nil {
			return err
		}
		if _, err := s.Chain(name); err != nil {
			return err
		}
		if _, err := s.TableOf(name); err != nil {
			return err
		}
	}
	return nil
}

// FieldDescriptor is one mapped field: the winning definition of a field
// name after the ancestor walk, with the type that declared it and the
// semantic kind it maps to.
type FieldDescriptor struct {
	Name  string    `json:"name"`
	Owner string    `json:"owner"`
	Kind  FieldKind `json:"kind"`
}

// IsAttribute reports whether the field lands in the index as a typed
// attribute rather than full-text content.
func (f FieldDescriptor) IsAttribute() bool {
	return f.Kind != KindText
}

// RelationKind distinguishes the two mapped association shapes.
type RelationKind string

const (
	RelationHasMany  RelationKind = "has_many"
	RelationManyMany RelationKind = "many_many"
)

// QuerySpec describes the correlated sub-query backing a multi-valued
// attribute as structure, not SQL. Only the configuration generator renders
// backend syntax from it.
type QuerySpec struct {
	// Table is the table the sub-query reads (join table for many-to-many).
	Table string `json:"table"`
	// JoinColumn holds the owning record's numeric ID.
	JoinColumn string `json:"join_column"`
	// SelectColumn holds the related record's numeric ID.
	SelectColumn string `json:"select_column"`
	// BaseID is the owning namespace hash, needed to reconstruct the
	// global document ID next to each related ID.
	BaseID uint32 `json:"base_id"`
}

// RelationDescriptor is one mapped relation: a multi-valued attribute fed by
// a correlated sub-query.
type RelationDescriptor struct {
	Name  string       `json:"name"`
	Owner string       `json:"owner"`
	Kind  RelationKind `json:"kind"`
	Query QuerySpec    `json:"query"`
}

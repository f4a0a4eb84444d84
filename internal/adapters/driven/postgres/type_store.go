package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TypeStore = (*TypeStore)(nil)

// TypeStore implements driven.TypeStore using PostgreSQL.
// Field lists, relations and overrides are stored as JSONB so the table
// never needs a migration when a descriptor grows a new spec field.
type TypeStore struct {
	db *DB
}

// NewTypeStore creates a new TypeStore
func NewTypeStore(db *DB) *TypeStore {
	return &TypeStore{db: db}
}

// Save creates or updates a type registration
func (s *TypeStore) Save(ctx context.Context, desc *domain.TypeDescriptor) error {
	fieldsJSON, err := json.Marshal(emptySlice(desc.Fields))
	if err != nil {
		return err
	}
	hasManyJSON, err := json.Marshal(emptySlice(desc.HasMany))
	if err != nil {
		return err
	}
	manyManyJSON, err := json.Marshal(emptySlice(desc.ManyMany))
	if err != nil {
		return err
	}
	overridesJSON, err := json.Marshal(emptyMap(desc.Overrides))
	if err != nil {
		return err
	}
	filterJSON, err := json.Marshal(emptySlice(desc.ManyManyFilter))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO registered_types (name, parent, table_name, fields, has_many, many_many, overrides, many_many_filter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (name) DO UPDATE SET
			parent = EXCLUDED.parent,
			table_name = EXCLUDED.table_name,
			fields = EXCLUDED.fields,
			has_many = EXCLUDED.has_many,
			many_many = EXCLUDED.many_many,
			overrides = EXCLUDED.overrides,
			many_many_filter = EXCLUDED.many_many_filter,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		desc.Name,
		desc.Parent,
		desc.Table,
		fieldsJSON,
		hasManyJSON,
		manyManyJSON,
		overridesJSON,
		filterJSON,
		time.Now(),
	)
	return err
}

// Get retrieves a registration by type name
func (s *TypeStore) Get(ctx context.Context, name string) (*domain.TypeDescriptor, error) {
	query := `
		SELECT name, parent, table_name, fields, has_many, many_many, overrides, many_many_filter
		FROM registered_types
		WHERE name = $1
	`

	row := s.db.QueryRowContext(ctx, query, name)
	desc, err := scanTypeDescriptor(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return desc, nil
}

// List retrieves all registered types ordered by name
func (s *TypeStore) List(ctx context.Context) ([]*domain.TypeDescriptor, error) {
	query := `
		SELECT name, parent, table_name, fields, has_many, many_many, overrides, many_many_filter
		FROM registered_types
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var descs []*domain.TypeDescriptor
	for rows.Next() {
		desc, err := scanTypeDescriptor(rows)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return descs, nil
}

// Delete removes a type registration
func (s *TypeStore) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM registered_types WHERE name = $1`
	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...any) error
}

func scanTypeDescriptor(row scanner) (*domain.TypeDescriptor, error) {
	var desc domain.TypeDescriptor
	var fieldsJSON, hasManyJSON, manyManyJSON, overridesJSON, filterJSON []byte

	err := row.Scan(
		&desc.Name,
		&desc.Parent,
		&desc.Table,
		&fieldsJSON,
		&hasManyJSON,
		&manyManyJSON,
		&overridesJSON,
		&filterJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldsJSON, &desc.Fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(hasManyJSON, &desc.HasMany); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(manyManyJSON, &desc.ManyMany); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(overridesJSON, &desc.Overrides); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filterJSON, &desc.ManyManyFilter); err != nil {
		return nil, err
	}

	return &desc, nil
}

// emptySlice keeps nil slices from serialising as JSON null
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// emptyMap keeps nil maps from serialising as JSON null
func emptyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

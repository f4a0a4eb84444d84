package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SchemaSource = (*SchemaSource)(nil)

// SchemaSource builds schema snapshots from registration rows enriched with
// live catalog introspection. A registration that declares no fields gets
// its column list from information_schema; foreign-key constraints become
// kind overrides on the owning side and has-many relations on the owned
// side. Explicit declarations always win over introspection. Join tables
// for many-to-many relations stay declared, never inferred.
type SchemaSource struct {
	db *DB
}

// NewSchemaSource creates a new introspecting SchemaSource
func NewSchemaSource(db *DB) *SchemaSource {
	return &SchemaSource{db: db}
}

// Snapshot loads all registered types and fills undeclared sections from
// the live catalog. Called at configuration build time only.
func (s *SchemaSource) Snapshot(ctx context.Context) (*domain.SchemaSnapshot, error) {
	query := `
		SELECT name, parent, table_name, fields, has_many, many_many, overrides, many_many_filter
		FROM registered_types
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load registered types: %w", err)
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

	for _, desc := range descs {
		// Types without their own table share the ancestor's columns;
		// nothing of their own to introspect.
		if desc.Table == "" {
			continue
		}
		if err := s.enrich(ctx, desc); err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", desc.Table, err)
		}
	}

	return domain.NewSchemaSnapshot(descs), nil
}

// enrich fills a descriptor's undeclared sections from the catalog.
func (s *SchemaSource) enrich(ctx context.Context, desc *domain.TypeDescriptor) error {
	if len(desc.Fields) == 0 {
		fields, err := s.introspectColumns(ctx, desc.Table)
		if err != nil {
			return err
		}
		desc.Fields = fields
	}

	fkColumns, err := s.introspectForeignKeyColumns(ctx, desc.Table)
	if err != nil {
		return err
	}
	for _, col := range fkColumns {
		if _, declared := desc.Overrides[col]; declared {
			continue
		}
		if desc.Overrides == nil {
			desc.Overrides = make(map[string]domain.FieldKind)
		}
		desc.Overrides[col] = domain.KindForeignKey
	}

	if len(desc.HasMany) == 0 {
		relations, err := s.introspectIncomingForeignKeys(ctx, desc.Table)
		if err != nil {
			return err
		}
		desc.HasMany = relations
	}

	return nil
}

// introspectColumns lists a table's columns as field specs in declaration
// order. The record ID and the indexed-flag column are bookkeeping, not
// indexable fields.
func (s *SchemaSource) introspectColumns(ctx context.Context, table string) ([]domain.FieldSpec, error) {
	query := `
		SELECT column_name, data_type, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []domain.FieldSpec
	for rows.Next() {
		var name, dataType string
		var maxLength *int64

		if err := rows.Scan(&name, &dataType, &maxLength); err != nil {
			return nil, err
		}
		if name == "id" || name == domain.IndexedFlagColumn {
			continue
		}

		storageType := dataType
		if maxLength != nil {
			storageType = fmt.Sprintf("%s(%d)", dataType, *maxLength)
		}
		fields = append(fields, domain.FieldSpec{Name: name, Type: storageType})
	}

	return fields, rows.Err()
}

// introspectForeignKeyColumns lists the table's own columns constrained by
// a foreign key.
func (s *SchemaSource) introspectForeignKeyColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND tc.table_name = $1
		ORDER BY kcu.column_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// introspectIncomingForeignKeys lists foreign keys in other tables that
// reference this table, rendered as has-many relations named after the
// referencing table.
func (s *SchemaSource) introspectIncomingForeignKeys(ctx context.Context, table string) ([]domain.RelationSpec, error) {
	query := `
		SELECT tc.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND ccu.table_name = $1
			AND tc.table_name <> $1
		ORDER BY tc.table_name ASC, kcu.column_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []domain.RelationSpec
	for rows.Next() {
		var relTable, joinColumn string
		if err := rows.Scan(&relTable, &joinColumn); err != nil {
			return nil, err
		}
		relations = append(relations, domain.RelationSpec{
			Name:         relTable,
			Table:        relTable,
			JoinColumn:   joinColumn,
			SelectColumn: "id",
		})
	}

	return relations, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/lib/pq"
)

// Verify interface compliance
var _ driven.StorageManager = (*StorageManager)(nil)

// StorageManager implements driven.StorageManager using PostgreSQL DDL.
// It owns the indexed-flag column that the generated daemon configuration
// reads: delta sources select rows where the flag is false, and a primary
// build flips it true for every row it swallowed.
type StorageManager struct {
	db *DB
}

// NewStorageManager creates a new StorageManager
func NewStorageManager(db *DB) *StorageManager {
	return &StorageManager{db: db}
}

// EnsureIndexedColumn adds the indexed-flag column, its reset trigger and
// the delta-scan index to the table. Idempotent; safe to run on every
// configuration build.
func (m *StorageManager) EnsureIndexedColumn(ctx context.Context, table string) error {
	if table == "" {
		return fmt.Errorf("%w: empty table name", domain.ErrInvalidInput)
	}

	tableIdent := pq.QuoteIdentifier(table)
	columnIdent := pq.QuoteIdentifier(domain.IndexedFlagColumn)

	statements := []string{
		fmt.Sprintf(
			`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s BOOLEAN NOT NULL DEFAULT false`,
			tableIdent, columnIdent,
		),
		// The trigger resets the flag on content updates so the row re-enters
		// the delta source. An update that explicitly changes the flag (the
		// indexer's own post-build flip) passes through untouched.
		fmt.Sprintf(
			`CREATE OR REPLACE FUNCTION sphinxsync_clear_indexed_flag() RETURNS trigger AS $fn$
BEGIN
    IF NEW.%s IS NOT DISTINCT FROM OLD.%s THEN
        NEW.%s := false;
    END IF;
    RETURN NEW;
END;
$fn$ LANGUAGE plpgsql`,
			domain.IndexedFlagColumn, domain.IndexedFlagColumn, domain.IndexedFlagColumn,
		),
		fmt.Sprintf(
			`DROP TRIGGER IF EXISTS sphinxsync_clear_indexed ON %s`,
			tableIdent,
		),
		fmt.Sprintf(
			`CREATE TRIGGER sphinxsync_clear_indexed BEFORE UPDATE ON %s FOR EACH ROW EXECUTE FUNCTION sphinxsync_clear_indexed_flag()`,
			tableIdent,
		),
		fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON %s (%s) WHERE NOT %s`,
			pq.QuoteIdentifier("idx_"+table+"_needs_index"),
			tableIdent, columnIdent, columnIdent,
		),
	}

	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure indexed column on %s: %w", table, err)
		}
	}

	return nil
}

// Ping checks if the storage backend is healthy.
func (m *StorageManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

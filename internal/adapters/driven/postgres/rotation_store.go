package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RotationStateStore = (*RotationStore)(nil)

// RotationStore implements driven.RotationStateStore using PostgreSQL
type RotationStore struct {
	db *DB
}

// NewRotationStore creates a new RotationStore
func NewRotationStore(db *DB) *RotationStore {
	return &RotationStore{db: db}
}

// Save creates or updates rotation state
func (s *RotationStore) Save(ctx context.Context, state *domain.RotationState) error {
	query := `
		INSERT INTO rotation_states (index_name, delta, status, runs, started_at, completed_at, error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (index_name) DO UPDATE SET
			delta = EXCLUDED.delta,
			status = EXCLUDED.status,
			runs = EXCLUDED.runs,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		state.Index,
		state.Delta,
		string(state.Status),
		state.Runs,
		NullTime(state.StartedAt),
		NullTime(state.CompletedAt),
		state.Error,
		time.Now(),
	)
	return err
}

// Get retrieves rotation state for an index
func (s *RotationStore) Get(ctx context.Context, index string) (*domain.RotationState, error) {
	query := `
		SELECT index_name, delta, status, runs, started_at, completed_at, error
		FROM rotation_states
		WHERE index_name = $1
	`

	var state domain.RotationState
	var startedAt, completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, index).Scan(
		&state.Index,
		&state.Delta,
		&state.Status,
		&state.Runs,
		&startedAt,
		&completedAt,
		&state.Error,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	state.StartedAt = TimePtr(startedAt)
	state.CompletedAt = TimePtr(completedAt)

	return &state, nil
}

// List retrieves rotation states for all indexes ordered by index name
func (s *RotationStore) List(ctx context.Context) ([]*domain.RotationState, error) {
	query := `
		SELECT index_name, delta, status, runs, started_at, completed_at, error
		FROM rotation_states
		ORDER BY index_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*domain.RotationState
	for rows.Next() {
		var state domain.RotationState
		var startedAt, completedAt sql.NullTime

		err := rows.Scan(
			&state.Index,
			&state.Delta,
			&state.Status,
			&state.Runs,
			&startedAt,
			&completedAt,
			&state.Error,
		)
		if err != nil {
			return nil, err
		}

		state.StartedAt = TimePtr(startedAt)
		state.CompletedAt = TimePtr(completedAt)

		states = append(states, &state)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return states, nil
}

// Delete deletes rotation state for an index
func (s *RotationStore) Delete(ctx context.Context, index string) error {
	query := `DELETE FROM rotation_states WHERE index_name = $1`
	result, err := s.db.ExecContext(ctx, query, index)
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

// UpdateStatus updates only the status field
func (s *RotationStore) UpdateStatus(ctx context.Context, index string, status domain.RotationStatus) error {
	query := `
		UPDATE rotation_states
		SET status = $1, updated_at = $2
		WHERE index_name = $3
	`

	result, err := s.db.ExecContext(ctx, query, string(status), time.Now(), index)
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

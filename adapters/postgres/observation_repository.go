package postgres

import (
	"context"
	"fmt"

	"liftcast/domain/typicality"
	"liftcast/ports"

	"github.com/jmoiron/sqlx"
)

// insertBatchSize keeps each INSERT well under the 65535 bind parameter cap.
const insertBatchSize = 1000

// observationRepository implements ports.ObservationRepository
type observationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(db *sqlx.DB) ports.ObservationRepository {
	return &observationRepository{db: db}
}

// Name identifies the source in logs and snapshots
func (r *observationRepository) Name() string {
	return "postgres:elevator_observations"
}

// Load returns the whole historical log
func (r *observationRepository) Load(ctx context.Context) ([]typicality.Observation, error) {
	query := `SELECT day, hour, minute_bucket, floor
	FROM elevator_observations
	ORDER BY day, hour, minute_bucket`

	var obs []typicality.Observation
	if err := r.db.SelectContext(ctx, &obs, query); err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	return obs, nil
}

// Count returns the number of stored observations
func (r *observationRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM elevator_observations`); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the stored log in one transaction
func (r *observationRepository) ReplaceAll(ctx context.Context, obs []typicality.Observation) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM elevator_observations`); err != nil {
		return 0, fmt.Errorf("failed to clear observations: %w", err)
	}

	query := `INSERT INTO elevator_observations (day, hour, minute_bucket, floor)
	VALUES (:day, :hour, :minute_bucket, :floor)`

	inserted := 0
	for start := 0; start < len(obs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(obs) {
			end = len(obs)
		}
		res, err := tx.NamedExecContext(ctx, query, obs[start:end])
		if err != nil {
			return 0, fmt.Errorf("failed to insert observations %d-%d: %w", start, end, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted row count: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit observations: %w", err)
	}
	return inserted, nil
}

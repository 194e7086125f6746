package postgres

import (
	"context"
	"database/sql"

	"nara/internal/model"
	"nara/internal/repository"
)

// FeatureFlagPostgres is a PostgreSQL implementation of repository.FeatureFlagRepository.
type FeatureFlagPostgres struct {
	db *sql.DB
}

// NewFeatureFlagPostgres creates a new FeatureFlagPostgres repository.
func NewFeatureFlagPostgres(db *sql.DB) *FeatureFlagPostgres {
	return &FeatureFlagPostgres{db: db}
}

var _ repository.FeatureFlagRepository = (*FeatureFlagPostgres)(nil)

func scanFlag(row rowScanner) (*model.FeatureFlag, error) {
	var f model.FeatureFlag
	if err := row.Scan(&f.Key, &f.Description, &f.Enabled, &f.RolloutPercentage, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns every flag ordered by key.
func (r *FeatureFlagPostgres) List(ctx context.Context) ([]model.FeatureFlag, error) {
	const q = `SELECT key, description, enabled, rollout_percentage, updated_at FROM feature_flags ORDER BY key`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make([]model.FeatureFlag, 0)
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, *f)
	}
	return flags, rows.Err()
}

// FindByKey fetches a single flag.
func (r *FeatureFlagPostgres) FindByKey(ctx context.Context, key string) (*model.FeatureFlag, error) {
	const q = `SELECT key, description, enabled, rollout_percentage, updated_at FROM feature_flags WHERE key = $1`
	return scanFlag(r.db.QueryRowContext(ctx, q, key))
}

// Upsert creates or replaces a flag.
func (r *FeatureFlagPostgres) Upsert(ctx context.Context, f *model.FeatureFlag) (*model.FeatureFlag, error) {
	const q = `
		INSERT INTO feature_flags (key, description, enabled, rollout_percentage, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET description = EXCLUDED.description,
		    enabled = EXCLUDED.enabled,
		    rollout_percentage = EXCLUDED.rollout_percentage,
		    updated_at = EXCLUDED.updated_at
		RETURNING key, description, enabled, rollout_percentage, updated_at
	`
	return scanFlag(r.db.QueryRowContext(ctx, q, f.Key, f.Description, f.Enabled, f.RolloutPercentage, f.UpdatedAt))
}

// Delete removes a flag. It returns sql.ErrNoRows when the key is unknown.
func (r *FeatureFlagPostgres) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM feature_flags WHERE key = $1`
	res, err := r.db.ExecContext(ctx, q, key)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

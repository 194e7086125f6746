package postgres

import (
	"context"
	"database/sql"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// StatsPostgres is a PostgreSQL implementation of repository.StatsRepository.
type StatsPostgres struct {
	db *sql.DB
}

// NewStatsPostgres creates a new StatsPostgres repository.
func NewStatsPostgres(db *sql.DB) *StatsPostgres {
	return &StatsPostgres{db: db}
}

var _ repository.StatsRepository = (*StatsPostgres)(nil)

// Overview computes every dashboard counter in one round trip.
func (r *StatsPostgres) Overview(ctx context.Context, userID string, from, to time.Time) (*model.Stats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM showcases
			 WHERE user_id = $1 AND is_deleted = false AND created_at >= $2 AND created_at < $3),
			(SELECT COUNT(*) FROM showcases
			 WHERE user_id = $1 AND is_deleted = false AND published = true AND published_at >= $2 AND published_at < $3),
			(SELECT COUNT(*) FROM showcase_votes v JOIN showcases s ON s.id = v.showcase_id
			 WHERE s.user_id = $1 AND s.is_deleted = false AND v.created_at >= $2 AND v.created_at < $3),
			(SELECT COUNT(*) FROM showcases WHERE published = true AND is_deleted = false),
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at >= $2 AND created_at < $3)
	`
	var s model.Stats
	if err := r.db.QueryRowContext(ctx, q, userID, from, to).Scan(
		&s.ShowcasesCreated,
		&s.ShowcasesPublished,
		&s.VotesReceived,
		&s.TotalShowcases,
		&s.NewUsers,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// DailyShowcases groups the user's new showcases by local calendar day.
func (r *StatsPostgres) DailyShowcases(ctx context.Context, userID string, from, to time.Time, tz string) ([]model.DailyCount, error) {
	const q = `
		SELECT to_char(created_at AT TIME ZONE $4, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM showcases
		WHERE user_id = $1 AND is_deleted = false AND created_at >= $2 AND created_at < $3
		GROUP BY day
		ORDER BY day
	`
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, userID, from, to, tz)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DailyCount, 0)
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		d, err := time.ParseInLocation(time.DateOnly, day, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, model.DailyCount{Day: d, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

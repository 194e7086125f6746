package postgres

import (
	"context"
	"database/sql"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Create inserts a session row.
func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.UserAgent, s.IPAddress, s.ExpiresAt, s.CreatedAt)
	return err
}

// FindByID fetches a session by its token, expired or not.
func (r *SessionPostgres) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const q = `
		SELECT id, user_id, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`
	var s model.Session
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.UserID,
		&s.UserAgent,
		&s.IPAddress,
		&s.ExpiresAt,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Touch sets a new expiry for the session.
func (r *SessionPostgres) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	const q = `UPDATE sessions SET expires_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, expiresAt)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a session. Missing sessions are not an error.
func (r *SessionPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteByUser removes every session of a user.
func (r *SessionPostgres) DeleteByUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *SessionPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

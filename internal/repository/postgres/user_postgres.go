package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `u.id, u.email, u.name, COALESCE(u.password_hash, ''), u.avatar_url, u.role, u.created_at, u.updated_at, u.deleted_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u       model.User
		deleted sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
		&deleted,
	); err != nil {
		return nil, err
	}
	u.DeletedAt = timePtr(deleted)
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users AS u (id, email, name, password_hash, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		strings.TrimSpace(u.Email),
		u.Name,
		nullString(u.PasswordHash),
		u.AvatarURL,
		u.Role,
		u.CreatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return created, nil
}

// FindByID fetches an active user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 AND u.deleted_at IS NULL`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches an active user by email, ignoring case.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE lower(u.email) = lower($1) AND u.deleted_at IS NULL`
	return scanUser(r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)))
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserPostgres) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, hash, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// FindByOAuth fetches the active user linked to an external identity.
func (r *UserPostgres) FindByOAuth(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN oauth_accounts a ON a.user_id = u.id
		WHERE a.provider = $1 AND a.provider_user_id = $2 AND u.deleted_at IS NULL
	`
	return scanUser(r.db.QueryRowContext(ctx, q, provider, providerUserID))
}

// LinkOAuth stores an external identity for a user. Existing links are kept.
func (r *UserPostgres) LinkOAuth(ctx context.Context, acc *model.OAuthAccount) error {
	const q = `
		INSERT INTO oauth_accounts (provider, provider_user_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, acc.Provider, acc.ProviderUserID, acc.UserID, acc.CreatedAt)
	return err
}

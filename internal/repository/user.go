package repository

import (
	"context"
	"time"

	"nara/internal/model"
)

// UserRepository persists users and their linked OAuth identities.
type UserRepository interface {
	// Create inserts a user and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	// FindByID returns an active (not deleted) user.
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail matches the email case-insensitively among active users.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// FindByOAuth returns the active user linked to the external identity.
	FindByOAuth(ctx context.Context, provider, providerUserID string) (*model.User, error)
	// LinkOAuth records the identity; linking twice is a no-op.
	LinkOAuth(ctx context.Context, acc *model.OAuthAccount) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// Touch moves the expiry of a session.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteExpired removes sessions expired at now and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

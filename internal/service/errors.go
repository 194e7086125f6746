package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors returned by every service. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrIDRequired   = errors.New("id is required")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrSessionInvalid     = fmt.Errorf("%w: session is missing or expired", ErrUnauthorized)
	ErrEmailTaken         = fmt.Errorf("%w: email is already registered", ErrConflict)
	ErrOAuthEmailRequired = fmt.Errorf("%w: the provider did not share a verified email", ErrUnauthorized)
	ErrNotPublished       = fmt.Errorf("%w: showcase is not published", ErrForbidden)
	ErrFeatureDisabled    = fmt.Errorf("%w: feature is disabled", ErrForbidden)
)

// notFound maps sql.ErrNoRows to ErrNotFound and leaves other errors untouched.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

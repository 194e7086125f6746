package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nara/internal/model"
	"nara/internal/oauth"
	"nara/internal/repository"
	"nara/internal/security"
	"nara/internal/validate"
)

// ClientMeta describes the client a session is created for.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Name     string `json:"name" form:"name" validate:"max=100"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResult is an authenticated user together with the session backing it.
// Renewed is set when ResolveSession moved the expiry, so the cookie must be refreshed.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Renewed bool
}

// AuthService handles accounts and sessions.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*AuthResult, error)
	// Login upgrades legacy password hashes on success.
	Login(ctx context.Context, in LoginInput, meta ClientMeta) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// ResolveSession returns ErrSessionInvalid for unknown or expired tokens. Expired sessions are removed.
	ResolveSession(ctx context.Context, token string) (*AuthResult, error)
	// LoginWithOAuth matches the profile by linked identity, then by email, and creates a user otherwise.
	LoginWithOAuth(ctx context.Context, p *oauth.Profile, meta ClientMeta) (*AuthResult, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService. Sessions live for ttl and slide on use.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, ttl time.Duration, log zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.startSession(ctx, u, meta)
}

func (s *authService) Login(ctx context.Context, in LoginInput, meta ClientMeta) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	if security.NeedsRehash(u.PasswordHash) {
		hash, err := security.HashPassword(in.Password)
		if err == nil {
			err = s.users.UpdatePasswordHash(ctx, u.ID, hash)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", u.ID).Msg("password_rehash_failed")
		} else {
			u.PasswordHash = hash
		}
	}
	return s.startSession(ctx, u, meta)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *authService) ResolveSession(ctx context.Context, token string) (*AuthResult, error) {
	if !security.ValidToken(token) {
		return nil, ErrSessionInvalid
	}
	sess, err := s.sessions.FindByID(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	now := s.now()
	if sess.Expired(now) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("expired_session_delete_failed")
		}
		return nil, ErrSessionInvalid
	}

	u, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.sessions.Delete(ctx, token)
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	res := &AuthResult{User: u, Session: sess}
	if sess.ExpiresAt.Sub(now) < s.ttl/2 {
		exp := now.Add(s.ttl)
		if err := s.sessions.Touch(ctx, token, exp); err != nil {
			// Still valid until the old expiry.
			s.log.Warn().Err(err).Msg("session_renew_failed")
			return res, nil
		}
		sess.ExpiresAt = exp
		res.Renewed = true
	}
	return res, nil
}

func (s *authService) LoginWithOAuth(ctx context.Context, p *oauth.Profile, meta ClientMeta) (*AuthResult, error) {
	if p == nil || p.Provider == "" || p.ProviderUserID == "" {
		return nil, oauth.ErrProfile
	}

	u, err := s.users.FindByOAuth(ctx, p.Provider, p.ProviderUserID)
	if err == nil {
		return s.startSession(ctx, u, meta)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find oauth user: %w", err)
	}

	if p.Email == "" {
		return nil, ErrOAuthEmailRequired
	}
	u, err = s.users.FindByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u, err = s.users.Create(ctx, &model.User{
			ID:        uuid.NewString(),
			Email:     p.Email,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
			Role:      model.RoleUser,
			CreatedAt: s.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.users.LinkOAuth(ctx, &model.OAuthAccount{
		Provider:       p.Provider,
		ProviderUserID: p.ProviderUserID,
		UserID:         u.ID,
		CreatedAt:      s.now(),
	}); err != nil {
		return nil, fmt.Errorf("link oauth: %w", err)
	}
	return s.startSession(ctx, u, meta)
}

func (s *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *authService) startSession(ctx context.Context, u *model.User, meta ClientMeta) (*AuthResult, error) {
	now := s.now()
	sess := &model.Session{
		ID:        security.NewToken(),
		UserID:    u.ID,
		UserAgent: truncate(meta.UserAgent, 512),
		IPAddress: meta.IP,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResult{User: u, Session: sess}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

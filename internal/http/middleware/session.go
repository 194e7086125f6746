package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"nara/internal/security"
	"nara/internal/service"
)

// SessionCookie reads and writes the signed session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
	Codec  *security.CookieCodec
}

// Read returns the session token carried by the request, if the cookie is present and intact.
func (s SessionCookie) Read(c *fiber.Ctx) (string, bool) {
	raw := c.Cookies(s.Name)
	if raw == "" {
		return "", false
	}
	token, err := s.Codec.Decode(s.Name, raw)
	if err != nil || !security.ValidToken(token) {
		return "", false
	}
	return token, true
}

// Write sets the session cookie to token until expires.
func (s SessionCookie) Write(c *fiber.Ctx, token string, expires time.Time) error {
	value, err := s.Codec.Encode(s.Name, token)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (s SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Session resolves the session cookie into the current user. Requests without
// a valid session continue anonymously; a stale cookie is cleared.
func Session(auth service.AuthService, cookie SessionCookie, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies(cookie.Name) == "" {
			return c.Next()
		}
		token, ok := cookie.Read(c)
		if !ok {
			cookie.Clear(c)
			return c.Next()
		}

		res, err := auth.ResolveSession(c.UserContext(), token)
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			cookie.Clear(c)
			return c.Next()
		case err != nil:
			log.Warn().Err(err).Str("request_id", RequestIDFrom(c)).Msg("session_resolve_failed")
			return c.Next()
		}

		c.Locals(UserLocalKey, res.User)
		c.Locals(SessionLocalKey, res.Session)
		if res.Renewed {
			if err := cookie.Write(c, res.Session.ID, res.Session.ExpiresAt); err != nil {
				log.Warn().Err(err).Msg("session_cookie_renew_failed")
			}
		}

		return c.Next()
	}
}

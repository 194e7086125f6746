package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireUser rejects anonymous requests: API calls get 401, pages are sent to
// the login form with a redirect back.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Next()
		}
		return unauthenticated(c)
	}
}

// RequireAdmin allows admins only. Anonymous requests are handled as in RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return unauthenticated(c)
		}
		if !u.IsAdmin() {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx) error {
	if IsAPI(c) {
		return fiber.ErrUnauthorized
	}
	target := c.OriginalURL()
	if c.Method() != fiber.MethodGet {
		target = c.Get(fiber.HeaderReferer)
		if u, err := url.Parse(target); err == nil {
			target = u.RequestURI()
		}
	}
	return c.Redirect("/login?redirect="+url.QueryEscape(target), fiber.StatusSeeOther)
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	ThemeCookieName = "nara_theme"

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// ValidTheme reports whether t is a known theme.
func ValidTheme(t string) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// ThemeFromCookie stores the theme cookie in locals; unknown values fall back to system.
func ThemeFromCookie() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := c.Cookies(ThemeCookieName)
		if !ValidTheme(t) {
			t = ThemeSystem
		}
		c.Locals(ThemeLocalKey, t)
		return c.Next()
	}
}

// SetThemeCookie persists the theme for a year.
func SetThemeCookie(c *fiber.Ctx, theme string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     ThemeCookieName,
		Value:    theme,
		Path:     "/",
		Expires:  time.Now().Add(langCookieMaxAge),
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(ThemeLocalKey, theme)
}

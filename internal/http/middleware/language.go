package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"nara/internal/i18n"
)

const langCookieMaxAge = 365 * 24 * time.Hour

// Language resolves the request language from ?lang=, the language cookie and
// Accept-Language, in that order. A valid ?lang= is persisted to the cookie.
func Language(b *i18n.Bundle, secure bool) fiber.Handler {
	supported := b.Supported()
	langs := make([]string, len(supported))
	for i, tag := range supported {
		langs[i] = tag.String()
	}

	return func(c *fiber.Ctx) error {
		tag, persist := b.Resolve(
			c.Query(i18n.LangParam),
			c.Cookies(i18n.LangCookieName),
			c.Get(fiber.HeaderAcceptLanguage),
		)
		if persist {
			SetLanguageCookie(c, tag.String(), secure)
		}

		c.Locals(LangLocalKey, tag.String())
		c.Locals(TranslatorLocalKey, b.Translator(tag))
		c.Locals(LanguagesLocalKey, langs)
		c.Set(fiber.HeaderContentLanguage, tag.String())
		c.Vary(fiber.HeaderAcceptLanguage)

		return c.Next()
	}
}

// SetLanguageCookie stores lang as the user's language preference.
func SetLanguageCookie(c *fiber.Ctx, lang string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		Expires:  time.Now().Add(langCookieMaxAge),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"nara/internal/i18n"
	"nara/internal/model"
	"nara/internal/service"
)

// Locals keys filled by the request chain.
const (
	UserLocalKey       = "user"
	SessionLocalKey    = "session"
	LangLocalKey       = "lang"
	LanguagesLocalKey  = "languages"
	TranslatorLocalKey = "translator"
	ThemeLocalKey      = "theme"
	FlagsLocalKey      = "flags"
)

// CurrentUser returns the signed-in user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// CurrentSession returns the session backing CurrentUser, or nil.
func CurrentSession(c *fiber.Ctx) *model.Session {
	s, _ := c.Locals(SessionLocalKey).(*model.Session)
	return s
}

// Lang returns the resolved language tag, e.g. "es".
func Lang(c *fiber.Ctx) string {
	l, _ := c.Locals(LangLocalKey).(string)
	return l
}

// Languages returns the supported language tags, default first.
func Languages(c *fiber.Ctx) []string {
	l, _ := c.Locals(LanguagesLocalKey).([]string)
	return l
}

// Translator returns the request translator. A nil translator is usable and
// returns keys untranslated.
func Translator(c *fiber.Ctx) *i18n.Translator {
	t, _ := c.Locals(TranslatorLocalKey).(*i18n.Translator)
	return t
}

// Theme returns the UI theme; ThemeSystem when none was chosen.
func Theme(c *fiber.Ctx) string {
	if t, ok := c.Locals(ThemeLocalKey).(string); ok && t != "" {
		return t
	}
	return ThemeSystem
}

// Flags returns the feature flags evaluated for the request.
func Flags(c *fiber.Ctx) service.FlagSet {
	f, _ := c.Locals(FlagsLocalKey).(service.FlagSet)
	return f
}

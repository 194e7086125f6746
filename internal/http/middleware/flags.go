package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"nara/internal/service"
)

// FeatureFlags evaluates every flag for the current user. It must run after Session.
// A lookup failure leaves all flags off.
func FeatureFlags(flags service.FeatureFlagService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userID string
		if u := CurrentUser(c); u != nil {
			userID = u.ID
		}

		set, err := flags.Evaluate(c.UserContext(), userID)
		if err != nil {
			log.Warn().Err(err).Str("request_id", RequestIDFrom(c)).Msg("feature_flags_unavailable")
			set = service.FlagSet{}
		}
		c.Locals(FlagsLocalKey, set)

		return c.Next()
	}
}

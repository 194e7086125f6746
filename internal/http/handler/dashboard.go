package handler

import (
	"github.com/gofiber/fiber/v2"

	"nara/internal/daterange"
	"nara/internal/http/middleware"
	"nara/internal/service"
)

// Dashboard renders the user's stats for ?range= and their own entries.
func Dashboard(dash service.DashboardService, showcases service.ShowcaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		ov, err := dash.Overview(c.UserContext(), user, c.Query("range"))
		if err != nil {
			return pageError(c, err)
		}
		mine, err := showcases.ListMine(c.UserContext(), user.ID, 50, 0)
		if err != nil {
			return pageError(c, err)
		}
		return render(c, "dashboard", fiber.Map{"Overview": ov, "Mine": mine, "Presets": daterange.Presets})
	}
}

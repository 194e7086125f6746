package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"nara/internal/http/middleware"
	"nara/internal/service"
)

// BlogIndex renders the published posts.
func BlogIndex(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, _ := strconv.Atoi(c.Query("offset"))
		res, err := svc.ListPublished(c.UserContext(), 10, offset)
		if err != nil {
			return pageError(c, err)
		}
		return render(c, "blog_list", fiber.Map{"Result": res})
	}
}

// BlogPost renders one post.
func BlogPost(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetBySlug(c.UserContext(), middleware.CurrentUser(c), c.Params("slug"))
		if err != nil {
			return pageError(c, err)
		}
		return render(c, "blog_post", fiber.Map{"Title": p.Title, "Post": p})
	}
}

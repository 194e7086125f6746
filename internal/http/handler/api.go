package handler

import (
	"github.com/gofiber/fiber/v2"

	"nara/internal/http/middleware"
	"nara/internal/model"
	"nara/internal/service"
)

func userID(c *fiber.Ctx) string {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
}

// Me godoc
// @Summary  Current user
// @Tags     auth
// @Produce  json
// @Success  200  {object}  model.User
// @Failure  401  {object}  errorPayload
// @Router   /api/me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.CurrentUser(c))
	}
}

// flagView is a feature flag together with its state for the caller.
type flagView struct {
	model.FeatureFlag
	Active bool `json:"active"`
}

// ListFeatureFlags godoc
// @Summary  List feature flags
// @Tags     feature-flags
// @Produce  json
// @Success  200  {object}  map[string][]flagView
// @Router   /api/feature-flags [get]
func ListFeatureFlags(svc service.FeatureFlagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		flags, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		uid := userID(c)
		out := make([]flagView, 0, len(flags))
		for i := range flags {
			out = append(out, flagView{FeatureFlag: flags[i], Active: service.Enabled(&flags[i], uid)})
		}
		return c.JSON(fiber.Map{"data": out})
	}
}

// GetFeatureFlag godoc
// @Summary  Evaluate a feature flag for the caller
// @Tags     feature-flags
// @Produce  json
// @Param    key  path  string  true  "Flag key"
// @Success  200  {object}  flagView
// @Failure  404  {object}  errorPayload
// @Router   /api/feature-flags/{key} [get]
func GetFeatureFlag(svc service.FeatureFlagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Get(c.UserContext(), c.Params("key"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(flagView{FeatureFlag: *f, Active: service.Enabled(f, userID(c))})
	}
}

// PutFeatureFlag godoc
// @Summary  Create or update a feature flag (admin)
// @Tags     feature-flags
// @Accept   json
// @Produce  json
// @Param    key   path  string              true  "Flag key"
// @Param    body  body  service.FlagInput   true  "Flag"
// @Success  200  {object}  model.FeatureFlag
// @Failure  400  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Router   /api/feature-flags/{key} [put]
func PutFeatureFlag(svc service.FeatureFlagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.FlagInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		in.Key = c.Params("key")

		f, err := svc.Upsert(c.UserContext(), middleware.CurrentUser(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteFeatureFlag godoc
// @Summary  Delete a feature flag (admin)
// @Tags     feature-flags
// @Param    key  path  string  true  "Flag key"
// @Success  204
// @Failure  404  {object}  errorPayload
// @Router   /api/feature-flags/{key} [delete]
func DeleteFeatureFlag(svc service.FeatureFlagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("key")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListBooks godoc
// @Summary  List books
// @Tags     books
// @Produce  json
// @Param    limit   query  int  false  "Page size"
// @Param    offset  query  int  false  "Offset"
// @Success  200  {object}  service.BookListResult
// @Failure  400  {object}  errorPayload
// @Router   /api/books [get]
func ListBooks(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, bad := pagination(c, 20)
		if bad != nil {
			return bad.write(c)
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetBook godoc
// @Summary  Get a book
// @Tags     books
// @Produce  json
// @Param    id  path  string  true  "Book ID"
// @Success  200  {object}  model.Book
// @Failure  400  {object}  errorPayload
// @Failure  404  {object}  errorPayload
// @Router   /api/books/{id} [get]
func GetBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		b, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// CreateBook godoc
// @Summary  Create a book
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    body  body  service.BookInput  true  "Book"
// @Success  201  {object}  model.Book
// @Failure  400  {object}  errorPayload
// @Router   /api/books [post]
func CreateBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.BookInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		b, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// UpdateBook godoc
// @Summary  Replace a book
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    id    path  string             true  "Book ID"
// @Param    body  body  service.BookInput  true  "Book"
// @Success  200  {object}  model.Book
// @Failure  400  {object}  errorPayload
// @Failure  404  {object}  errorPayload
// @Router   /api/books/{id} [put]
func UpdateBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.BookInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		b, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(b)
	}
}

// DeleteBook godoc
// @Summary  Delete a book
// @Tags     books
// @Param    id  path  string  true  "Book ID"
// @Success  204
// @Failure  404  {object}  errorPayload
// @Router   /api/books/{id} [delete]
func DeleteBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListPosts godoc
// @Summary  List published posts
// @Tags     posts
// @Produce  json
// @Param    limit   query  int  false  "Page size"
// @Param    offset  query  int  false  "Offset"
// @Success  200  {object}  service.PostListResult
// @Router   /api/posts [get]
func ListPosts(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, bad := pagination(c, 10)
		if bad != nil {
			return bad.write(c)
		}
		res, err := svc.ListPublished(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetPost godoc
// @Summary  Get a post by slug
// @Tags     posts
// @Produce  json
// @Param    slug  path  string  true  "Slug"
// @Success  200  {object}  model.Post
// @Failure  404  {object}  errorPayload
// @Router   /api/posts/{slug} [get]
func GetPost(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetBySlug(c.UserContext(), middleware.CurrentUser(c), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// CreatePost godoc
// @Summary  Create a post (admin)
// @Tags     posts
// @Accept   json
// @Produce  json
// @Param    body  body  service.PostInput  true  "Post"
// @Success  201  {object}  model.Post
// @Failure  400  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Router   /api/posts [post]
func CreatePost(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PostInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		p, err := svc.Create(c.UserContext(), middleware.CurrentUser(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListShowcases godoc
// @Summary  List the published gallery
// @Tags     showcases
// @Produce  json
// @Param    q       query  string  false  "Search"
// @Param    tag     query  string  false  "Tag"
// @Param    sort    query  string  false  "new or top"
// @Param    limit   query  int     false  "Page size"
// @Param    offset  query  int     false  "Offset"
// @Success  200  {object}  service.ShowcaseListResult
// @Router   /api/showcases [get]
func ListShowcases(svc service.ShowcaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, bad := pagination(c, 12)
		if bad != nil {
			return bad.write(c)
		}
		res, err := svc.List(c.UserContext(), service.ShowcaseQuery{
			Search: c.Query("q"),
			Tag:    c.Query("tag"),
			Sort:   c.Query("sort"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

type voteResponse struct {
	VoteCount int  `json:"vote_count"`
	Voted     bool `json:"voted"`
}

// VoteShowcase godoc
// @Summary  Upvote a published showcase
// @Tags     showcases
// @Produce  json
// @Param    id  path  string  true  "Showcase ID"
// @Success  200  {object}  voteResponse
// @Failure  401  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Failure  404  {object}  errorPayload
// @Router   /api/showcases/{id}/vote [post]
func VoteShowcase(svc service.ShowcaseService) fiber.Handler {
	return voteHandler(svc, true)
}

// UnvoteShowcase godoc
// @Summary  Remove an upvote
// @Tags     showcases
// @Produce  json
// @Param    id  path  string  true  "Showcase ID"
// @Success  200  {object}  voteResponse
// @Failure  401  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Failure  404  {object}  errorPayload
// @Router   /api/showcases/{id}/vote [delete]
func UnvoteShowcase(svc service.ShowcaseService) fiber.Handler {
	return voteHandler(svc, false)
}

func voteHandler(svc service.ShowcaseService, up bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if !middleware.Flags(c).On(service.FlagShowcaseVoting) {
			return writeServiceError(c, service.ErrFeatureDisabled)
		}
		vote := svc.Unvote
		if up {
			vote = svc.Vote
		}
		n, err := vote(c.UserContext(), middleware.CurrentUser(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(voteResponse{VoteCount: n, Voted: up})
	}
}

package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"nara/internal/http/middleware"
	"nara/internal/model"
	"nara/internal/service"
	"nara/internal/validate"
)

const galleryPageSize = 12

// ShowcasePages serves the gallery and its forms.
type ShowcasePages struct {
	Showcases service.ShowcaseService
	Log       zerolog.Logger
}

// List renders the published gallery.
func (h *ShowcasePages) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, _ := strconv.Atoi(c.Query("offset"))
		q := service.ShowcaseQuery{
			Search: c.Query("q"),
			Tag:    c.Query("tag"),
			Sort:   c.Query("sort"),
			Limit:  galleryPageSize,
			Offset: offset,
		}
		res, err := h.Showcases.List(c.UserContext(), q)
		if err != nil {
			return pageError(c, err)
		}
		next := 0
		if q.Offset+len(res.Items) < res.Total {
			next = q.Offset + len(res.Items)
		}
		return render(c, "showcase_list", fiber.Map{"Query": q, "Result": res, "NextOffset": next})
	}
}

// Detail renders one entry.
func (h *ShowcasePages) Detail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		user := middleware.CurrentUser(c)
		sc, err := h.Showcases.Get(c.UserContext(), user, id)
		if err != nil {
			return pageError(c, err)
		}

		imageURL, err := h.Showcases.ImageURL(c.UserContext(), sc)
		if err != nil {
			h.Log.Warn().Err(err).Str("showcase_id", sc.ID).Msg("presign_failed")
			imageURL = "/showcase/" + sc.ID + "/image"
		}
		voted := false
		if user != nil {
			if voted, err = h.Showcases.HasVoted(c.UserContext(), user.ID, sc.ID); err != nil {
				return pageError(c, err)
			}
		}

		return render(c, "showcase_detail", fiber.Map{
			"Title":     sc.Title,
			"Showcase":  sc,
			"ImageURL":  imageURL,
			"Voted":     voted,
			"CanManage": user != nil && (sc.OwnedBy(user.ID) || user.IsAdmin()),
		})
	}
}

// Image streams the screenshot through the server. Detail links here when
// presigning fails.
func (h *ShowcasePages) Image() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		sc, err := h.Showcases.Get(c.UserContext(), middleware.CurrentUser(c), id)
		if err != nil {
			return pageError(c, err)
		}
		body, info, err := h.Showcases.Image(c.UserContext(), sc)
		if err != nil {
			return pageError(c, err)
		}

		c.Set(fiber.HeaderContentType, info.ContentType)
		c.Set(fiber.HeaderCacheControl, "private, max-age=300")
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(body, size)
	}
}

// NewForm renders an empty submission form.
func (h *ShowcasePages) NewForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "showcase_form", fiber.Map{"Title": formTitle(c, ""), "Form": service.ShowcaseInput{}})
	}
}

// Create handles the submission form.
func (h *ShowcasePages) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := showcaseForm(c)
		img, closeImg, err := imageUpload(c)
		if err != nil {
			return fiber.ErrBadRequest
		}
		defer closeImg()

		sc, err := h.Showcases.Create(c.UserContext(), middleware.CurrentUser(c), in, img)
		if err != nil {
			return h.formError(c, "", in, err)
		}
		return c.Redirect("/showcase/"+sc.ID, fiber.StatusSeeOther)
	}
}

// EditForm renders the form for an existing entry.
func (h *ShowcasePages) EditForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		user := middleware.CurrentUser(c)
		sc, err := h.Showcases.Get(c.UserContext(), user, id)
		if err != nil {
			return pageError(c, err)
		}
		if !sc.OwnedBy(user.ID) && !user.IsAdmin() {
			return pageError(c, service.ErrForbidden)
		}
		return render(c, "showcase_form", fiber.Map{"Title": formTitle(c, sc.ID), "ID": sc.ID, "Form": inputOf(sc)})
	}
}

// Update handles the edit form.
func (h *ShowcasePages) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		in := showcaseForm(c)
		img, closeImg, err := imageUpload(c)
		if err != nil {
			return fiber.ErrBadRequest
		}
		defer closeImg()

		if _, err := h.Showcases.Update(c.UserContext(), middleware.CurrentUser(c), id, in, img); err != nil {
			return h.formError(c, id, in, err)
		}
		return c.Redirect("/showcase/"+id, fiber.StatusSeeOther)
	}
}

// Delete soft-deletes an entry.
func (h *ShowcasePages) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		if err := h.Showcases.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
			return pageError(c, err)
		}
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
}

// Publish toggles visibility in the gallery.
func (h *ShowcasePages) Publish() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		published := c.FormValue("published") != "false"
		if _, err := h.Showcases.SetPublished(c.UserContext(), middleware.CurrentUser(c), id, published); err != nil {
			return pageError(c, err)
		}
		return c.Redirect("/showcase/"+id, fiber.StatusSeeOther)
	}
}

// Vote adds or removes the user's vote from the detail page.
func (h *ShowcasePages) Vote() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c)
		if !ok {
			return fiber.ErrNotFound
		}
		if !middleware.Flags(c).On(service.FlagShowcaseVoting) {
			return pageError(c, service.ErrFeatureDisabled)
		}
		vote := h.Showcases.Vote
		if c.FormValue("action") == "unvote" {
			vote = h.Showcases.Unvote
		}
		if _, err := vote(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
			return pageError(c, err)
		}
		return c.Redirect("/showcase/"+id, fiber.StatusSeeOther)
	}
}

func (h *ShowcasePages) formError(c *fiber.Ctx, id string, in service.ShowcaseInput, err error) error {
	ve, ok := validate.AsError(err)
	if !ok {
		return pageError(c, err)
	}
	c.Status(fiber.StatusUnprocessableEntity)
	return render(c, "showcase_form", fiber.Map{"Title": formTitle(c, id), "ID": id, "Form": in, "Errors": ve.Fields})
}

func formTitle(c *fiber.Ctx, id string) string {
	if id == "" {
		return middleware.Translator(c).T("showcase.new")
	}
	return middleware.Translator(c).T("showcase.edit")
}

func showcaseForm(c *fiber.Ctx) service.ShowcaseInput {
	return service.ShowcaseInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		URL:         c.FormValue("url"),
		RepoURL:     c.FormValue("repo_url"),
		Tags:        splitTags(c.FormValue("tags")),
	}
}

func inputOf(sc *model.Showcase) service.ShowcaseInput {
	return service.ShowcaseInput{
		Title:       sc.Title,
		Description: sc.Description,
		URL:         sc.URL,
		RepoURL:     sc.RepoURL,
		Tags:        sc.Tags,
	}
}

// imageUpload returns the optional "image" file. The returned func closes it.
// A request without a file, or with an empty one, yields a nil upload.
func imageUpload(c *fiber.Ctx) (*service.ImageUpload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil || fh.Size == 0 {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}, func() { _ = f.Close() }, nil
}

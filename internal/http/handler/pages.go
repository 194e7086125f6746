package handler

import (
	"github.com/gofiber/fiber/v2"

	"nara/internal/http/middleware"
	"nara/internal/i18n"
	"nara/internal/service"
	"nara/internal/view"
)

var themes = []string{middleware.ThemeLight, middleware.ThemeDark, middleware.ThemeSystem}

// pageTitles are the translation keys of fixed page titles. Pages with a
// data-dependent title set "Title" themselves.
var pageTitles = map[string]string{
	"about":         "about.title",
	"blog_list":     "blog.title",
	"dashboard":     "dashboard.title",
	"login":         "auth.login_title",
	"register":      "auth.register_title",
	"showcase_list": "showcase.title",
}

// render executes page with the request-scoped layout data merged into data.
func render(c *fiber.Ctx, page string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	tr := middleware.Translator(c)
	data["Tr"] = tr
	data["Lang"] = middleware.Lang(c)
	data["Languages"] = middleware.Languages(c)
	data["Theme"] = middleware.Theme(c)
	data["Themes"] = themes
	data["User"] = middleware.CurrentUser(c)
	data["Flags"] = middleware.Flags(c)
	data["Path"] = c.OriginalURL()
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	if _, ok := data["Title"]; !ok {
		key, found := pageTitles[page]
		if !found {
			key = "app.name"
		}
		data["Title"] = tr.T(key)
	}
	return c.Render(page, data, view.Layout)
}

// pageError renders the error page for a service error. Unexpected errors go to ErrorHandler.
func pageError(c *fiber.Ctx, err error) error {
	status, _, msg := serviceStatus(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	if status == fiber.StatusUnauthorized {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return renderError(c, status, msg)
}

// Home renders the landing page with the top showcases and latest posts.
func Home(showcases service.ShowcaseService, blog service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		top, err := showcases.List(c.UserContext(), service.ShowcaseQuery{Sort: "top", Limit: 6})
		if err != nil {
			return pageError(c, err)
		}
		posts, err := blog.ListPublished(c.UserContext(), 3, 0)
		if err != nil {
			return pageError(c, err)
		}
		return render(c, "home", fiber.Map{"Featured": top.Items, "Posts": posts.Items})
	}
}

// About renders the static about page.
func About() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "about", nil)
	}
}

// SetLanguage stores the chosen language and returns to the previous page.
func SetLanguage(b *i18n.Bundle, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tag, ok := b.Parse(c.FormValue("lang")); ok {
			middleware.SetLanguageCookie(c, tag.String(), secure)
		}
		return c.Redirect(safeRedirect(c.FormValue("redirect"), "/"), fiber.StatusSeeOther)
	}
}

// SetTheme stores the chosen theme and returns to the previous page.
func SetTheme(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if t := c.FormValue("theme"); middleware.ValidTheme(t) {
			middleware.SetThemeCookie(c, t, secure)
		}
		return c.Redirect(safeRedirect(c.FormValue("redirect"), "/"), fiber.StatusSeeOther)
	}
}

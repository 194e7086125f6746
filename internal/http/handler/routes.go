package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"nara/internal/http/middleware"
	"nara/internal/i18n"
	"nara/internal/oauth"
	"nara/internal/service"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB           *sql.DB
	Bundle       *i18n.Bundle
	Cookie       middleware.SessionCookie
	Providers    oauth.Registry
	LoginLimiter *middleware.RateLimiter
	Log          zerolog.Logger

	Auth      service.AuthService
	Showcases service.ShowcaseService
	Flags     service.FeatureFlagService
	Blog      service.BlogService
	Books     service.BookService
	Dashboard service.DashboardService
}

// Metrics exposes the Prometheus registry.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Probes are registered ahead of the request chain so they skip session and flag lookups.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Use(
		middleware.Language(d.Bundle, d.Cookie.Secure),
		middleware.ThemeFromCookie(),
		middleware.Session(d.Auth, d.Cookie, d.Log),
		middleware.FeatureFlags(d.Flags, d.Log),
	)

	var limit fiber.Handler = func(c *fiber.Ctx) error { return c.Next() }
	if d.LoginLimiter != nil {
		limit = d.LoginLimiter.Handler()
	}

	api := app.Group("/api")
	api.Get("/me", middleware.RequireUser(), Me())

	api.Get("/feature-flags", ListFeatureFlags(d.Flags))
	api.Get("/feature-flags/:key", GetFeatureFlag(d.Flags))
	api.Put("/feature-flags/:key", middleware.RequireAdmin(), PutFeatureFlag(d.Flags))
	api.Delete("/feature-flags/:key", middleware.RequireAdmin(), DeleteFeatureFlag(d.Flags))

	api.Get("/books", ListBooks(d.Books))
	api.Post("/books", middleware.RequireUser(), CreateBook(d.Books))
	api.Get("/books/:id", GetBook(d.Books))
	api.Put("/books/:id", middleware.RequireUser(), UpdateBook(d.Books))
	api.Delete("/books/:id", middleware.RequireUser(), DeleteBook(d.Books))

	api.Get("/posts", ListPosts(d.Blog))
	api.Get("/posts/:slug", GetPost(d.Blog))
	api.Post("/posts", middleware.RequireAdmin(), CreatePost(d.Blog))

	api.Get("/showcases", ListShowcases(d.Showcases))
	api.Post("/showcases/:id/vote", middleware.RequireUser(), VoteShowcase(d.Showcases))
	api.Delete("/showcases/:id/vote", middleware.RequireUser(), UnvoteShowcase(d.Showcases))

	app.Get("/", Home(d.Showcases, d.Blog))
	app.Get("/about", About())

	auth := &AuthPages{Auth: d.Auth, Cookie: d.Cookie, Providers: d.Providers, Log: d.Log}
	app.Get("/login", auth.LoginForm())
	app.Post("/login", limit, auth.Login())
	app.Get("/register", auth.RegisterForm())
	app.Post("/register", limit, auth.Register())
	app.Post("/logout", auth.Logout())
	app.Get("/auth/:provider", auth.OAuthStart())
	app.Get("/auth/:provider/callback", limit, auth.OAuthCallback())

	sc := &ShowcasePages{Showcases: d.Showcases, Log: d.Log}
	app.Get("/showcase", sc.List())
	app.Get("/showcase/new", middleware.RequireUser(), sc.NewForm())
	app.Post("/showcase/new", middleware.RequireUser(), sc.Create())
	app.Get("/showcase/:id", sc.Detail())
	app.Get("/showcase/:id/image", sc.Image())
	app.Get("/showcase/:id/edit", middleware.RequireUser(), sc.EditForm())
	app.Post("/showcase/:id/edit", middleware.RequireUser(), sc.Update())
	app.Post("/showcase/:id/delete", middleware.RequireUser(), sc.Delete())
	app.Post("/showcase/:id/publish", middleware.RequireUser(), sc.Publish())
	app.Post("/showcase/:id/vote", middleware.RequireUser(), sc.Vote())

	app.Get("/blog", BlogIndex(d.Blog))
	app.Get("/blog/:slug", BlogPost(d.Blog))

	app.Get("/dashboard", middleware.RequireUser(), Dashboard(d.Dashboard, d.Showcases))

	app.Post("/settings/language", SetLanguage(d.Bundle, d.Cookie.Secure))
	app.Post("/settings/theme", SetTheme(d.Cookie.Secure))
}

package handler

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"nara/internal/http/middleware"
	"nara/internal/oauth"
	"nara/internal/security"
	"nara/internal/service"
	"nara/internal/validate"
)

const (
	oauthStateCookie = "nara_oauth"
	oauthStateTTL    = 10 * time.Minute
)

// AuthPages serves the login, registration and OAuth pages.
type AuthPages struct {
	Auth      service.AuthService
	Cookie    middleware.SessionCookie
	Providers oauth.Registry
	Log       zerolog.Logger
}

func clientMeta(c *fiber.Ctx) service.ClientMeta {
	return service.ClientMeta{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

func (h *AuthPages) startSession(c *fiber.Ctx, res *service.AuthResult, redirect string) error {
	if err := h.Cookie.Write(c, res.Session.ID, res.Session.ExpiresAt); err != nil {
		return err
	}
	return c.Redirect(safeRedirect(redirect, "/dashboard"), fiber.StatusSeeOther)
}

// LoginForm renders the login page. Signed-in users go straight to the redirect target.
func (h *AuthPages) LoginForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		redirect := safeRedirect(c.Query("redirect"), "/dashboard")
		if middleware.CurrentUser(c) != nil {
			return c.Redirect(redirect, fiber.StatusSeeOther)
		}
		data := fiber.Map{"Redirect": redirect, "Providers": h.Providers.Names()}
		if c.Query("error") == "oauth" {
			data["Error"] = middleware.Translator(c).T("auth.oauth_failed", "provider", c.Query("provider"))
		}
		return render(c, "login", data)
	}
}

// Login checks the credentials and starts a session.
func (h *AuthPages) Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.ErrBadRequest
		}
		redirect := c.FormValue("redirect")

		res, err := h.Auth.Login(c.UserContext(), in, clientMeta(c))
		if err != nil {
			data := fiber.Map{"Email": in.Email, "Redirect": safeRedirect(redirect, "/dashboard"), "Providers": h.Providers.Names()}
			switch ve, ok := validate.AsError(err); {
			case ok:
				data["Errors"] = ve.Fields
			case errors.Is(err, service.ErrUnauthorized):
				data["Error"] = middleware.Translator(c).T("auth.invalid_credentials")
			default:
				return err
			}
			c.Status(fiber.StatusUnprocessableEntity)
			return render(c, "login", data)
		}

		h.Log.Info().Str("user_id", res.User.ID).Str("request_id", middleware.RequestIDFrom(c)).Msg("login")
		return h.startSession(c, res, redirect)
	}
}

// RegisterForm renders the sign-up page.
func (h *AuthPages) RegisterForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentUser(c) != nil {
			return c.Redirect("/dashboard", fiber.StatusSeeOther)
		}
		return render(c, "register", nil)
	}
}

// Register creates an account and signs it in.
func (h *AuthPages) Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.ErrBadRequest
		}

		res, err := h.Auth.Register(c.UserContext(), in, clientMeta(c))
		if err != nil {
			data := fiber.Map{"Email": in.Email, "Name": in.Name}
			switch ve, ok := validate.AsError(err); {
			case ok:
				data["Errors"] = ve.Fields
			case errors.Is(err, service.ErrEmailTaken):
				data["Errors"] = map[string]string{"email": middleware.Translator(c).T("auth.email_taken")}
			default:
				return err
			}
			c.Status(fiber.StatusUnprocessableEntity)
			return render(c, "register", data)
		}

		h.Log.Info().Str("user_id", res.User.ID).Msg("user_registered")
		return h.startSession(c, res, "/dashboard")
	}
}

// Logout ends the current session.
func (h *AuthPages) Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s := middleware.CurrentSession(c); s != nil {
			if err := h.Auth.Logout(c.UserContext(), s.ID); err != nil {
				h.Log.Warn().Err(err).Msg("logout_failed")
			}
		}
		h.Cookie.Clear(c)
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// OAuthStart redirects to the provider with a fresh state and PKCE verifier.
// Both travel in a short-lived signed cookie together with the redirect target.
func (h *AuthPages) OAuthStart() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := h.Providers.Get(c.Params("provider"))
		if !ok {
			return fiber.ErrNotFound
		}

		state := security.NewToken()
		verifier := oauth.NewVerifier()
		redirect := safeRedirect(c.Query("redirect"), "/dashboard")

		value, err := h.Cookie.Codec.Encode(oauthStateCookie, strings.Join([]string{state, verifier, redirect}, "|"))
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     oauthStateCookie,
			Value:    value,
			Path:     "/auth/",
			Expires:  time.Now().Add(oauthStateTTL),
			Secure:   h.Cookie.Secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.Redirect(p.AuthCodeURL(state, verifier), fiber.StatusFound)
	}
}

// OAuthCallback completes the provider flow and starts a session.
func (h *AuthPages) OAuthCallback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("provider")
		p, ok := h.Providers.Get(name)
		if !ok {
			return fiber.ErrNotFound
		}
		fail := func(reason string, err error) error {
			h.Log.Warn().Err(err).Str("provider", name).Str("reason", reason).Msg("oauth_failed")
			return c.Redirect("/login?error=oauth&provider="+name, fiber.StatusSeeOther)
		}

		raw := c.Cookies(oauthStateCookie)
		c.Cookie(&fiber.Cookie{Name: oauthStateCookie, Path: "/auth/", Expires: time.Unix(0, 0), MaxAge: -1, HTTPOnly: true})
		if raw == "" {
			return fail("missing_state", nil)
		}
		decoded, err := h.Cookie.Codec.Decode(oauthStateCookie, raw)
		if err != nil {
			return fail("bad_state_cookie", err)
		}
		parts := strings.SplitN(decoded, "|", 3)
		if len(parts) != 3 {
			return fail("bad_state_cookie", nil)
		}
		state, verifier, redirect := parts[0], parts[1], parts[2]

		if subtle.ConstantTimeCompare([]byte(state), []byte(c.Query("state"))) != 1 {
			return fail("state_mismatch", nil)
		}
		if e := c.Query("error"); e != "" {
			return fail(e, nil)
		}

		profile, err := p.Exchange(c.UserContext(), c.Query("code"), verifier)
		if err != nil {
			return fail("exchange", err)
		}
		res, err := h.Auth.LoginWithOAuth(c.UserContext(), profile, clientMeta(c))
		if err != nil {
			return fail("login", err)
		}

		h.Log.Info().Str("user_id", res.User.ID).Str("provider", name).Msg("oauth_login")
		return h.startSession(c, res, redirect)
	}
}

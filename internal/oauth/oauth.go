// Package oauth signs users in through external OAuth2 providers (GitHub and Google).
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"nara/internal/config"
)

// Provider names as they appear in /auth/:provider.
const (
	GitHub = "github"
	Google = "google"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
	googleUserURL   = "https://openidconnect.googleapis.com/v1/userinfo"
)

var ErrProfile = errors.New("oauth: could not read provider profile")

// Profile is the identity reported by a provider after a successful exchange.
type Profile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}

// Provider runs the authorization code flow (with PKCE) against one provider.
type Provider struct {
	name       string
	config     *oauth2.Config
	profileURL string
	emailsURL  string
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL returns the consent page URL. verifier must be kept until the callback.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the callback code for a token and fetches the user's profile.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*Profile, error) {
	tok, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}
	client := p.config.Client(ctx, tok)

	switch p.name {
	case GitHub:
		return p.githubProfile(ctx, client)
	default:
		return p.googleProfile(ctx, client)
	}
}

func (p *Provider) githubProfile(ctx context.Context, client *http.Client) (*Profile, error) {
	var u struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, p.profileURL, &u); err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, ErrProfile
	}

	email := u.Email
	if email == "" && p.emailsURL != "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, p.emailsURL, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	return &Profile{
		Provider:       GitHub,
		ProviderUserID: strconv.FormatInt(u.ID, 10),
		Email:          strings.TrimSpace(email),
		Name:           firstNonEmpty(u.Name, u.Login),
		AvatarURL:      u.AvatarURL,
	}, nil
}

func (p *Provider) googleProfile(ctx context.Context, client *http.Client) (*Profile, error) {
	var u struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Picture       string `json:"picture"`
	}
	if err := getJSON(ctx, client, p.profileURL, &u); err != nil {
		return nil, err
	}
	if u.Sub == "" {
		return nil, ErrProfile
	}
	email := ""
	if u.EmailVerified {
		email = strings.TrimSpace(u.Email)
	}
	return &Profile{
		Provider:       Google,
		ProviderUserID: u.Sub,
		Email:          email,
		Name:           u.Name,
		AvatarURL:      u.Picture,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfile, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProfile, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProfile, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Registry holds the enabled providers by name.
type Registry map[string]*Provider

// NewRegistry enables every provider that has a client id configured.
func NewRegistry(cfg config.OAuthConfig) Registry {
	r := Registry{}
	if gh := cfg.GitHub(); gh.ClientID != "" {
		r[GitHub] = newProvider(GitHub, gh, endpoints.GitHub, []string{"read:user", "user:email"}, githubUserURL, githubEmailsURL)
	}
	if g := cfg.Google(); g.ClientID != "" {
		r[Google] = newProvider(Google, g, endpoints.Google, []string{"openid", "email", "profile"}, googleUserURL, "")
	}
	return r
}

func newProvider(name string, pc config.OAuthProviderConfig, ep oauth2.Endpoint, scopes []string, profileURL, emailsURL string) *Provider {
	return &Provider{
		name: name,
		config: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Endpoint:     ep,
			Scopes:       scopes,
		},
		profileURL: profileURL,
		emailsURL:  emailsURL,
	}
}

// Get returns the named provider when it is enabled.
func (r Registry) Get(name string) (*Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// Names lists the enabled providers in a stable order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewVerifier returns a fresh PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"nara"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// SessionConfig controls the session cookie.
// HashKey signs the cookie value; BlockKey (16, 24 or 32 bytes) encrypts it when set.
type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"nara_session"`
	HashKey    string        `env:"SESSION_HASH_KEY"`
	BlockKey   string        `env:"SESSION_BLOCK_KEY"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	Secure     bool          `env:"SESSION_SECURE" envDefault:"false"`
}

// OAuthProviderConfig holds the client credentials of one OAuth provider.
// A provider with an empty ClientID is disabled.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig lists the supported OAuth providers.
type OAuthConfig struct {
	GitHubClientID     string `env:"OAUTH_GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"OAUTH_GITHUB_CLIENT_SECRET"`
	GitHubRedirectURL  string `env:"OAUTH_GITHUB_REDIRECT_URL"`
	GoogleClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"OAUTH_GOOGLE_REDIRECT_URL"`
}

// GitHub returns the GitHub provider settings.
func (o OAuthConfig) GitHub() OAuthProviderConfig {
	return OAuthProviderConfig{ClientID: o.GitHubClientID, ClientSecret: o.GitHubClientSecret, RedirectURL: o.GitHubRedirectURL}
}

// Google returns the Google provider settings.
func (o OAuthConfig) Google() OAuthProviderConfig {
	return OAuthProviderConfig{ClientID: o.GoogleClientID, ClientSecret: o.GoogleClientSecret, RedirectURL: o.GoogleRedirectURL}
}

// I18nConfig holds language settings.
type I18nConfig struct {
	DefaultLanguage string   `env:"I18N_DEFAULT_LANGUAGE" envDefault:"en"`
	Languages       []string `env:"I18N_LANGUAGES" envSeparator:"," envDefault:"en,es,fr"`
}

// SchedulerConfig holds background job schedules (cron syntax).
type SchedulerConfig struct {
	SessionPurgeSpec string `env:"SCHEDULER_SESSION_PURGE" envDefault:"@every 1h"`
}

// RateLimitConfig limits credential submissions per client.
type RateLimitConfig struct {
	LoginPerMinute int `env:"RATE_LIMIT_LOGIN_PER_MINUTE" envDefault:"10"`
	LoginBurst     int `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"5"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string `env:"APP_HOST" envDefault:"localhost:8080"`
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Timezone    string `env:"APP_TIMEZONE" envDefault:"UTC"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Database  DatabaseConfig
	MinIO     MinIOConfig
	Session   SessionConfig
	OAuth     OAuthConfig
	I18n      I18nConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
}

// IsProduction reports whether the app runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Location returns the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := checkTimezone(cfg.Timezone); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkTimezone accepts IANA zone names only. The name is handed to
// PostgreSQL's AT TIME ZONE, which has no notion of "Local".
func checkTimezone(name string) error {
	if name == "" || name == "Local" {
		return fmt.Errorf("APP_TIMEZONE must be an IANA zone name, got %q", name)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

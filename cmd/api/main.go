package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"nara/docs"
	"nara/internal/config"
	"nara/internal/database"
	"nara/internal/database/migration"
	handlers "nara/internal/http/handler"
	"nara/internal/http/middleware"
	"nara/internal/i18n"
	"nara/internal/logger"
	"nara/internal/oauth"
	"nara/internal/otel"
	"nara/internal/repository/postgres"
	"nara/internal/scheduler"
	"nara/internal/security"
	"nara/internal/service"
	"nara/internal/storage"
	"nara/internal/view"
)

const shutdownTimeout = 10 * time.Second

// @title NARA API
// @version 1.0
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Stderr, "info", nil)
		bootLog.Fatal().Err(err).Msg("config_load_failed")
	}
	loc := cfg.Location()
	log := logger.New(os.Stdout, cfg.LogLevel, loc)

	shutdownTracing, err := otel.Init(ctx, logger.Component(log, "otel"))
	if err != nil {
		log.Fatal().Err(err).Msg("tracing_init_failed")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database_connect_failed")
	}
	defer db.Close()

	if err := migration.Up(ctx, db, logger.Component(log, "database")); err != nil {
		log.Fatal().Err(err).Msg("migration_failed")
	}

	// Reusable S3-compatible object storage client for showcase screenshots
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("storage_init_failed")
	}

	bundle, err := i18n.NewBundle(cfg.I18n.DefaultLanguage, cfg.I18n.Languages)
	if err != nil {
		log.Fatal().Err(err).Msg("i18n_load_failed")
	}

	hashKey := cfg.Session.HashKey
	if hashKey == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("SESSION_HASH_KEY is required in production")
		}
		// Sessions do not survive a restart without a configured key.
		hashKey = security.NewToken()
		log.Warn().Msg("session_hash_key_generated")
	}
	codec, err := security.NewCookieCodec([]byte(hashKey), []byte(cfg.Session.BlockKey), int(cfg.Session.TTL.Seconds()))
	if err != nil {
		log.Fatal().Err(err).Msg("cookie_codec_failed")
	}
	cookie := middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure, Codec: codec}

	// Repositories and services
	authSvc := service.NewAuthService(postgres.NewUserPostgres(db), postgres.NewSessionPostgres(db), cfg.Session.TTL, logger.Component(log, "auth"))
	showcaseSvc := service.NewShowcaseService(postgres.NewShowcasePostgres(db), objStore, logger.Component(log, "showcase"))
	flagSvc := service.NewFeatureFlagService(postgres.NewFeatureFlagPostgres(db))
	blogSvc := service.NewBlogService(postgres.NewPostPostgres(db))
	bookSvc := service.NewBookService(postgres.NewBookPostgres(db))
	dashSvc := service.NewDashboardService(postgres.NewStatsPostgres(db), loc)

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("metrics_init_failed")
	}
	if err := database.RegisterPoolMetrics(reg, db); err != nil {
		log.Fatal().Err(err).Msg("metrics_init_failed")
	}

	app := fiber.New(fiber.Config{
		Views:        view.New(),
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    8 << 20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger.Component(log, "http")))
	app.Use(metrics.Handler())

	app.Get("/metrics", handlers.Metrics(reg))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:           db,
		Bundle:       bundle,
		Cookie:       cookie,
		Providers:    oauth.NewRegistry(cfg.OAuth),
		LoginLimiter: loginLimiter,
		Log:          log,
		Auth:         authSvc,
		Showcases:    showcaseSvc,
		Flags:        flagSvc,
		Blog:         blogSvc,
		Books:        bookSvc,
		Dashboard:    dashSvc,
	})

	jobs, err := scheduler.New(cfg.Scheduler.SessionPurgeSpec, loc, authSvc, loginLimiter, logger.Component(log, "scheduler"))
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler_init_failed")
	}
	jobs.Start()

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("server_started")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server_stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server_shutdown_failed")
	}
	jobs.Stop(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing_shutdown_failed")
	}
	log.Info().Msg("shutdown_complete")
}

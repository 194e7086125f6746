package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the embedded migration sources rooted at the migration directory.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Up applies every pending migration and logs each applied step.
func Up(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	start := time.Now()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Files())
	if err != nil {
		log.Error().Str("event", "db_migration_failed").Err(err).Msg("cannot build migration provider")
		return fmt.Errorf("migration provider: %w", err)
	}

	log.Info().Str("event", "db_migration_start").Msg("applying pending migrations")

	results, err := provider.Up(ctx)
	for _, r := range results {
		ev := log.Info()
		if r.Error != nil {
			ev = log.Error().Err(r.Error)
		}
		ev.Str("event", "db_migration_step").
			Str("migration_step", r.Source.Path).
			Int64("version", r.Source.Version).
			Int64("step_duration_ms", r.Duration.Milliseconds()).
			Msg("migration applied")
	}
	if err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("migration failed")
		return fmt.Errorf("migrate up: %w", err)
	}

	log.Info().
		Str("event", "db_migration_success").
		Int("applied", len(results)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema up to date")
	return nil
}

package migration

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// Execer is the subset of pgxpool.Pool the migrations need.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order; every statement is idempotent.
var Migrations = []Migration{
	{
		Name: "create_cvs",
		SQL: `CREATE TABLE IF NOT EXISTS cvs (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_cvs_user_idx",
		SQL:  `CREATE INDEX IF NOT EXISTS cvs_user_id_idx ON cvs (user_id)`,
	},
	{
		Name: "create_cv_exports",
		SQL: `CREATE TABLE IF NOT EXISTS cv_exports (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			cv_id UUID NULL,
			template TEXT NOT NULL,
			status TEXT NOT NULL,
			pages_rendered INT NOT NULL DEFAULT 0,
			pages_returned INT NOT NULL DEFAULT 0,
			removed_pages INT[] NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		Name: "create_cv_exports_user_idx",
		SQL:  `CREATE INDEX IF NOT EXISTS cv_exports_user_id_idx ON cv_exports (user_id, created_at DESC)`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, db Execer, log zerolog.Logger) error {
	log.Info().Int("count", len(Migrations)).Msg("starting database migrations")

	for _, m := range Migrations {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			log.Error().Err(err).Str("name", m.Name).Msg("migration failed")
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		log.Debug().Str("name", m.Name).Msg("migration completed")
	}

	log.Info().Msg("all migrations completed successfully")
	return nil
}

var _ Execer = (*pgxpool.Pool)(nil)

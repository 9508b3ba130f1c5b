package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// migrations holds one directory of goose migrations per dialect.
//
//go:embed migrations
var migrations embed.FS

func newProvider(db *sqlx.DB, dialect Dialect) (*goose.Provider, error) {
	subtree, err := fs.Sub(migrations, "migrations/"+dialect.Goose)
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	provider, err := goose.NewProvider(goose.Dialect(dialect.Goose), db.DB, subtree)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}
	return provider, nil
}

// Migrate brings the schema up to the latest version for the given dialect.
func Migrate(ctx context.Context, db *sqlx.DB, dialect Dialect, logger zerolog.Logger) error {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	for _, r := range results {
		logger.Debug().
			Int64("version", r.Source.Version).
			Dur("duration", r.Duration).
			Msg("applied migration")
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}
	if len(results) == 0 {
		logger.Info().Msgf("database schema up to date, version %d", version)
	} else {
		logger.Info().Msgf("migrated database schema, applied %d migrations, now at version %d", len(results), version)
	}
	return nil
}

// Version returns the version of the most recently applied migration, or 0 for an empty database.
func Version(ctx context.Context, db *sqlx.DB, dialect Dialect) (int64, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("retrieving current database migration version: %w", err)
	}
	return version, nil
}

package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/database"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
)

// Usage example on the command line:
// > CONTACTS_DATABASE_HOST=localhost CONTACTS_DATABASE_USER=dirk CONTACTS_DATABASE_PASSWORD=bullo92 go run main.go
// > CONTACTS_DATABASE_DRIVER=sqlite CONTACTS_DATABASE_NAME=contacts go run main.go -status
func main() {
	statusOnly := flag.Bool("status", false, "only print the current schema version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	if err := run(context.Background(), cfg, log, *statusOnly); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, statusOnly bool) error {
	db, dialect, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if statusOnly {
		version, err := database.Version(ctx, db, dialect)
		if err != nil {
			return err
		}
		log.Info().Int64("version", version).Msg("schema version")
		return nil
	}
	return database.Migrate(ctx, db, dialect, log)
}

//go:generate swag init -g main.go -d ./,../../internal/service,../../internal/model,../../internal/errs -o ../../docs

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/database"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
	"gitlab.com/dirk.krummacker/contacts-api/internal/server"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
)

// @title        Contacts API
// @version      1.0
// @description  Manages contacts and reports upcoming birthdays.
// @BasePath     /

// Usage example on the command line:
// > CONTACTS_DATABASE_USER=dirk CONTACTS_DATABASE_PASSWORD=bullo92 CONTACTS_PRIMARY_ENV=production go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on the configuration, so this is all we can do.
		panic(err)
	}
	log := logger.New(cfg)
	if cfg.Primary.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db, dialect, log); err != nil {
			log.Fatal().Err(err).Msg("could not migrate database")
		}
	}
	contacts, err := repository.New(ctx, db, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("could not prepare statements")
	}

	srv := server.New(cfg, log, db)
	srv.SetupHTTPServer(service.New(cfg, db, contacts, log).SetupHttpRouter())

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}

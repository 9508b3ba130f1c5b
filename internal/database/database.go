// Package database opens the connection pool for the configured driver, runs schema migrations, and
// provides the scoped transaction that every request works in.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database, applies the pool settings, and verifies the connection
// with a ping. The returned dialect matches the driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*sqlx.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	dsn := DSN(cfg)
	db, err := sqlx.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info().
		Str("driver", dialect.Driver).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Msg("database connected")
	return db, dialect, nil
}

// DSN builds the data source name for the configured driver, unless one is configured explicitly.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		return mc.FormatDSN()
	case "pgx":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Name,
			RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
		}
		return u.String()
	default:
		return "file:" + cfg.Name + ".db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
}

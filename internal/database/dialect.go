package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect describes the differences between the supported databases that the queries have to take
// into account.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string
	// Goose is the dialect name understood by goose and also the directory of the migrations.
	Goose string
	// MonthDayFormat formats a date column as MM-DD. It contains a single %s for the column.
	MonthDayFormat string
	// Returning is true if INSERT ... RETURNING id is used instead of LastInsertId.
	Returning bool
	// LockSuffix is appended to a SELECT that precedes a modification of the same row.
	LockSuffix string
}

var (
	MySQL = Dialect{
		Driver:         "mysql",
		Goose:          "mysql",
		MonthDayFormat: "DATE_FORMAT(%s, '%%m-%%d')",
		LockSuffix:     " FOR UPDATE",
	}
	SQLite = Dialect{
		Driver:         "sqlite",
		Goose:          "sqlite3",
		MonthDayFormat: "strftime('%%m-%%d', %s)",
	}
	Postgres = Dialect{
		Driver:         "pgx",
		Goose:          "postgres",
		MonthDayFormat: "to_char(%s, 'MM-DD')",
		Returning:      true,
		LockSuffix:     " FOR UPDATE",
	}
)

func init() {
	// sqlx does not know the name under which modernc.org/sqlite registers itself.
	sqlx.BindDriver(SQLite.Driver, sqlx.QUESTION)
}

// DialectFor returns the dialect of the given driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case MySQL.Driver:
		return MySQL, nil
	case SQLite.Driver:
		return SQLite, nil
	case Postgres.Driver:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// MonthDay returns the SQL expression that yields the MM-DD part of the given date column.
func (d Dialect) MonthDay(column string) string {
	return fmt.Sprintf(d.MonthDayFormat, column)
}

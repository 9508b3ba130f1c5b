// Package sqlerr translates driver specific database errors into a small set of codes that the rest
// of the service can act upon, regardless of whether MySQL, PostgreSQL, or SQLite is in use.
package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Code categorises a database error.
type Code string

const (
	Other            Code = "other"
	UniqueViolation  Code = "unique_violation"
	NotNullViolation Code = "not_null_violation"
)

// MySQL server error numbers, see https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlDuplicateEntry uint16 = 1062
	mysqlBadNull        uint16 = 1048
)

// PostgreSQL SQLSTATE values.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

// Error is a classified database error. The original driver error stays reachable via Unwrap.
type Error struct {
	Code       Code
	Constraint string
	Message    string
	driverErr  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// Classify inspects err for a known driver error and returns its classification. It returns nil if
// err does not originate from one of the supported drivers or is not a constraint violation.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return &Error{Code: UniqueViolation, Message: myErr.Message, driverErr: err}
		case mysqlBadNull:
			return &Error{Code: NotNullViolation, Message: myErr.Message, driverErr: err}
		}
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Code: UniqueViolation, Constraint: pgErr.ConstraintName, Message: pgErr.Message, driverErr: err}
		case pgNotNullViolation:
			return &Error{Code: NotNullViolation, Constraint: pgErr.ColumnName, Message: pgErr.Message, driverErr: err}
		}
		return nil
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &Error{Code: UniqueViolation, Message: liteErr.Error(), driverErr: err}
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return &Error{Code: NotNullViolation, Message: liteErr.Error(), driverErr: err}
		case sqlite3.SQLITE_CONSTRAINT:
			// Without extended result codes only the message tells the violations apart.
			switch msg := liteErr.Error(); {
			case strings.Contains(msg, "UNIQUE"):
				return &Error{Code: UniqueViolation, Message: msg, driverErr: err}
			case strings.Contains(msg, "NOT NULL"):
				return &Error{Code: NotNullViolation, Message: msg, driverErr: err}
			}
		}
		return nil
	}

	return nil
}

// Wrap returns the classified form of err if there is one, and err itself otherwise.
func Wrap(err error) error {
	if classified := Classify(err); classified != nil {
		return classified
	}
	return err
}

// ErrCode reports the code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

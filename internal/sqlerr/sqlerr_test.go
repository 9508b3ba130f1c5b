package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyMySQL checks that MySQL duplicate key and null errors are recognised, also when wrapped.
func TestClassifyMySQL(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ada@example.com' for key 'email'"}
	classified := Classify(fmt.Errorf("inserting contact: %w", dup))
	require.NotNil(t, classified)
	assert.Equal(t, UniqueViolation, classified.Code)
	assert.True(t, errors.Is(classified, dup))

	null := &mysql.MySQLError{Number: 1048, Message: "Column 'email' cannot be null"}
	assert.Equal(t, NotNullViolation, Classify(null).Code)

	assert.Nil(t, Classify(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
}

// TestClassifyPostgres checks that PostgreSQL SQLSTATE codes are mapped.
func TestClassifyPostgres(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "contacts_email_key", Message: "duplicate key value"}
	classified := Classify(dup)
	require.NotNil(t, classified)
	assert.Equal(t, UniqueViolation, classified.Code)
	assert.Equal(t, "contacts_email_key", classified.Constraint)

	assert.Equal(t, NotNullViolation, Classify(&pgconn.PgError{Code: "23502"}).Code)
	assert.Nil(t, Classify(&pgconn.PgError{Code: "40001"}))
}

// TestClassifyUnknown checks that errors from elsewhere are left alone.
func TestClassifyUnknown(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Nil(t, Classify(sql.ErrConnDone))
	assert.Equal(t, sql.ErrConnDone, Wrap(sql.ErrConnDone))
	assert.Equal(t, Other, ErrCode(sql.ErrConnDone))
}

// TestErrCode checks that the code survives further wrapping.
func TestErrCode(t *testing.T) {
	err := Wrap(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.Equal(t, UniqueViolation, ErrCode(fmt.Errorf("creating contact: %w", err)))
	assert.Contains(t, err.Error(), "unique_violation")
}

// Package repository contains the queries against the contacts table. Every operation runs inside a
// transaction that is owned by the caller; the repository itself never commits or rolls back.
//
// Absence is not an error: Get, Update, and Delete return a nil contact and a nil error if there is
// no contact with the requested id.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/database"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/sqlerr"
)

// OrderByColumns are the columns by which a list of contacts may be sorted.
var OrderByColumns = []string{"id", "first_name", "last_name", "email", "phone", "birthday"}

// ErrInvalidOrderBy is returned by List if the filter names a column that is not in OrderByColumns.
var ErrInvalidOrderBy = errors.New("invalid order by column")

// selectColumns is the SELECT clause shared by all queries returning contacts.
var selectColumns = "SELECT id, " + strings.Join(model.Columns, ", ") + " FROM contacts"

// Filter narrows down and pages the result of List. Text filters match case-insensitively anywhere
// in the respective field and are combined with AND. Birthday has the form MM-DD and matches
// regardless of the year.
type Filter struct {
	Limit     int
	Offset    int
	FirstName string
	LastName  string
	Email     string
	Birthday  string
	OrderBy   string
	Ascending bool
}

// Contacts runs the contact queries. It is safe for concurrent use.
type Contacts struct {
	dialect database.Dialect

	// Prepared statements offer a significant speed increase if executed many times.
	insert          *sqlx.NamedStmt
	selectWhereId   *sqlx.Stmt
	selectForUpdate *sqlx.Stmt
	update          *sqlx.NamedStmt
	deleteWhereId   *sqlx.Stmt

	// Now returns the current time. It determines what "today" is for UpcomingBirthdays.
	Now func() time.Time
}

// New prepares all static statements on db. The db argument can be a real database for production
// use or a mock database within unit tests.
func New(ctx context.Context, db *sqlx.DB, dialect database.Dialect) (*Contacts, error) {
	r := &Contacts{dialect: dialect, Now: time.Now}

	var err error
	r.insert, err = db.PrepareNamedContext(ctx, insertSQL(dialect))
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	r.selectWhereId, err = db.PreparexContext(ctx, db.Rebind(selectColumns+" WHERE id = ?"))
	if err != nil {
		return nil, fmt.Errorf("preparing select: %w", err)
	}
	r.selectForUpdate = r.selectWhereId
	if dialect.LockSuffix != "" {
		r.selectForUpdate, err = db.PreparexContext(ctx, db.Rebind(selectColumns+" WHERE id = ?"+dialect.LockSuffix))
		if err != nil {
			return nil, fmt.Errorf("preparing select for update: %w", err)
		}
	}
	r.update, err = db.PrepareNamedContext(ctx, updateSQL())
	if err != nil {
		return nil, fmt.Errorf("preparing update: %w", err)
	}
	r.deleteWhereId, err = db.PreparexContext(ctx, db.Rebind("DELETE FROM contacts WHERE id = ?"))
	if err != nil {
		return nil, fmt.Errorf("preparing delete: %w", err)
	}
	return r, nil
}

func insertSQL(dialect database.Dialect) string {
	params := make([]string, len(model.Columns))
	for i, column := range model.Columns {
		params[i] = ":" + column
	}
	sql := "INSERT INTO contacts (" + strings.Join(model.Columns, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
	if dialect.Returning {
		sql += " RETURNING id"
	}
	return sql
}

func updateSQL() string {
	assignments := make([]string, len(model.Columns))
	for i, column := range model.Columns {
		assignments[i] = column + " = :" + column
	}
	return "UPDATE contacts SET " + strings.Join(assignments, ", ") + " WHERE id = :id"
}

// List returns one page of contacts matching the filter. It returns an empty slice, not an error, if
// nothing matches.
func (r *Contacts) List(ctx context.Context, tx *sqlx.Tx, f Filter) ([]model.Contact, error) {
	var conditions []string
	var args []any
	if f.FirstName != "" {
		conditions = append(conditions, contains("first_name"))
		args = append(args, substring(f.FirstName))
	}
	if f.LastName != "" {
		conditions = append(conditions, contains("last_name"))
		args = append(args, substring(f.LastName))
	}
	if f.Email != "" {
		conditions = append(conditions, contains("email"))
		args = append(args, substring(f.Email))
	}
	if f.Birthday != "" {
		conditions = append(conditions, r.dialect.MonthDay("birthday")+" = ?")
		args = append(args, f.Birthday)
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	if !slices.Contains(OrderByColumns, orderBy) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderBy, orderBy)
	}
	direction := "ASC"
	if !f.Ascending {
		direction = "DESC"
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, direction)
	if orderBy != "id" {
		query += ", id ASC"
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	contacts := []model.Contact{}
	if err := tx.SelectContext(ctx, &contacts, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("selecting contacts: %w", err)
	}
	return contacts, nil
}

// likeEscape is the escape character of the LIKE patterns built by substring. Unlike a backslash it
// needs no quoting in any dialect.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// contains is the condition matching a substring pattern against the lower-cased column.
func contains(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

// substring turns a search term into a LIKE pattern for contains. Wildcards in the term match
// literally.
func substring(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// Get returns the contact with the given id, or nil if there is none.
func (r *Contacts) Get(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Contact, error) {
	return r.get(ctx, tx, r.selectWhereId, id)
}

func (r *Contacts) get(ctx context.Context, tx *sqlx.Tx, stmt *sqlx.Stmt, id int64) (*model.Contact, error) {
	var c model.Contact
	err := tx.StmtxContext(ctx, stmt).GetContext(ctx, &c, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting contact %d: %w", id, err)
	}
	return &c, nil
}

// Create stores a new contact and returns it together with the id assigned by the database. A
// duplicate email results in a *sqlerr.Error with code UniqueViolation.
func (r *Contacts) Create(ctx context.Context, tx *sqlx.Tx, f model.Fields) (*model.Contact, error) {
	c := model.Contact{Fields: f}
	stmt := tx.NamedStmtContext(ctx, r.insert)
	if r.dialect.Returning {
		if err := stmt.QueryRowxContext(ctx, c).Scan(&c.Id); err != nil {
			return nil, fmt.Errorf("inserting contact: %w", sqlerr.Wrap(err))
		}
		return &c, nil
	}
	result, err := stmt.ExecContext(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("inserting contact: %w", sqlerr.Wrap(err))
	}
	c.Id, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("retrieving id of new contact: %w", err)
	}
	return &c, nil
}

// Update replaces all fields of the contact with the given id. It returns the updated contact, or nil
// if there is no such contact, in which case nothing is written.
func (r *Contacts) Update(ctx context.Context, tx *sqlx.Tx, id int64, f model.Fields) (*model.Contact, error) {
	c, err := r.get(ctx, tx, r.selectForUpdate, id)
	if err != nil || c == nil {
		return nil, err
	}
	c.Replace(f)
	if _, err := tx.NamedStmtContext(ctx, r.update).ExecContext(ctx, c); err != nil {
		return nil, fmt.Errorf("updating contact %d: %w", id, sqlerr.Wrap(err))
	}
	return c, nil
}

// Delete removes the contact with the given id and returns it as it was before the deletion, or nil
// if there is no such contact.
func (r *Contacts) Delete(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Contact, error) {
	c, err := r.get(ctx, tx, r.selectForUpdate, id)
	if err != nil || c == nil {
		return nil, err
	}
	if _, err := tx.StmtxContext(ctx, r.deleteWhereId).ExecContext(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting contact %d: %w", id, sqlerr.Wrap(err))
	}
	return c, nil
}

package repository

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/database"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/sqlerr"
)

// newSQLiteRepository opens a fresh, migrated in-memory database that is private to the calling test.
func newSQLiteRepository(t *testing.T) (*sqlx.DB, *Contacts) {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	}
	db, dialect, err := database.Open(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, dialect, logger))

	repo, err := New(ctx, db, dialect)
	require.NoError(t, err)
	return db, repo
}

func fields(first, last, email string, birthday *model.Date) model.Fields {
	return model.Fields{FirstName: first, LastName: last, Email: email, Phone: "555-0100", Birthday: birthday}
}

func date(year int, month time.Month, day int) *model.Date {
	d := model.NewDate(year, month, day)
	return &d
}

func mustCreate(t *testing.T, db *sqlx.DB, repo *Contacts, f model.Fields) *model.Contact {
	t.Helper()
	var contact *model.Contact
	err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
		contact, err = repo.Create(context.Background(), tx, f)
		return err
	})
	require.NoError(t, err)
	return contact
}

func TestSQLiteCreateAndGet(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	created := mustCreate(t, db, repo, fields("Ada", "Lovelace", "ada@example.com", date(1815, time.December, 10)))
	assert.Positive(t, created.Id)

	var found *model.Contact
	err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
		found, err = repo.Get(context.Background(), tx, created.Id)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, *created, *found)
	assert.Equal(t, "1815-12-10", found.Birthday.String())
}

func TestSQLiteCreateWithoutBirthday(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	created := mustCreate(t, db, repo, fields("Grace", "Hopper", "grace@example.com", nil))

	var found *model.Contact
	err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
		found, err = repo.Get(context.Background(), tx, created.Id)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.Birthday)
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	mustCreate(t, db, repo, fields("Ada", "Lovelace", "ada@example.com", nil))

	err := inTx(t, db, func(tx *sqlx.Tx) error {
		_, err := repo.Create(context.Background(), tx, fields("Augusta", "King", "ada@example.com", nil))
		return err
	})
	require.Error(t, err)
	assert.Equal(t, sqlerr.UniqueViolation, sqlerr.ErrCode(err))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM contacts"))
	assert.Equal(t, 1, count)
}

func TestSQLiteGetMissing(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	err := inTx(t, db, func(tx *sqlx.Tx) error {
		contact, err := repo.Get(context.Background(), tx, 9999)
		assert.Nil(t, contact)
		return err
	})
	assert.NoError(t, err)
}

func TestSQLiteListEmpty(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	var contacts []model.Contact
	err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
		contacts, err = repo.List(context.Background(), tx, Filter{Limit: 10, Ascending: true})
		return err
	})
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestSQLiteListFilters(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	mustCreate(t, db, repo, fields("John", "Smith", "john@example.com", date(1980, time.May, 4)))
	mustCreate(t, db, repo, fields("Johnny", "Cash", "cash@music.org", date(1932, time.February, 26)))
	mustCreate(t, db, repo, fields("Mary", "Johnson", "mary@example.com", date(1991, time.May, 4)))

	list := func(f Filter) []string {
		t.Helper()
		f.Limit = 10
		var contacts []model.Contact
		err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
			contacts, err = repo.List(context.Background(), tx, f)
			return err
		})
		require.NoError(t, err)
		names := make([]string, len(contacts))
		for i, c := range contacts {
			names[i] = c.FirstName
		}
		return names
	}

	t.Run("first name substring ignores case", func(t *testing.T) {
		assert.Equal(t, []string{"John", "Johnny"}, list(Filter{FirstName: "JOHN", Ascending: true}))
	})
	t.Run("filters are combined", func(t *testing.T) {
		assert.Equal(t, []string{"John"}, list(Filter{FirstName: "john", Email: "example", Ascending: true}))
	})
	t.Run("last name", func(t *testing.T) {
		assert.Equal(t, []string{"Mary"}, list(Filter{LastName: "son", Ascending: true}))
	})
	t.Run("birthday ignores year", func(t *testing.T) {
		assert.Equal(t, []string{"John", "Mary"}, list(Filter{Birthday: "05-04", Ascending: true}))
	})
	t.Run("order by last name descending", func(t *testing.T) {
		assert.Equal(t, []string{"John", "Mary", "Johnny"}, list(Filter{OrderBy: "last_name"}))
	})
	t.Run("paging", func(t *testing.T) {
		var contacts []model.Contact
		err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
			contacts, err = repo.List(context.Background(), tx, Filter{Limit: 1, Offset: 1, Ascending: true})
			return err
		})
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, "Johnny", contacts[0].FirstName)
	})
}

// TestSQLiteListWildcards checks that LIKE wildcards in a filter only match themselves.
func TestSQLiteListWildcards(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	mustCreate(t, db, repo, fields("John", "Doe", "john_doe@example.com", nil))
	mustCreate(t, db, repo, fields("Johnx", "Doe", "johnxdoe@example.com", nil))
	mustCreate(t, db, repo, fields("Hundred", "Percent", "100percent@example.com", nil))
	mustCreate(t, db, repo, fields("Bang", "Bang", "bang!@example.com", nil))

	emails := func(term string) []string {
		t.Helper()
		var contacts []model.Contact
		err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
			contacts, err = repo.List(context.Background(), tx, Filter{Email: term, Limit: 10, Ascending: true})
			return err
		})
		require.NoError(t, err)
		result := make([]string, len(contacts))
		for i, c := range contacts {
			result[i] = c.Email
		}
		return result
	}

	assert.Equal(t, []string{"john_doe@example.com"}, emails("john_doe"))
	assert.Empty(t, emails("%"))
	assert.Equal(t, []string{"john_doe@example.com"}, emails("_"))
	assert.Equal(t, []string{"bang!@example.com"}, emails("g!@"))
	assert.Len(t, emails("example"), 4)
}

func TestSQLiteUpdate(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	created := mustCreate(t, db, repo, fields("Rudi", "Voeller", "rudi@example.com", nil))

	var updated *model.Contact
	err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
		updated, err = repo.Update(context.Background(), tx, created.Id,
			fields("Rudi", "Völler", "rudi@example.de", date(1960, time.April, 13)))
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.Id, updated.Id)

	var found *model.Contact
	err = inTx(t, db, func(tx *sqlx.Tx) (err error) {
		found, err = repo.Get(context.Background(), tx, created.Id)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, *updated, *found)
	assert.Equal(t, "rudi@example.de", found.Email)
}

// TestSQLiteUpdateMissing expects that updating an unknown id does not create a row.
func TestSQLiteUpdateMissing(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	err := inTx(t, db, func(tx *sqlx.Tx) error {
		contact, err := repo.Update(context.Background(), tx, 9999, fields("No", "Body", "nobody@example.com", date(2000, time.January, 1)))
		assert.Nil(t, contact)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM contacts"))
	assert.Equal(t, 0, count)
}

func TestSQLiteUpdateDuplicateEmail(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	mustCreate(t, db, repo, fields("Ada", "Lovelace", "ada@example.com", nil))
	grace := mustCreate(t, db, repo, fields("Grace", "Hopper", "grace@example.com", nil))

	err := inTx(t, db, func(tx *sqlx.Tx) error {
		_, err := repo.Update(context.Background(), tx, grace.Id, fields("Grace", "Hopper", "ada@example.com", nil))
		return err
	})
	assert.Equal(t, sqlerr.UniqueViolation, sqlerr.ErrCode(err))
}

func TestSQLiteDelete(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	created := mustCreate(t, db, repo, fields("Marcus", "Antonius", "marcus@example.com", nil))

	err := inTx(t, db, func(tx *sqlx.Tx) error {
		deleted, err := repo.Delete(context.Background(), tx, created.Id)
		require.NotNil(t, deleted)
		assert.Equal(t, *created, *deleted)
		return err
	})
	require.NoError(t, err)

	err = inTx(t, db, func(tx *sqlx.Tx) error {
		found, err := repo.Get(context.Background(), tx, created.Id)
		assert.Nil(t, found)
		return err
	})
	require.NoError(t, err)

	err = inTx(t, db, func(tx *sqlx.Tx) error {
		deleted, err := repo.Delete(context.Background(), tx, created.Id)
		assert.Nil(t, deleted)
		return err
	})
	require.NoError(t, err)
}

func TestSQLiteUpcomingBirthdays(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	repo.Now = func() time.Time { return time.Date(2027, time.February, 26, 9, 30, 0, 0, time.Local) }

	mustCreate(t, db, repo, fields("Today", "A", "today@example.com", date(1990, time.February, 26)))
	mustCreate(t, db, repo, fields("Leap", "B", "leap@example.com", date(2000, time.February, 29)))
	mustCreate(t, db, repo, fields("Soon", "C", "soon@example.com", date(1970, time.February, 28)))
	mustCreate(t, db, repo, fields("Later", "D", "later@example.com", date(1970, time.March, 29)))
	mustCreate(t, db, repo, fields("Past", "E", "past@example.com", date(1970, time.February, 25)))
	mustCreate(t, db, repo, fields("Unknown", "F", "unknown@example.com", nil))

	upcoming := func(days int) []string {
		t.Helper()
		var contacts []model.Contact
		err := inTx(t, db, func(tx *sqlx.Tx) (err error) {
			contacts, err = repo.UpcomingBirthdays(context.Background(), tx, days)
			return err
		})
		require.NoError(t, err)
		names := make([]string, len(contacts))
		for i, c := range contacts {
			names[i] = c.FirstName
		}
		return names
	}

	assert.Equal(t, []string{"Today"}, upcoming(0))
	assert.Equal(t, []string{"Today", "Soon"}, upcoming(2))
	// 2027 has no February 29, so that birthday is celebrated on March 1.
	assert.Equal(t, []string{"Today", "Soon", "Leap"}, upcoming(3))
	assert.NotContains(t, upcoming(30), "Later")
	assert.Contains(t, upcoming(31), "Later")
	assert.Contains(t, upcoming(30), "Leap")
}

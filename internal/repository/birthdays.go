package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// UpcomingBirthdays returns all contacts whose birthday falls between today and today+days, both
// inclusive. Only month and day are compared, so the birthday comes around every year. Someone born
// on February 29 celebrates on March 1 in years without that date. The result is sorted by how soon
// the birthday is, then by id.
func (r *Contacts) UpcomingBirthdays(ctx context.Context, tx *sqlx.Tx, days int) ([]model.Contact, error) {
	today := model.DateOf(r.Now())
	query, args, err := sqlx.In(selectColumns+" WHERE "+r.dialect.MonthDay("birthday")+" IN (?)", BirthdayWindow(today, days))
	if err != nil {
		return nil, fmt.Errorf("expanding birthday query: %w", err)
	}

	contacts := []model.Contact{}
	if err := tx.SelectContext(ctx, &contacts, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("selecting upcoming birthdays: %w", err)
	}
	slices.SortStableFunc(contacts, func(a, b model.Contact) int {
		return cmp.Or(
			cmp.Compare(DaysUntilBirthday(today, *a.Birthday), DaysUntilBirthday(today, *b.Birthday)),
			cmp.Compare(a.Id, b.Id),
		)
	})
	return contacts, nil
}

// BirthdayWindow returns the distinct MM-DD values of the days from today to today+days. days is
// clamped to 0..365, which already covers every day of the year.
func BirthdayWindow(today model.Date, days int) []string {
	days = min(max(days, 0), 365)
	seen := make(map[string]bool, days+2)
	window := make([]string, 0, days+2)
	add := func(md string) {
		if !seen[md] {
			seen[md] = true
			window = append(window, md)
		}
	}
	for i := 0; i <= days; i++ {
		day := model.DateOf(today.AddDate(0, 0, i))
		add(day.MonthDay())
		if day.Month() == time.March && day.Day() == 1 && !isLeapYear(day.Year()) {
			add("02-29")
		}
	}
	return window
}

// DaysUntilBirthday returns the number of days from today until the next occurrence of birthday,
// which is zero if the birthday is today.
func DaysUntilBirthday(today model.Date, birthday model.Date) int {
	// time.Date normalises February 29 to March 1 in years without that date.
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today.Time) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(today.Time).Hours() / 24)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

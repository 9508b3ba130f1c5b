package service

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/errs"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
)

// listQuery holds the URL parameters accepted by findContacts.
type listQuery struct {
	Limit     int    `form:"limit,default=10" binding:"min=10,max=100"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
	Birthday  string `form:"birthday"`
	OrderBy   string `form:"orderby"`
	Ascending string `form:"ascending"`
}

// birthdayQuery holds the URL parameters accepted by findUpcomingBirthdays.
type birthdayQuery struct {
	Days *int `form:"days" binding:"omitempty,min=0,max=365"`
}

// findContacts responds with a list of contacts as JSON.
//
// The URL parameters 'first_name', 'last_name', and 'email' match anywhere in the respective field,
// ignoring case. If several are given, a contact has to match all of them.
//
// The URL parameter 'birthday' consists of a month part and a day part, separated by '-'. The call
// returns all contacts that have their birthday on this month and day, regardless of the year.
//
// The URL parameter 'limit' specifies how many contacts matching the search criteria are returned.
// It defaults to 10 and must be between 10 and 100. The URL parameter 'offset' specifies how many
// items from the sorted list of results are skipped in the beginning.
//
// The URL parameter 'orderby' specifies the contact property by which the results shall be sorted.
// If the URL parameter 'ascending' is set to 'false' then the sort order is reversed.
//
// An empty result is not an error; the response is an empty JSON array.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts/"
//	> curl "http://localhost:8080/contacts/?first_name=ji&email=example.com"
//	> curl "http://localhost:8080/contacts/?birthday=11-29"
//	> curl "http://localhost:8080/contacts/?limit=20&offset=60"
//	> curl "http://localhost:8080/contacts/?orderby=birthday&ascending=false"
//
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        limit       query     int     false  "Page size"  minimum(10)  maximum(100)  default(10)
// @Param        offset      query     int     false  "Number of contacts to skip"  minimum(0)  default(0)
// @Param        first_name  query     string  false  "Substring of the first name"
// @Param        last_name   query     string  false  "Substring of the last name"
// @Param        email       query     string  false  "Substring of the email address"
// @Param        birthday    query     string  false  "Birthday as MM-DD"
// @Param        orderby     query     string  false  "Sort column"  Enums(id, first_name, last_name, email, phone, birthday)
// @Param        ascending   query     bool    false  "Sort order"  default(true)
// @Success      200         {array}   model.Contact
// @Failure      400         {object}  errs.HTTPError
// @Failure      500         {object}  errs.HTTPError
// @Router       /contacts/ [get]
func (s *Service) findContacts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, errs.ValidationError(err))
		return
	}
	if q.OrderBy == "" {
		q.OrderBy = "id"
	}
	if !slices.Contains(repository.OrderByColumns, q.OrderBy) {
		abort(c, errs.NewBadRequestError("invalid orderby parameter"))
		return
	}
	ascending := true
	if q.Ascending != "" {
		var err error
		if ascending, err = strconv.ParseBool(q.Ascending); err != nil {
			abort(c, errs.NewBadRequestError("invalid ascending parameter"))
			return
		}
	}
	var birthday string
	if q.Birthday != "" {
		var ok bool
		if birthday, ok = parseMonthDay(q.Birthday); !ok {
			abort(c, errs.NewBadRequestError("invalid birthday parameter"))
			return
		}
	}

	filter := repository.Filter{
		Limit:     q.Limit,
		Offset:    q.Offset,
		FirstName: q.FirstName,
		LastName:  q.LastName,
		Email:     q.Email,
		Birthday:  birthday,
		OrderBy:   q.OrderBy,
		Ascending: ascending,
	}
	var contacts []model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contacts, err = s.contacts.List(c.Request.Context(), tx, filter)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// parseMonthDay checks a birthday of the form MM-DD and returns it with two digits for month and
// day. Leading zeros may be omitted by the client.
func parseMonthDay(s string) (string, bool) {
	before, after, found := strings.Cut(s, "-")
	if !found {
		return "", false
	}
	month, err := strconv.Atoi(before)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(after)
	if err != nil || day < 1 || day > daysIn(month) {
		return "", false
	}
	return fmt.Sprintf("%02d-%02d", month, day), true
}

// daysIn returns the number of days a month can have, counting February 29.
func daysIn(month int) int {
	switch month {
	case 2:
		return 29
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/ --request "POST" --include --header "Content-Type: application/json" --data '{"first_name": "Hans", "last_name": "Wurst", "email": "hans@example.com", "phone": "0815", "birthday": "1969-03-02"}'
//
// @Summary      Create contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        contact  body      model.CreateContact  true  "New contact"
// @Success      201      {object}  model.Contact
// @Failure      400      {object}  errs.HTTPError
// @Failure      409      {object}  errs.HTTPError
// @Failure      500      {object}  errs.HTTPError
// @Router       /contacts/ [post]
func (s *Service) createContact(c *gin.Context) {
	var payload model.CreateContact
	if err := c.ShouldBindJSON(&payload); err != nil {
		abort(c, errs.ValidationError(err))
		return
	}
	var contact *model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contact, err = s.contacts.Create(c.Request.Context(), tx, payload.Fields)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, contact)
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56
//
// @Summary      Get contact
// @Tags         contacts
// @Produce      json
// @Param        id   path      int  true  "Contact ID"
// @Success      200  {object}  model.Contact
// @Failure      404  {object}  errs.HTTPError
// @Failure      500  {object}  errs.HTTPError
// @Router       /contacts/{id} [get]
func (s *Service) findContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var contact *model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contact, err = s.contacts.Get(c.Request.Context(), tx, id)
		return err
	})
	switch {
	case err != nil:
		fail(c, err)
	case contact == nil:
		notFound(c)
	default:
		c.IndentedJSON(http.StatusOK, contact)
	}
}

// updateContactByID replaces all fields of the contact whose ID value matches the id parameter of
// the request URL and responds with the new version of the contact. Every field, the birthday
// included, has to be present in the JSON.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"first_name": "Hans", "last_name": "Wurst", "email": "hans@example.com", "phone": "81970", "birthday": "1972-06-06"}'
//
// @Summary      Update contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Contact ID"
// @Param        contact  body      model.UpdateContact  true  "All fields of the contact"
// @Success      200      {object}  model.Contact
// @Failure      400      {object}  errs.HTTPError
// @Failure      404      {object}  errs.HTTPError
// @Failure      409      {object}  errs.HTTPError
// @Failure      500      {object}  errs.HTTPError
// @Router       /contacts/{id} [put]
func (s *Service) updateContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload model.UpdateContact
	if err := c.ShouldBindJSON(&payload); err != nil {
		abort(c, errs.ValidationError(err))
		return
	}
	var contact *model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contact, err = s.contacts.Update(c.Request.Context(), tx, id, payload.ToFields())
		return err
	})
	switch {
	case err != nil:
		fail(c, err)
	case contact == nil:
		notFound(c)
	default:
		c.IndentedJSON(http.StatusOK, contact)
	}
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "DELETE"
//
// @Summary      Delete contact
// @Tags         contacts
// @Param        id   path  int  true  "Contact ID"
// @Success      204
// @Failure      404  {object}  errs.HTTPError
// @Failure      500  {object}  errs.HTTPError
// @Router       /contacts/{id} [delete]
func (s *Service) deleteContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var contact *model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contact, err = s.contacts.Delete(c.Request.Context(), tx, id)
		return err
	})
	switch {
	case err != nil:
		fail(c, err)
	case contact == nil:
		notFound(c)
	default:
		Logger(c).Debug().Int64("contact_id", contact.Id).Msg("contact deleted")
		noContent(c)
	}
}

// findUpcomingBirthdays responds with the contacts whose birthday is between today and the given
// number of days from now. The URL parameter 'days' defaults to the configured window.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/birthday/?days=14"
//
// @Summary      Upcoming birthdays
// @Tags         contacts
// @Produce      json
// @Param        days  query     int  false  "Size of the window in days"  minimum(0)  maximum(365)
// @Success      200   {array}   model.Contact
// @Failure      400   {object}  errs.HTTPError
// @Failure      500   {object}  errs.HTTPError
// @Router       /contacts/birthday/ [get]
func (s *Service) findUpcomingBirthdays(c *gin.Context) {
	var q birthdayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, errs.ValidationError(err))
		return
	}
	days := s.config.Birthday.WindowDays
	if q.Days != nil {
		days = *q.Days
	}
	var contacts []model.Contact
	err := s.inTx(c, func(tx *sqlx.Tx) (err error) {
		contacts, err = s.contacts.UpcomingBirthdays(c.Request.Context(), tx, days)
		return err
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

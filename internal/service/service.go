// Package service implements the HTTP API of the contacts service on top of gin.
package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "gitlab.com/dirk.krummacker/contacts-api/docs"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/database"
	"gitlab.com/dirk.krummacker/contacts-api/internal/errs"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
	"gitlab.com/dirk.krummacker/contacts-api/internal/sqlerr"
)

// Service holds everything the HTTP handlers need. It is safe for concurrent use.
type Service struct {
	config   *config.Config
	db       *sqlx.DB
	contacts *repository.Contacts
	logger   zerolog.Logger
}

// New creates the service. The db argument can be a real database for production use or a mock
// database within unit tests.
func New(cfg *config.Config, db *sqlx.DB, contacts *repository.Contacts, logger zerolog.Logger) *Service {
	return &Service{
		config:   cfg,
		db:       db,
		contacts: contacts,
		logger:   logger,
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Service) SetupHttpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), s.ContextLogger())
	if s.config.Server.RequestLogging {
		router.Use(RequestLogger())
	}
	router.Use(Recovery())

	router.NoRoute(func(c *gin.Context) {
		abort(c, errs.NewNotFoundError("route not found"))
	})

	router.GET("/health", s.checkHealth)
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))

	contacts := router.Group("/contacts")
	contacts.GET("/", s.findContacts)
	contacts.POST("/", s.createContact)
	contacts.GET("/birthday/", s.findUpcomingBirthdays)
	contacts.GET("/:id", s.findContactByID)
	contacts.PUT("/:id", s.updateContactByID)
	contacts.DELETE("/:id", s.deleteContactByID)
	return router
}

// inTx runs fn within a transaction bound to the request's context.
func (s *Service) inTx(c *gin.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(c.Request.Context(), s.db, fn)
}

// parseID reads the id path parameter. A value that is not a number can never match a contact, so
// the request is answered with NOT FOUND.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, errs.NewNotFoundError("invalid id parameter"))
		return 0, false
	}
	return id, true
}

// fail turns err into an error response. Errors that the client can act upon keep their status,
// everything else is logged and answered with INTERNAL SERVER ERROR carrying err as detail.
func fail(c *gin.Context, err error) {
	var httpErr *errs.HTTPError
	switch {
	case errors.As(err, &httpErr):
	case sqlerr.ErrCode(err) == sqlerr.UniqueViolation:
		httpErr = errs.NewConflictError("a contact with this email already exists")
	default:
		_ = c.Error(err)
		Logger(c).Error().Err(err).Msg("request failed")
		httpErr = errs.NewInternalServerError(err)
	}
	abort(c, httpErr)
}

func abort(c *gin.Context, httpErr *errs.HTTPError) {
	c.AbortWithStatusJSON(httpErr.Status, httpErr)
}

// notFound is the response for a contact id that does not exist.
func notFound(c *gin.Context) {
	abort(c, errs.NewNotFoundError("contact not found"))
}

// noContent finishes a request without a response body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, &HTTPError{Code: "NOT_FOUND", Message: "contact not found", Status: http.StatusNotFound},
		NewNotFoundError("contact not found"))
	assert.Equal(t, "CONFLICT", NewConflictError("taken").Code)
	assert.Equal(t, http.StatusConflict, NewConflictError("taken").Status)
	assert.Equal(t, "SERVICE_UNAVAILABLE", NewServiceUnavailableError("down").Code)

	internal := NewInternalServerError(errors.New("connection refused"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", internal.Code)
	assert.Equal(t, "Internal Server Error", internal.Error())
	assert.Equal(t, "connection refused", internal.Detail)
	assert.Empty(t, NewInternalServerError(nil).Detail)
}

func TestValidationErrorFromValidator(t *testing.T) {
	type payload struct {
		FirstName string `json:"first_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
	}
	err := validator.New().Struct(payload{Email: "nope"})
	require.Error(t, err)

	httpErr := ValidationError(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BAD_REQUEST", httpErr.Code)
	assert.Equal(t, []FieldError{
		{Field: "first_name", Error: "is required"},
		{Field: "email", Error: "must be a valid email address"},
	}, httpErr.Errors)
}

func TestValidationErrorOther(t *testing.T) {
	httpErr := ValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "invalid request: unexpected EOF", httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "first_name", toSnakeCase("FirstName"))
	assert.Equal(t, "email", toSnakeCase("Email"))
}

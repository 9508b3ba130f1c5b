// Package errs defines the JSON error shape returned by the HTTP API.
package errs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is returned to clients on every failed request.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// CodeFor turns the status text of an HTTP status code into an error code, e.g. 404 into NOT_FOUND.
func CodeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// New returns an HTTPError with the given status and message.
func New(status int, message string) *HTTPError {
	return &HTTPError{Code: CodeFor(status), Message: message, Status: status}
}

func NewBadRequestError(message string, fieldErrors ...FieldError) *HTTPError {
	e := New(http.StatusBadRequest, message)
	e.Errors = fieldErrors
	return e
}

func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

func NewConflictError(message string) *HTTPError {
	return New(http.StatusConflict, message)
}

// NewInternalServerError reports an unexpected failure. The description of cause becomes the detail.
func NewInternalServerError(cause error) *HTTPError {
	e := New(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

func NewServiceUnavailableError(message string) *HTTPError {
	return New(http.StatusServiceUnavailable, message)
}

// ValidationError converts a binding error into a 400 response. Errors from the validator are
// broken down per field; anything else, such as malformed JSON, keeps its message.
func ValidationError(err error) *HTTPError {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return NewBadRequestError("invalid request: " + err.Error())
	}
	fieldErrors := make([]FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fieldErrors = append(fieldErrors, FieldError{Field: fieldName(fe), Error: describe(fe)})
	}
	return NewBadRequestError("validation failed", fieldErrors...)
}

// fieldName prefers the JSON or form name of a field over its Go name.
func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != fe.StructField() {
		return name
	}
	return toSnakeCase(fe.StructField())
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if 'A' <= r && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

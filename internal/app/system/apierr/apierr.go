// Package apierr defines the API error taxonomy and renders errors as
// the JSON envelope the clients consume:
//
//	{ "code": 404, "message": "Task does not exist", "errors": [...] }
//
// Handlers translate store and lifecycle sentinel errors into these and
// hand them to Write; anything unrecognized renders as a generic 500.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field    string   `json:"field"`
	Location string   `json:"location"`
	Messages []string `json:"messages"`
}

// Error is an API-visible error with an HTTP status.
type Error struct {
	Status  int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an explicit status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest marks a request that is well-formed JSON but semantically
// rejected (expired invitation, lifecycle precondition violations).
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized marks missing or invalid credentials.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden marks an authenticated caller with the wrong role or owner.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound marks a referenced entity that does not exist.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict marks a duplicate unique field.
func Conflict(message string, fields ...FieldError) *Error {
	return &Error{Status: http.StatusConflict, Message: message, Fields: fields}
}

// Validation marks malformed or missing request fields.
func Validation(fields []FieldError) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Validation Error",
		Fields:  fields,
	}
}

// DuplicateEmail is the conflict reported for a taken email address.
func DuplicateEmail() *Error {
	return Conflict("Validation Error", FieldError{
		Field:    "email",
		Location: "body",
		Messages: []string{`"email" already exists`},
	})
}

// Write renders err as the JSON envelope. Non-*Error values are hidden
// behind a generic internal-error response.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = New(http.StatusInternalServerError, "Internal server error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

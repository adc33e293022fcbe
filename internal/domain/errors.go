package domain

import (
	"errors"
	"net/http"
)

// Error represents a business logic failure carrying the HTTP status it maps
// to. It is raised at the point a precondition fails and classified exactly
// once at the handler boundary.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Constructors for each failure kind. The status per kind is fixed.

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func Unprocessable(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message}
}

// Internal wraps an unexpected error. The wrapped error is kept for logging
// only and never reaches the client.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// IsNotFound reports whether err is or wraps an *Error with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is or wraps an *Error with status 409.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsUnprocessable reports whether err is or wraps an *Error with status 422.
func IsUnprocessable(err error) bool {
	return hasStatus(err, http.StatusUnprocessableEntity)
}

// hasStatus checks whether err is or wraps an *Error with the given status.
func hasStatus(err error, status int) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status == status
	}
	return false
}

// HTTPStatus maps an error to the HTTP status code it should produce.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if err != nil && errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

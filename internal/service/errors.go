// Package service implements the application operations exposed through the
// GraphQL layer. Services validate request-time invariants, persist through
// the repositories and hand asynchronous work to the job queues.
package service

import (
	"errors"
	"net/http"
)

// Error is the failure type services return to the GraphQL layer. It pairs
// a human-readable message with an HTTP-equivalent status code preserved
// from the originating failure where available. Wrapped causes stay
// reachable through errors.Is/errors.As.
type Error struct {
	Code    int    // HTTP-equivalent status code
	Message string // message surfaced to the client
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Conflict reports a request that clashes with existing state, such as a
// duplicate active reservation.
func Conflict(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

// NotFound reports a missing resource.
func NotFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

// Unauthorized reports a failed or missing authentication.
func Unauthorized(msg string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: msg}
}

// BadRequest reports invalid input.
func BadRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

// Dependency wraps a queue or database failure. The original message is
// preserved so the client sees what actually broke.
func Dependency(err error) *Error {
	return &Error{Code: http.StatusBadGateway, Message: err.Error(), Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: err.Error(), Err: err}
}

// CodeOf extracts the HTTP-equivalent code from err, defaulting to 500.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// Package apperror is the error taxonomy shared by services and handlers.
// Services return *Error values; the HTTP layer maps Kind to a status code
// and a stable machine-readable code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindCredentials
	KindUpstream
)

// InvalidCredentials is the only message a failed sign-in ever produces.
const InvalidCredentials = "Invalid username or password"

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindUpstream {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// InvalidFields is a validation error carrying per-field messages.
func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

func Credentials() *Error {
	return &Error{Kind: KindCredentials, Message: InvalidCredentials}
}

// Upstream reports a failed remote call. The message embeds the cause
// verbatim: "Failed to create review: connection refused".
func Upstream(op string, err error) *Error {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// Status maps err to an HTTP status. Unknown errors are 500.
func Status(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindConflict, KindCredentials:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable code written next to the detail message.
func Code(err error) string {
	e, ok := As(err)
	if !ok {
		return "internal_error"
	}
	switch e.Kind {
	case KindValidation:
		return "validation_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCredentials:
		return "invalid_credentials"
	case KindUpstream:
		return "upstream_error"
	default:
		return "internal_error"
	}
}

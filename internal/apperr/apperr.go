// Package apperr defines the error taxonomy shared by the services and the
// HTTP boundary. Handlers never pick status codes themselves; they return an
// *Error and the api package translates it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for translation at the request boundary.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Error is a classified application error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		// duplicate emails are reported as 400 like other bad input
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From extracts an *Error from err. Unclassified errors become Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Something went wrong.", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps any error to a response status.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status()
}

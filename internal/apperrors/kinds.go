package apperrors

import "errors"

// Error kinds. Every classified error unwraps to exactly one of these.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is a classified error carrying a message safe to show to the caller.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Message returns the user-visible message.
func (e *Error) Message() string {
	return e.message
}

func BadRequest(message string) *Error {
	return &Error{kind: ErrBadRequest, message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{kind: ErrUnauthenticated, message: message}
}

func Forbidden(message string) *Error {
	return &Error{kind: ErrForbidden, message: message}
}

func NotFound(message string) *Error {
	return &Error{kind: ErrNotFound, message: message}
}

func Conflict(message string) *Error {
	return &Error{kind: ErrConflict, message: message}
}

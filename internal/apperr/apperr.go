// Package apperr defines the typed error kinds the core returns: not-found,
// conflict, invariant violation, payload validation and permission errors.
// Route handlers map them to HTTP status codes; nothing inside the core
// inspects status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInvariant  = "INVARIANT_VIOLATION"
	CodeValidation = "VALIDATION_ERROR"
	CodePermission = "PERMISSION_DENIED"
	CodeInternal   = "INTERNAL_ERROR"
)

// Error is a typed application error with an HTTP status for the route layer.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// NotFound reports a missing station/program/machine/agent/user.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusNotFound}
}

// Conflict reports an operation forbidden by the current state.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusConflict}
}

// Invariant reports a candidate control/settings state that fails the
// consistency rules. It is always raised before any write.
func Invariant(format string, args ...any) *Error {
	return &Error{Code: CodeInvariant, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusConflict}
}

// Validation reports a malformed or incomplete auxiliary payload.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusBadRequest}
}

// Permission reports an actor whose role is insufficient for the action.
func Permission(format string, args ...any) *Error {
	return &Error{Code: CodePermission, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusForbidden}
}

// Internal reports a programming-error-class failure, e.g. a transition
// invoked without its required datasets preloaded.
func Internal(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusInternalServerError}
}

// As extracts the typed error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err is a typed error of the given kind.
func IsCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

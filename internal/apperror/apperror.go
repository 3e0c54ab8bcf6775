// Package apperror defines the typed failures raised by services and handlers.
// A central HTTP layer turns them into the JSON error envelope.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a failure
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindDependency      Kind = "dependency"
	KindInternal        Kind = "internal"
	KindTooManyRequests Kind = "too_many_requests"
)

// Default machine-readable codes per kind. Callers refine them with WithCode.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeDependency      = "DEPENDENCY_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// Error is a failure carrying a kind, a machine-readable code and a client-safe message
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the kind to a response status.
// Dependency failures answer 400 to stay compatible with existing clients.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindDependency:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithCode sets the machine-readable code (chainable)
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return newError(KindValidation, CodeValidation, message, nil)
}

func Conflict(message string) *Error {
	return newError(KindConflict, CodeConflict, message, nil)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, CodeUnauthorized, message, nil)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, CodeNotFound, message, nil)
}

// Dependency reports an upstream service failure such as the media host
func Dependency(message string, cause error) *Error {
	return newError(KindDependency, CodeDependency, message, cause)
}

// Internal reports an invariant violation or unexpected storage failure
func Internal(message string, cause error) *Error {
	return newError(KindInternal, CodeInternal, message, cause)
}

func TooManyRequests(message string) *Error {
	return newError(KindTooManyRequests, CodeTooManyRequests, message, nil)
}

// From converts any error into an *Error; untyped errors become internal
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return Internal("internal server error", err)
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

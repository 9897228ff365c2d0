// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the response envelope and HTTP status.
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindValidationFailed  Kind = "VALIDATION_FAILED"
	KindInvalidState      Kind = "INVALID_STATE"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindInternal          Kind = "INTERNAL"
)

// Error is a classified application error. Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind so callers can write errors.Is(err, apperror.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidationFailed, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func RateLimited(message string) *Error {
	return New(KindRateLimited, message)
}

// Internal wraps an unexpected failure. The message is safe to show to callers.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed, KindInvalidState:
		return http.StatusBadRequest
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be sent to a caller. Internal errors
// never leak their cause.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindInternal {
			if appErr.Message != "" {
				return appErr.Message
			}
			return "Internal server error"
		}
		return appErr.Message
	}
	return "Internal server error"
}

// Package apperrors defines the tagged error kinds service operations
// return. Controllers translate a kind to an HTTP status uniformly; internal
// errors keep their cause for logging but never leak detail to clients.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindValidation Kind = iota // malformed or referentially invalid input
	KindNotFound               // entity missing or soft-deleted
	KindConflict               // uniqueness violation
	KindForbidden              // authenticated but not authorized for the resource
	KindInternal               // unexpected datastore/serialization failure
)

var statusByKind = map[Kind]int{
	KindValidation: fiber.StatusBadRequest,
	KindNotFound:   fiber.StatusNotFound,
	KindConflict:   fiber.StatusConflict,
	KindForbidden:  fiber.StatusForbidden,
	KindInternal:   fiber.StatusInternalServerError,
}

// Error is the tagged result error carried across the service boundary.
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

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is kept for logs and
// Sentry, the message shown to clients stays generic.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// StatusOf maps an error to its HTTP status. Anything that is not an *Error
// counts as internal.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		if status, ok := statusByKind[appErr.Kind]; ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsInternal reports whether err should be treated as unexpected: either a
// tagged internal error or an untagged one.
func IsInternal(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == KindInternal
	}
	return true
}

// ClientMessage returns the message safe to surface to callers.
func ClientMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

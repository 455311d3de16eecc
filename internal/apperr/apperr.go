// Package apperr defines the error taxonomy shared by every service:
// each error carries a machine-stable kind plus a human-readable message
// naming the offending field or resource.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-stable classification of an error.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindBadRequest Kind = "bad_request"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Error is the taxonomy error type.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NotFound reports a missing resource.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate unique value (VIN, plate, email, asset id).
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports a validation failure. Raised before any store I/O.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a caller whose carrier or ownership does not match.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Internal reports an unexpected store or object-store failure.
func Internal(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an unexpected failure so the original error
// survives for logging while callers still see a stable kind.
func Wrap(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), cause: err}
}

// KindOf extracts the kind from an error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

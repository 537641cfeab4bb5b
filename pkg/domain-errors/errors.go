// Package domainerrors defines the coded error taxonomy shared by all
// services. Stores return infrastructure sentinels (pkg/platform/sentinel);
// services translate those into coded errors; the HTTP layer maps codes to
// status lines.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers and for HTTP translation.
type Code string

const (
	// CodeValidation marks input that fails a domain rule, e.g. a guest
	// report submitted without a contact name and phone.
	CodeValidation Code = "validation"
	// CodeBadRequest marks requests that could not be parsed at all.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an actor lacking the role or ownership a status
	// transition requires.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks an absent conversation, case, or user.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an illegal status edge or a duplicate-creation race.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks storage that is temporarily unreachable. Callers
	// may retry.
	CodeUnavailable Code = "unavailable"
	// CodeInvariantViolation marks a broken aggregate invariant. Services
	// usually re-code these before they reach the transport layer.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error carries a code, a human-readable reason, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error with a reason string.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted reason string.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readable alias for HasCode at call sites.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the reason string from err, if coded.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status line.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

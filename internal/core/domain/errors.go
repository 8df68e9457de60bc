package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services unwraps to one of these.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternalServer = errors.New("internal server error")
)

// Error carries a user-facing message and the kind it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Invalidf builds a validation error.
func Invalidf(format string, args ...any) error {
	return newError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, fmt.Sprintf(format, args...))
}

// Identity errors
var (
	ErrNoToken            = newError(ErrUnauthorized, "Access denied. No token provided.")
	ErrTokenInvalid       = newError(ErrUnauthorized, "Invalid token.")
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid email or password.")
	ErrInsufficientRole   = newError(ErrForbidden, "Access denied. Insufficient permissions.")
	ErrUserNotFound       = newError(ErrNotFound, "User not found.")
	ErrUserAlreadyExists  = newError(ErrConflict, "User already exists with this email.")
	ErrInvalidRole        = newError(ErrInvalidInput, "Invalid role.")
)

// Application errors
var (
	ErrApplicationNotFound = newError(ErrNotFound, "Application not found.")
	ErrNoHistory           = newError(ErrNotFound, "No history found for this application.")
	ErrNotApplicationOwner = newError(ErrForbidden, "Access denied. You can only access your own applications.")
	ErrNotAssignedOfficer  = newError(ErrForbidden, "Application is not assigned to you.")
	ErrOfficerNotFound     = newError(ErrInvalidInput, "Officer not found or not an inquiry officer.")
	ErrConcurrentUpdate    = newError(ErrConflict, "Application was modified concurrently. Please retry.")
	ErrInvalidDecision     = newError(ErrInvalidInput, "Status must be one of approved, rejected or hold.")
)

// Fund errors
var (
	ErrFundNotFound         = newError(ErrNotFound, "Fund not found.")
	ErrApplicationNotFunded = newError(ErrConflict, "Funds can only be issued for approved applications.")
)

// KindName returns the stable machine-readable name of err's kind.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

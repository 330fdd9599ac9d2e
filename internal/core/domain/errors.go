package domain

import "errors"

// Error kinds. Every error surfaced to a caller wraps exactly one of these so
// the transport layer can pick a status code with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

// ReasonError carries a human-readable reason on top of an error kind.
type ReasonError struct {
	kind   error
	reason string
}

func (e *ReasonError) Error() string { return e.reason }
func (e *ReasonError) Unwrap() error { return e.kind }

func newReason(kind error, reason string) *ReasonError {
	return &ReasonError{kind: kind, reason: reason}
}

// Unauthenticated returns an error that maps to 401.
func Unauthenticated(reason string) error { return newReason(ErrUnauthenticated, reason) }

// Forbidden returns an error that maps to 403.
func Forbidden(reason string) error { return newReason(ErrForbidden, reason) }

// NotFound returns an error that maps to 404.
func NotFound(reason string) error { return newReason(ErrNotFound, reason) }

// Invalid returns an error that maps to 400.
func Invalid(reason string) error { return newReason(ErrInvalidInput, reason) }

// Conflict returns an error that maps to 409.
func Conflict(reason string) error { return newReason(ErrConflict, reason) }

// Authentication failures. ErrInvalidSession and ErrSessionExpired tell the
// transport to clear the client's cookie.
var (
	ErrAuthRequired       = Unauthenticated("Authentication required")
	ErrInvalidSession     = Unauthenticated("Invalid session")
	ErrSessionExpired     = Unauthenticated("Session expired")
	ErrPrincipalNotFound  = Unauthenticated("User not found")
	ErrInvalidCredentials = Unauthenticated("Invalid credentials")
	ErrAccountPending     = Forbidden("Account pending approval")
)

// Lookup failures returned by repositories.
var (
	ErrUserNotFound    = NotFound("User not found")
	ErrSessionNotFound = NotFound("Session not found")
	ErrRecordNotFound  = NotFound("Record not found")
	ErrPlanNotFound    = NotFound("Subscription plan not found")
	ErrUserExists      = Conflict("User already exists")
)

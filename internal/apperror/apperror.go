// Package apperror defines the application's error taxonomy.
//
// Every failure a service can produce maps to exactly one sentinel below, and
// the HTTP layer owns a single table translating sentinels to status codes.
// Services never think in status codes; handlers never invent new failure
// kinds. The same failure therefore always produces the same status, no
// matter which flow raised it.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrUnavailable        = errors.New("store unavailable")
)

// AppError pairs a sentinel with a human-readable message safe to show clients.
// The sentinel drives status-code mapping (via errors.Is); the message goes
// into the response envelope. Anything NOT wrapped in an AppError is treated
// as internal and surfaced as a generic 500.
type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // human-readable, client-safe
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "email already registered",
	}
}

// InvalidCredentials is deliberately vague: the same error (and message) is
// returned whether the email is unknown or the password is wrong, so responses
// carry no user-enumeration signal.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "wrong email or password",
	}
}

func TokenMissing() *AppError {
	return &AppError{
		Err:     ErrTokenMissing,
		Message: "token not provided",
	}
}

// TokenMalformed means the Authorization header was present but did not carry
// a bearer token — the client sent something that isn't even shaped like a
// credential. Distinct from TokenInvalid.
func TokenMalformed() *AppError {
	return &AppError{
		Err:     ErrTokenMalformed,
		Message: "invalid token format",
	}
}

// TokenInvalid covers a token that was supplied but failed verification —
// expired, tampered signature, or undecodable. The precise reason is logged
// server-side but collapsed into one client message.
func TokenInvalid() *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: "invalid or expired token",
	}
}

// Unavailable marks a transient store failure (timeout, connection loss).
// Mapped to 503 so clients know the request is retryable.
func Unavailable() *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: "service temporarily unavailable",
	}
}

package service

import "errors"

// Centralized service layer errors.
// Every error a service returns wraps one of the three kinds below so the
// handler layer can map it without knowing each specific error.

// ===== Kinds =====
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

// Error is a specific failure of a given kind. Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap lets errors.Is match the kind.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = newError(ErrUnauthenticated, "Invalid credentials")
	ErrInvalidToken       = newError(ErrUnauthenticated, "Authentication invalid")
	ErrTokenExpired       = newError(ErrUnauthenticated, "Authentication expired")
	ErrEmailAlreadyExists = newError(ErrValidation, "Email already in use")
	ErrEmailRequired      = newError(ErrValidation, "Please provide email")
	ErrInvalidEmail       = newError(ErrValidation, "Please provide a valid email")
	ErrPasswordRequired   = newError(ErrValidation, "Please provide password")
	ErrPasswordTooShort   = newError(ErrValidation, "Password must be at least 5 characters")
	ErrPasswordTooLong    = newError(ErrValidation, "Password must be at most 128 characters")
	ErrNameRequired       = newError(ErrValidation, "Please provide name")
	ErrNameLength         = newError(ErrValidation, "Name must be between 3 and 50 characters")
)

// ===== Job Errors =====
var (
	ErrJobNotFound        = newError(ErrNotFound, "Job not found")
	ErrJobTitleRequired   = newError(ErrValidation, "Please provide title")
	ErrJobTitleTooLong    = newError(ErrValidation, "Title must be at most 100 characters")
	ErrJobCompanyRequired = newError(ErrValidation, "Please provide company")
	ErrJobCompanyTooLong  = newError(ErrValidation, "Company must be at most 50 characters")
	ErrInvalidJobStatus   = newError(ErrValidation, "Status must be one of pending, interview, declined")
	ErrNoJobFields        = newError(ErrValidation, "Provide at least one of title, company, status")
)

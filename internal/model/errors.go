package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Authentication errors (1xxx)
	ErrCodeUnauthorized ErrorCode = 1001
	ErrCodeTokenExpired ErrorCode = 1002
	ErrCodeTokenInvalid ErrorCode = 1003
	ErrCodeLoginFailed  ErrorCode = 1004

	// Resource errors (3xxx)
	ErrCodeNotFound      ErrorCode = 3001
	ErrCodeAlreadyExists ErrorCode = 3002
	ErrCodeConflict      ErrorCode = 3003

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4029

	// Internal errors (5xxx)
	ErrCodeInternal ErrorCode = 5001
	ErrCodeDatabase ErrorCode = 5002
)

const errorTypeBase = "https://jobs-api.forgo.software/errors/"

// ProblemDetails is an RFC 9457 problem document. The human readable
// explanation lives in "message" so every error body has the same shape.
type ProblemDetails struct {
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Code    ErrorCode    `json:"code,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Message)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func newProblem(slug, title string, status int, message string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:    errorTypeBase + slug,
		Title:   title,
		Status:  status,
		Message: message,
		Code:    code,
	}
}

// Common error constructors

func NewUnauthorizedError(message string) *ProblemDetails {
	if message == "" {
		message = "Authentication invalid"
	}
	return newProblem("unauthorized", "Unauthorized", http.StatusUnauthorized, message, ErrCodeUnauthorized)
}

func NewNotFoundError(resource string) *ProblemDetails {
	return newProblem("not-found", "Not Found", http.StatusNotFound, fmt.Sprintf("%s not found", resource), ErrCodeNotFound)
}

func NewRouteNotFoundError() *ProblemDetails {
	return newProblem("not-found", "Not Found", http.StatusNotFound, "Route does not exist", ErrCodeNotFound)
}

// NewValidationError reports bad input. Message defaults to the first field error.
func NewValidationError(message string, errors []FieldError) *ProblemDetails {
	if message == "" {
		message = "One or more fields failed validation"
		if len(errors) > 0 {
			message = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
			if len(errors) > 1 {
				message = fmt.Sprintf("%s (and %d more errors)", message, len(errors)-1)
			}
		}
	}
	p := newProblem("validation", "Validation Error", http.StatusBadRequest, message, ErrCodeValidation)
	p.Errors = errors
	return p
}

func NewBadRequestError(message string) *ProblemDetails {
	return newProblem("bad-request", "Bad Request", http.StatusBadRequest, message, ErrCodeInvalidInput)
}

func NewConflictError(message string) *ProblemDetails {
	return newProblem("conflict", "Conflict", http.StatusConflict, message, ErrCodeConflict)
}

// NewInternalError never carries the underlying error text.
func NewInternalError() *ProblemDetails {
	return newProblem("internal", "Internal Server Error", http.StatusInternalServerError,
		"Something went wrong, try again later", ErrCodeInternal)
}

func NewMethodNotAllowedError(method string) *ProblemDetails {
	return newProblem("method-not-allowed", "Method Not Allowed", http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed on this route", method), 0)
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem("rate-limited", "Too Many Requests", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests from this address, retry after %d seconds", retryAfter), ErrCodeRateLimited)
}

package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Credential limits
const (
	MinPasswordLength = 5
	MaxPasswordLength = 128
	MinNameLength     = 3
	MaxNameLength     = 50
)

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Hash      *string   `json:"-"` // Never expose password hash
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// UserSummary is the public part of a user returned with a token
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public representation of the user
func (u *User) Summary() UserSummary {
	return UserSummary{Name: u.Name, Email: u.Email}
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Normalize trims the name and lowercases the email
func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks required fields and formats
func (r *RegisterRequest) Validate() []FieldError {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
		validation.Field(&r.Name, validation.Required, validation.RuneLength(MinNameLength, MaxNameLength)),
	))
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks presence; wrong credentials are an authentication failure
func (r *LoginRequest) Validate() []FieldError {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	))
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

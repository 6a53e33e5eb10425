// Package service implements the business logic layer for the jobs API.
//
// Services sit between HTTP handlers and repositories. They validate input,
// apply defaults, and enforce ownership of jobs.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Repository interfaces are defined here so tests can use in-memory stores
//   - Context is passed through for cancellation and request-scoped values
//
// # Error Handling
//
// Every error a service produces itself is an *Error of one of three kinds:
//
//	ErrValidation       // bad input, including an email already in use
//	ErrUnauthenticated  // bad credentials or token
//	ErrNotFound         // missing, or owned by another user
//
// The handler layer maps kinds to status codes with errors.Is and shows
// Error.Message to the client. Anything else, such as a store failure, is
// passed through unchanged and treated as internal.
//
// # Example Usage
//
//	jobs := NewJobService(JobServiceConfig{JobRepo: jobRepository})
//	job, err := jobs.Create(ctx, userID, CreateJobInput{
//	    Title:   "Backend Engineer",
//	    Company: "Acme",
//	})
package service

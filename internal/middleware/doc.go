// Package middleware provides the HTTP middleware for the jobs API.
//
// Every request passes through the global chain assembled in the server
// package: request IDs, client address resolution, structured request
// logging, security headers, CORS, gzip, panic recovery, per-address rate
// limiting and markup stripping of JSON bodies.
//
// Auth guards the job routes. It accepts "Authorization: Bearer <token>",
// validates the token and stores the caller in the request context:
//
//	userID := middleware.GetUserID(r.Context())
//
// Idempotency replays the first response for a retried POST carrying the
// same Idempotency-Key. It runs after Auth so keys are scoped per user.
//
// Rate limiting counts requests per client in fixed windows, kept in
// process memory by default or in Redis when several instances share one
// limit.
package middleware

// Package server wires handlers and middleware into the HTTP router.
//
// Routes:
//
//	GET    /                      landing page
//	GET    /health                liveness and database reachability
//	GET    /api-docs/             Swagger UI, spec at /api-docs/doc.json
//	POST   /api/v1/auth/register  create an account, returns a token
//	POST   /api/v1/auth/login     exchange credentials for a token
//	GET    /api/v1/jobs           list the caller's jobs
//	POST   /api/v1/jobs           create a job (Idempotency-Key aware)
//	GET    /api/v1/jobs/{id}      read one job
//	PATCH  /api/v1/jobs/{id}      change title, company or status
//	DELETE /api/v1/jobs/{id}      remove a job
//
// Every request passes through request ID, client IP, logging, panic
// recovery, security headers, CORS, compression, rate limiting and markup
// sanitizing, in that order.
package server

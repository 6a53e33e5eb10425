// Package model defines the domain entities and request/response shapes of
// the Jobs API.
//
//   - User: an account; the password hash is never serialized
//   - Job: a job application owned by exactly one user
//   - JobStatus: pending, interview or declined
//
// Request types validate themselves with ozzo-validation and return
// []FieldError so handlers can answer with a single validation problem.
//
// RFC 9457 Problem Details errors are defined in errors.go. Every problem
// carries a "message" member:
//
//	{"type": "...", "title": "Not Found", "status": 404, "message": "Job not found"}
package model

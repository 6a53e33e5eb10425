// Package handler provides HTTP request handlers for the jobs API.
//
// Handlers decode and validate request bodies, call a service, and write
// either a JSON body or an RFC 9457 problem document.
//
// # Error Mapping
//
// MapServiceError is the single place where service errors become status
// codes:
//
//	service.ErrValidation      → 400
//	service.ErrUnauthenticated → 401
//	service.ErrNotFound        → 404
//	anything else              → 500 with a generic message
//
// Every error body carries a "message" field. Internal errors are logged
// and never echoed to the client.
//
// # Authentication
//
// Job handlers read the caller from middleware.GetUserID and pass it to the
// service as the owner of every operation.
package handler

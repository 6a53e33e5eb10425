// Package helpers provides HTTP test utilities: a request builder and
// assertions for status codes and problem responses.
package helpers

// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// When adding a new error here, add it to mapError (internal/daemon/api_server.go)
// and to TestMapError (internal/daemon/api_server_test.go).
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// This typically results from validation failures or incorrect request parameters.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrCommandNotFound indicates that the requested sf command is not part of the
	// registered command set. It occurs when a command ID in a request matches nothing
	// that discovery produced.
	// Recommended to map to HTTP 404 Not Found.
	ErrCommandNotFound = errors.New("command not found")

	// ErrRootNotFound indicates that no project root is registered under the requested name.
	// Recommended to map to HTTP 404 Not Found.
	ErrRootNotFound = errors.New("project root not found")

	// ErrDiscoveryFailed indicates that re-running command discovery against the sf CLI failed.
	// This represents a communication or execution error with the external CLI process.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrDiscoveryFailed = errors.New("command discovery failed")
)

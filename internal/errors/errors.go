// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrRepositoryNotFound indicates that the requested repository is not configured.
	// This occurs when a request names a repository that has no entry in the config file.
	// Recommended to map to HTTP 404 Not Found.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrPathNotFound indicates that a requested path or revision does not exist inside a repository.
	// The backend was consulted and answered; the target itself is missing.
	// Recommended to map to HTTP 404 Not Found.
	ErrPathNotFound = errors.New("path not found")

	// ErrBackendUnavailable indicates that the version control backend could not be invoked at all,
	// or that its repository server could not be reached.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendTimeout indicates that a backend invocation exceeded its bounded timeout.
	// Recommended to map to HTTP 504 Gateway Timeout.
	ErrBackendTimeout = errors.New("backend timeout")

	// ErrBackendParse indicates that backend output did not match the expected XML schema.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrBackendParse = errors.New("backend parse error")

	// ErrBackendOperationFailed indicates that a mutating backend operation exited non-zero.
	// The wrapped error text carries the backend's diagnostic output so callers can surface it.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrBackendOperationFailed = errors.New("backend operation failed")

	// ErrInvalidName indicates that a requested tag/branch/repository name failed validation.
	// Only letters, digits, dots, dashes and underscores are allowed.
	// Recommended to map to HTTP 400 Bad Request.
	ErrInvalidName = errors.New("invalid name")

	// ErrNameExists indicates that a tag/branch/repository with the requested name already exists.
	// Recommended to map to HTTP 409 Conflict.
	ErrNameExists = errors.New("name already exists")

	// ErrAuthorAttributionFailed indicates that rewriting the author of a newly created revision failed.
	// The creation itself is final by then; this error is reported alongside a successful outcome,
	// never instead of it.
	ErrAuthorAttributionFailed = errors.New("author attribution failed")

	// ErrAuthFailed indicates that credential verification failed or a session could not be issued.
	// Recommended to map to HTTP 401 Unauthorized.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnauthenticated indicates that a request carried no resolvable session token.
	// Recommended to map to HTTP 401 Unauthorized.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoTagsDirectory indicates that the repository has no conventional tags directory.
	// Recommended to map to HTTP 404 Not Found.
	ErrNoTagsDirectory = errors.New("no tags directory")

	// ErrNoBranchesDirectory indicates that the repository has no conventional branches directory.
	// Recommended to map to HTTP 404 Not Found.
	ErrNoBranchesDirectory = errors.New("no branches directory")
)

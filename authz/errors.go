package authz

import "errors"

// Failure signals surfaced by the authorization core. The HTTP layer maps
// each to a status with errors.Is - never by inspecting message text.
var (
	// ErrUnauthenticated means no valid actor was attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoOrganization means the actor has no resolvable organization or
	// no membership in the requested one. There is no guest fallback:
	// absence of context is always an error.
	ErrNoOrganization = errors.New("no organization context")

	// ErrForbidden means the resolved role is insufficient.
	ErrForbidden = errors.New("forbidden: you don't have permission to perform this action")

	// ErrUnknownPermission means a route asked for a permission key the
	// registry doesn't know. A defect to fix before deployment.
	ErrUnknownPermission = errors.New("unknown permission key")

	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCannotRemoveSelf = errors.New("cannot remove yourself from organization")
)

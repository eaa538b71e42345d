// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates no valid identity could be resolved
	// (absent, malformed, expired, or revoked tokens).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized indicates a valid identity that is not the resource owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email or username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates malformed or incomplete caller input. Wrap it
	// with the specific complaint: fmt.Errorf("%w: empty name", ErrValidation).
	ErrValidation = errors.New("invalid input")
)

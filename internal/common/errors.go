// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (missing, invalid or malformed token).
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for a well-formed token past its expiry.
	// It is a special case of an invalid token for HTTP purposes.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSecret reports an absent signing secret. It is a server
	// configuration problem, never a credential problem.
	ErrMissingSecret = errors.New("signing secret is not configured")

	// Password reset errors.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptySecret        = errors.New("jwt secret must not be empty")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

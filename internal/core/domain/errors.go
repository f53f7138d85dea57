package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the referenced account does not exist
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists indicates the username or email is already registered
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the password did not match during login
	ErrUnauthorized = errors.New("wrong password")

	// ErrAccessDenied indicates refresh-token verification failed or the
	// session is unknown. Unknown user, unknown session and bad token all
	// collapse into this one error so callers cannot probe for valid sessions.
	ErrAccessDenied = errors.New("access denied")

	// ErrTokenExpired indicates the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")
)

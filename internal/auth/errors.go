package auth

import "errors"

var (
	// ErrMissingAPIKey is returned when the Authorization header is absent.
	ErrMissingAPIKey = errors.New("missing Authorization header")

	// ErrInvalidAPIKey is returned when the key is malformed or not recognised.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrMissingUserID is returned when a route needs a user and none was sent.
	ErrMissingUserID = errors.New("user identification required")

	// ErrInvalidUserID is returned when the user header has an invalid format.
	ErrInvalidUserID = errors.New("invalid user identifier format")

	// ErrUnknownUser is returned when the named user does not exist.
	ErrUnknownUser = errors.New("unknown user")
)

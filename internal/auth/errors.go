package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

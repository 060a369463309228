package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMalformedToken     = errors.New("malformed token")
)

package auth

import "errors"

var (
	// ErrMissingToken is returned when a request carries no token
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrRevokedToken is returned when a refresh token is not in the store
	ErrRevokedToken = errors.New("revoked token")
	// ErrMissingUsername is returned when logging in without a username
	ErrMissingUsername = errors.New("username is required")
)

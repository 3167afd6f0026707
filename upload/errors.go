package upload

import "errors"

var (
	// ErrNotFound is returned when a stored file does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for invalid file names or missing content
	ErrInvalidInput = errors.New("invalid input")
	// ErrTooLarge is returned when content exceeds the configured size limit
	ErrTooLarge = errors.New("content too large")
)

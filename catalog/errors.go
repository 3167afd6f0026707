package catalog

import "errors"

var (
	// ErrNotFound is returned when a user or book does not exist
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput is returned when a record fails validation
	ErrInvalidInput = errors.New("invalid input")
)

package http

import "errors"

var (
	// ErrBodyTooLarge is returned when a request body exceeds MaxUploadSize.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrMalformedBody is returned when a form or multipart body cannot be parsed.
	ErrMalformedBody = errors.New("malformed request body")
)

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/switchyard"
	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/sagarc03/switchyard/upload"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// An empty message means the error text is reported.
var errorMappings = []errorMapping{
	{upload.ErrNotFound, http.StatusNotFound, "not_found", "File not found"},
	{catalog.ErrNotFound, http.StatusNotFound, "not_found", "Record not found"},
	{switchyard.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed"},
	{switchyard.ErrNoMatch, http.StatusNotFound, "not_found", "No matching route"},
	{upload.ErrInvalidInput, http.StatusBadRequest, "invalid_path", "Invalid path"},
	{catalog.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
	{auth.ErrMissingUsername, http.StatusBadRequest, "invalid_input", "Username is required"},
	{switchyard.ErrEmptyBody, http.StatusBadRequest, "invalid_input", "Request body is empty"},
	{ErrMalformedBody, http.StatusBadRequest, "invalid_input", "Malformed request body"},
	{upload.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds the size limit"},
	{ErrBodyTooLarge, http.StatusRequestEntityTooLarge, "too_large", "Request body exceeds the size limit"},
	{auth.ErrMissingToken, http.StatusUnauthorized, "unauthorized", "Missing token"},
	{auth.ErrInvalidToken, http.StatusForbidden, "forbidden", "Invalid token"},
	{auth.ErrRevokedToken, http.StatusForbidden, "forbidden", "Token revoked"},
	{switchyard.ErrHandlerTimeout, http.StatusGatewayTimeout, "timeout", "Request timed out"},
}

// ErrorStatus maps err to an HTTP status, an error code and a client
// message. Unknown errors map to 500 internal_error.
func ErrorStatus(err error) (status int, code, message string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message = m.message
			if message == "" {
				message = err.Error()
			}
			return m.status, m.code, message
		}
	}
	return http.StatusInternalServerError, "internal_error", "Internal server error"
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	status, code, message := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	} else {
		slog.Debug("request error", "error", err, "status", status)
	}
	WriteError(w, status, code, message)
}

// ErrorHandler returns an error handler that answers known errors with a
// JSON error body. Unknown errors are passed on and end as 500 failures.
func ErrorHandler() switchyard.ErrorHandlerFunc {
	return func(c *switchyard.Context, err error, next switchyard.Next) {
		status, code, message := ErrorStatus(err)
		if status == http.StatusInternalServerError {
			next(nil)
			return
		}

		c.Logger().Debug("request error", "err", err, "status", status)
		_ = c.JSON(status, ErrorResponse{Error: code, Message: message})
	}
}

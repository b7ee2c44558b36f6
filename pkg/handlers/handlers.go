// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body written for every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as a JSON error body. Server errors
// (5xx) replace the message with the generic status text so internal detail
// stays in the logs.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
		msg = http.StatusText(status)
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}

	RespondJSON(w, status, ErrorResponse{Error: msg})
}

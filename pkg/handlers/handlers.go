// Package handlers provides shared HTTP response helpers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondText writes body as a plain text response with the given status code.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body + "\n"))
}

// RespondError logs err and writes it as a JSON error body.
// Server errors are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)
	} else {
		logger.Warn("handler error", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

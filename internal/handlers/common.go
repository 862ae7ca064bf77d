package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docqa-ai/internal/service"
)

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// statusForError maps the service error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrConfig), errors.Is(err, service.ErrTemplate):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrConnection):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrAuth), errors.Is(err, service.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON renders v as the response body. An encoding failure is
// logged rather than surfaced; the status line is already out.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode style response", slog.String("error", err.Error()))
	}
}

// errResponse is the uniform error body of the style endpoints.
type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

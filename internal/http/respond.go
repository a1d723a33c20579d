package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// statusFor maps pipeline error kinds onto response codes: unknown track 404,
// upstream retrieval 502, decode/persist failures 500, bad input 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyTrackID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRetrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

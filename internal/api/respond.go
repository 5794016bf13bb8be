package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soochol/postplan/internal/recurrence"
	"github.com/soochol/postplan/internal/repository"
	"github.com/soochol/postplan/internal/services"
	"github.com/soochol/postplan/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recurrence.ErrInvalidConfig),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrNoOccurrence):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		slog.Error("api: request failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

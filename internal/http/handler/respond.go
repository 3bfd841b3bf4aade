package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"meridian/internal/job"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the core error taxonomy onto HTTP statuses: validation
// 400, conflict 409, unknown id 404, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, job.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, job.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, job.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

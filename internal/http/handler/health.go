package handler

import (
	"log"
	"net/http"
	"strconv"

	"meridian/internal/health"
)

type HealthHandler struct {
	Monitor *health.Monitor
}

// Run triggers an immediate health check and returns the aggregate.
func (h *HealthHandler) Run(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Monitor.Run(r.Context())
	if err != nil {
		log.Printf("health run: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Status returns the latest snapshot without re-running checks.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := h.Monitor.Status()
	if err != nil {
		log.Printf("health status: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"overall": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *HealthHandler) Log(w http.ResponseWriter, r *http.Request) {
	n := 10
	if q := r.URL.Query().Get("count"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 100 {
			http.Error(w, "count must be 1-100", http.StatusBadRequest)
			return
		}
		n = v
	}
	entries, err := h.Monitor.Recent(n)
	if err != nil {
		log.Printf("health log: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

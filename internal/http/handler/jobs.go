package handler

import (
	"net/http"

	"meridian/internal/job"

	"github.com/go-chi/chi/v5"
)

type JobsHandler struct {
	Registry *job.Registry
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	f := job.Filter{
		Status: job.Status(r.URL.Query().Get("status")),
		Kind:   job.Kind(r.URL.Query().Get("kind")),
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.Registry.List(f)})
}

func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.Registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "job deleted"})
}

func (h *JobsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Registry.Clear()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

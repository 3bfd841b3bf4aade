package handler

import (
	"net/http"
	"strconv"

	"meridian/internal/catalog"
	"meridian/internal/rotation"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Catalog   *catalog.Catalog
	Sequencer *rotation.Sequencer
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.Catalog.Categories})
}

func (h *CatalogHandler) Tracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"short": h.Catalog.Tracks.Short,
		"long":  h.Catalog.Tracks.Long,
		"total": len(h.Catalog.Tracks.Short) + len(h.Catalog.Tracks.Long),
	})
}

func (h *CatalogHandler) TracksForDuration(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(chi.URLParam(r, "seconds"))
	if err != nil {
		http.Error(w, "invalid duration", http.StatusBadRequest)
		return
	}
	category := "long"
	if seconds <= catalog.ShortTrackMaxSeconds {
		category = "short"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":       category,
		"video_duration": seconds,
		"tracks":         h.Catalog.TracksForDuration(seconds),
	})
}

// Config is the full configuration snapshot for the dashboard.
func (h *CatalogHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":     h.Catalog.Categories,
		"duration_cycle": h.Catalog.Durations,
		"tracks":         h.Catalog.Tracks,
		"rotation_state": h.Sequencer.State(),
	})
}

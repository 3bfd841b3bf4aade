package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"meridian/internal/job"
	"meridian/internal/render"

	"github.com/go-chi/chi/v5"
)

type PublishHandler struct {
	Registry  *job.Registry
	Publisher render.Publisher
}

type publishReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Privacy     string     `json:"privacy"`
	PublishAt   *time.Time `json:"publish_at"`
}

// Publish pushes a completed job's artifact to the remote platform and
// attaches the resulting publish record to the job.
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Privacy == "" {
		req.Privacy = "private"
	}

	j, err := h.Registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if j.Status != job.StatusCompleted || j.Artifact == nil {
		http.Error(w, "job has no publishable artifact", http.StatusConflict)
		return
	}

	rec, err := h.Publisher.Publish(r.Context(), *j.Artifact, render.Metadata{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Privacy:     req.Privacy,
		PublishAt:   req.PublishAt,
	})
	if err != nil {
		log.Printf("publish job %s: %v\n", id, err)
		http.Error(w, "publish failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	var updated job.Job
	if rec.ScheduledFor != nil {
		updated, err = h.Registry.SetScheduled(id, rec.ID, rec.URL, *rec.ScheduledFor)
	} else {
		updated, err = h.Registry.SetPublished(id, rec.ID, rec.URL, time.Now())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job":    updated,
		"remote": rec,
		"status": publishStatus(rec),
	})
}

func publishStatus(rec render.RemoteRecord) string {
	if rec.ScheduledFor != nil {
		return "scheduled"
	}
	return "published"
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"meridian/internal/job"
	"meridian/internal/render"
	"meridian/internal/rotation"
)

const maxBatchSize = 50

type GenerateHandler struct {
	Sequencer *rotation.Sequencer
	Registry  *job.Registry
	Runner    *render.Runner
}

type generateReq struct {
	Count int      `json:"count"`
	Kind  job.Kind `json:"kind"`
}

// Generate creates a batch of jobs from consecutive rotation selections and
// hands each to the render runner. The whole batch draws its selections under
// one sequencer lock, so overlapping requests never share a cursor position.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 1 || req.Count > maxBatchSize {
		http.Error(w, "count must be 1-50", http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		req.Kind = job.KindLongForm
	}

	sels, state, err := h.Sequencer.AdvanceN(req.Count)
	if err != nil {
		log.Printf("generate: advance: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	queued := make([]job.Job, 0, len(sels))
	var createErr error
	for _, sel := range sels {
		j, err := h.Registry.Create(req.Kind, sel)
		if err != nil {
			log.Printf("generate: create job: %v\n", err)
			createErr = err
			break
		}
		h.Runner.Dispatch(r.Context(), j.ID, sel)
		queued = append(queued, j)
	}

	payload := map[string]any{
		"queued": queued,
		"count":  len(queued),
		"state":  state,
	}
	if createErr != nil {
		// The batch is partially created; the caller must know the rest
		// never made it into the registry.
		payload["error"] = "job creation failed after " + strconv.Itoa(len(queued)) + " of " + strconv.Itoa(len(sels))
		writeJSON(w, http.StatusInternalServerError, payload)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

// Next previews the selection the next generation would use.
func (h *GenerateHandler) Next(w http.ResponseWriter, r *http.Request) {
	sel := h.Sequencer.Peek()
	writeJSON(w, http.StatusOK, map[string]any{
		"category":       sel.Category,
		"duration":       sel.Duration,
		"duration_label": durationLabel(sel.Duration),
		"track":          sel.Track,
		"state":          h.Sequencer.State(),
	})
}

func (h *GenerateHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Sequencer.State())
}

// Reset zeroes the rotation cursor.
func (h *GenerateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.Sequencer.Reset()
	if err != nil {
		log.Printf("generate: reset: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func durationLabel(seconds int) string {
	minutes := seconds / 60
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + "min"
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"meridian/internal/ideas"
)

type IdeasHandler struct {
	Bank      *ideas.Bank
	Generator *ideas.Generator
	Scheduler *ideas.Scheduler

	// DefaultTarget is how many ideas a generation run produces when the
	// request does not say.
	DefaultTarget int
}

func (h *IdeasHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Bank.Stats()
	if err != nil {
		log.Printf("idea stats: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":  stats,
		"health": ideas.Health(stats.Available),
	})
}

type generateIdeasReq struct {
	Target int `json:"target"`
}

func (h *IdeasHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateIdeasReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Target == 0 {
		req.Target = h.DefaultTarget
	}
	if req.Target < 1 || req.Target > 500 {
		http.Error(w, "target must be 1-500", http.StatusBadRequest)
		return
	}

	// The run outlives this request.
	if err := h.Generator.Start(context.Background(), req.Target); err != nil {
		if errors.Is(err, ideas.ErrBusy) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, h.Generator.Progress())
}

func (h *IdeasHandler) Progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Generator.Progress())
}

func (h *IdeasHandler) AutopublishStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Scheduler.Status(time.Now())
	if err != nil {
		log.Printf("autopublish status: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *IdeasHandler) AutopublishToggle(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.Scheduler.Toggle()
	if err != nil {
		log.Printf("autopublish toggle: %v\n", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"meridian/internal/event"
	"meridian/internal/job"
)

// reconnectMillis is the backoff hint sent to EventSource clients; a client
// that reconnects gets a fresh init snapshot, so missed events never matter.
const reconnectMillis = 3000

type EventsHandler struct {
	Hub      *event.Hub
	Registry *job.Registry
}

// Stream serves the live job event feed as server-sent events. The first
// frame is always an init snapshot of every job; incremental events follow
// until the client goes away or falls too far behind.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "retry: %d\n\n", reconnectMillis)
	flusher.Flush()

	sub := h.Hub.Subscribe(func() any { return h.Registry.Snapshot() })
	defer sub.Close()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.Events():
			if !open {
				// Dropped by the hub; the client reconnects and resyncs.
				return
			}
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
			flusher.Flush()
		}
	}
}

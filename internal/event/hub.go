package event

import "sync"

// Kind identifies what a hub event describes.
type Kind string

const (
	KindInit        Kind = "init"
	KindJobCreated  Kind = "job_created"
	KindJobUpdate   Kind = "job_update"
	KindJobDeleted  Kind = "job_deleted"
	KindJobsCleared Kind = "jobs_cleared"
)

// Event is one change notification fanned out to subscribers.
type Event struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload"`
}

const subscriberBuffer = 64

// Subscriber is one live observer. Its channel is closed when the hub drops
// it (slow consumer) or when Close is called.
type Subscriber struct {
	hub *Hub
	ch  chan Event
}

// Events returns the subscriber's event channel. The first event is always
// an init snapshot.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// Close detaches the subscriber from the hub.
func (s *Subscriber) Close() { s.hub.drop(s) }

// Hub fans registry changes out to live subscribers. It holds no job state of
// its own; a new subscriber gets a full snapshot and then increments. Delivery
// is best effort per subscriber: a consumer that falls behind is dropped and
// is expected to reconnect and resync from a fresh snapshot.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new observer. snapshotFn is invoked under the hub
// lock so no event published afterwards can be missed between snapshot and
// registration. snapshotFn must not publish back into the hub.
func (h *Hub) Subscribe(snapshotFn func() any) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{hub: h, ch: make(chan Event, subscriberBuffer)}
	sub.ch <- Event{Kind: KindInit, Payload: snapshotFn()}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers an event to every current subscriber without blocking.
// A subscriber whose buffer is full is closed and removed.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			delete(h.subs, sub)
			close(sub.ch)
		}
	}
}

// SubscriberCount reports the number of attached observers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) drop(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

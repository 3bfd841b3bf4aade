package ideas

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Anchor is a fixed local time-of-day at which autopublish acts.
type Anchor struct {
	Hour   int
	Minute int
}

// DefaultAnchors are the two daily publish times (local clock).
var DefaultAnchors = []Anchor{{Hour: 7, Minute: 0}, {Hour: 21, Minute: 30}}

// ParseAnchor reads an "HH:MM" local clock time.
func ParseAnchor(s string) (Anchor, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Anchor{}, fmt.Errorf("invalid publish time %q: %w", s, err)
	}
	return Anchor{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Slot is one upcoming publish time.
type Slot struct {
	Local string    `json:"local"`
	UTC   time.Time `json:"utc"`
	Day   string    `json:"day"`
}

// NextSlots computes the next n future publish times after now, in
// chronological order. Pure: anchors and location come in as arguments and a
// returned slot is always strictly after now.
func NextSlots(n int, now time.Time, loc *time.Location, anchors []Anchor) []time.Time {
	if n < 1 || len(anchors) == 0 {
		return nil
	}
	local := now.In(loc)
	day := local
	out := make([]time.Time, 0, n)
	for len(out) < n {
		for _, a := range anchors {
			slot := time.Date(day.Year(), day.Month(), day.Day(), a.Hour, a.Minute, 0, 0, loc)
			if slot.After(local) {
				out = append(out, slot)
				if len(out) >= n {
					break
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// Status is the autopublish snapshot exposed to the dashboard.
type Status struct {
	Enabled        bool        `json:"enabled"`
	IdeasAvailable int         `json:"ideas_available"`
	IdeaBankHealth HealthLevel `json:"idea_bank_health"`
	NextSlots      []Slot      `json:"next_slots"`
}

// Scheduler owns the autopublish enabled flag and slot computation. Slots are
// always derived on demand, never stored.
type Scheduler struct {
	mu      sync.Mutex
	store   Store
	bank    *Bank
	loc     *time.Location
	anchors []Anchor
}

func NewScheduler(store Store, bank *Bank, loc *time.Location, anchors []Anchor) *Scheduler {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	return &Scheduler{store: store, bank: bank, loc: loc, anchors: anchors}
}

// Enabled reports the persisted autopublish flag.
func (s *Scheduler) Enabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.LoadState()
	if err != nil {
		return false, err
	}
	return st.Enabled, nil
}

// Toggle flips and persists the enabled flag, returning the new value.
func (s *Scheduler) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.LoadState()
	if err != nil {
		return false, err
	}
	st.Enabled = !st.Enabled
	st.UpdatedAt = time.Now()
	if err := s.store.SaveState(&st); err != nil {
		return false, fmt.Errorf("persist autopublish state: %w", err)
	}
	return st.Enabled, nil
}

// Slots returns the next n publish slots after now.
func (s *Scheduler) Slots(n int, now time.Time) []Slot {
	times := NextSlots(n, now, s.loc, s.anchors)
	out := make([]Slot, 0, len(times))
	for _, t := range times {
		out = append(out, Slot{
			Local: t.Format("2006-01-02 03:04 PM MST"),
			UTC:   t.UTC(),
			Day:   t.Format("Monday"),
		})
	}
	return out
}

// Status aggregates the enabled flag, bank inventory and upcoming slots.
func (s *Scheduler) Status(now time.Time) (Status, error) {
	enabled, err := s.Enabled()
	if err != nil {
		return Status{}, err
	}
	stats, err := s.bank.Stats()
	if err != nil {
		return Status{}, err
	}
	return Status{
		Enabled:        enabled,
		IdeasAvailable: stats.Available,
		IdeaBankHealth: Health(stats.Available),
		NextSlots:      s.Slots(7, now),
	}, nil
}

package rotation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"meridian/internal/catalog"
)

// Selection is one (category, duration, track) tuple handed to a render job.
type Selection struct {
	Category catalog.Category `json:"category"`
	Duration int              `json:"duration"`
	Track    catalog.Track    `json:"track"`
}

// Sequencer advances the rotation cursor over the catalog. All mutation is
// serialized: a batch of N advances hands out N strictly distinct cursor
// positions, and a position is only handed out once its successor state has
// been durably saved.
type Sequencer struct {
	mu    sync.Mutex
	cat   *catalog.Catalog
	store StateStore
	state State
}

func NewSequencer(cat *catalog.Catalog, store StateStore) (*Sequencer, error) {
	st, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load rotation state: %w", err)
	}
	return &Sequencer{cat: cat, store: store, state: st}, nil
}

// selectionAt computes the selection for a given cursor without mutating it.
func (s *Sequencer) selectionAt(st State) Selection {
	cat := s.cat.Categories[int(st.CategoryIndex)%len(s.cat.Categories)]
	dur := s.cat.Durations[int(st.DurationIndex)%len(s.cat.Durations)]
	tracks := s.cat.TracksForDuration(dur)
	var track catalog.Track
	if len(tracks) > 0 {
		track = tracks[int(st.TrackIndex)%len(tracks)]
	}
	return Selection{Category: cat, Duration: dur, Track: track}
}

// Advance returns the next selection and the persisted successor state.
func (s *Sequencer) Advance() (Selection, State, error) {
	sels, st, err := s.AdvanceN(1)
	if err != nil {
		return Selection{}, State{}, err
	}
	return sels[0], st, nil
}

// AdvanceN performs n advances as one atomic batch. Each advance is persisted
// before its selection is considered handed out; a persistence failure aborts
// the batch and no selections are returned. Already-persisted advances from an
// aborted batch become unused slots rather than risking duplicate assignment.
func (s *Sequencer) AdvanceN(n int) ([]Selection, State, error) {
	if n < 1 {
		return nil, State{}, errors.New("advance count must be >= 1")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sels := make([]Selection, 0, n)
	for i := 0; i < n; i++ {
		sel := s.selectionAt(s.state)
		next := s.state
		next.CategoryIndex++
		next.DurationIndex++
		next.TrackIndex++
		next.TotalGenerated++
		next.UpdatedAt = time.Now()
		if err := s.store.Save(&next); err != nil {
			return nil, State{}, fmt.Errorf("persist rotation state: %w", err)
		}
		s.state = next
		sels = append(sels, sel)
	}
	return sels, s.state, nil
}

// Peek previews the selection the next Advance would produce.
func (s *Sequencer) Peek() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionAt(s.state)
}

// State returns a copy of the current cursor.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset zeroes all counters and persists the cleared cursor.
func (s *Sequencer) Reset() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := State{ID: s.state.ID, UpdatedAt: time.Now()}
	if err := s.store.Save(&next); err != nil {
		return State{}, fmt.Errorf("persist rotation state: %w", err)
	}
	s.state = next
	return next, nil
}

package ideas

import (
	"errors"
	"sync"
)

// fakeStore is the in-memory Store used across the package tests.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]Idea
	order   []string
	state   PublisherState
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]Idea)}
}

var errStoreDown = errors.New("store down")

func (f *fakeStore) Stats() (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return Stats{}, errStoreDown
	}
	var st Stats
	for _, i := range f.rows {
		st.Total++
		switch i.Status {
		case IdeaAvailable:
			st.Available++
		case IdeaScheduled:
			st.Scheduled++
		case IdeaUsed:
			st.Used++
		}
	}
	return st, nil
}

func (f *fakeStore) Available() ([]Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStoreDown
	}
	var out []Idea
	for _, id := range f.order {
		if i := f.rows[id]; i.Status == IdeaAvailable {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(id string) (Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.rows[id]
	if !ok {
		return Idea{}, errors.New("not found")
	}
	return i, nil
}

func (f *fakeStore) Insert(batch []Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStoreDown
	}
	for _, i := range batch {
		f.rows[i.ID] = i
		f.order = append(f.order, i.ID)
	}
	return nil
}

func (f *fakeStore) Save(i *Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStoreDown
	}
	f.rows[i.ID] = *i
	return nil
}

func (f *fakeStore) LoadState() (PublisherState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return PublisherState{}, errStoreDown
	}
	return f.state, nil
}

func (f *fakeStore) SaveState(st *PublisherState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStoreDown
	}
	f.state = *st
	return nil
}

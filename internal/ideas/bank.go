package ideas

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"meridian/internal/catalog"
)

// Bank manages the inventory of unused content ideas.
type Bank struct {
	mu    sync.Mutex
	cat   *catalog.Catalog
	store Store
}

func NewBank(cat *catalog.Catalog, store Store) *Bank {
	return &Bank{cat: cat, store: store}
}

// Stats returns the current inventory counts.
func (b *Bank) Stats() (Stats, error) {
	return b.store.Stats()
}

func newIdeaID() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Add inserts freshly generated ideas as available.
func (b *Bank) Add(batch []Idea) error {
	now := time.Now()
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = newIdeaID()
		}
		batch[i].Status = IdeaAvailable
		batch[i].CreatedAt = now
	}
	return b.store.Insert(batch)
}

// Pick reserves one available idea using strict round-robin across catalog
// categories. A category with no available ideas is skipped; the cursor
// advances past whichever category was served.
func (b *Bank) Pick() (Idea, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	available, err := b.store.Available()
	if err != nil {
		return Idea{}, false, err
	}
	if len(available) == 0 {
		return Idea{}, false, nil
	}

	st, err := b.store.LoadState()
	if err != nil {
		return Idea{}, false, err
	}

	byCategory := make(map[string][]Idea)
	for _, i := range available {
		byCategory[i.CategoryID] = append(byCategory[i.CategoryID], i)
	}

	n := len(b.cat.Categories)
	picked := available[0]
	for offset := 0; offset < n; offset++ {
		idx := (int(st.CategoryCursor) + offset) % n
		cands := byCategory[b.cat.Categories[idx].ID]
		if len(cands) > 0 {
			picked = cands[0]
			st.CategoryCursor = uint64(idx + 1)
			break
		}
	}

	picked.Status = IdeaScheduled
	if err := b.store.Save(&picked); err != nil {
		return Idea{}, false, fmt.Errorf("reserve idea: %w", err)
	}
	st.UpdatedAt = time.Now()
	if err := b.store.SaveState(&st); err != nil {
		return Idea{}, false, fmt.Errorf("persist idea cursor: %w", err)
	}
	return picked, true, nil
}

// MarkUsed ties a reserved idea to the job it produced.
func (b *Bank) MarkUsed(id, jobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idea, err := b.store.Get(id)
	if err != nil {
		return err
	}
	now := time.Now()
	idea.Status = IdeaUsed
	idea.UsedAt = &now
	idea.JobID = jobID
	return b.store.Save(&idea)
}

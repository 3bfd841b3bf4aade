package ideas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"meridian/internal/catalog"
)

// ErrBusy is returned when a generation run is already active.
var ErrBusy = errors.New("idea generation already running")

// Draft is one idea concept produced by the external source before it is
// stored in the bank.
type Draft struct {
	Title string
	Hook  string
}

// Source is the external generative collaborator.
type Source interface {
	Drafts(ctx context.Context, category catalog.Category, n int) ([]Draft, error)
}

// Progress is the pollable state of the current (or last) generation run.
type Progress struct {
	Active    bool   `json:"active"`
	Generated int    `json:"generated"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

const draftBatchSize = 20

// Generator fills the bank from a Source as a single-flight background task.
// Ideas land in the bank batch by batch, so an interrupted run keeps its
// partial results.
type Generator struct {
	mu       sync.Mutex
	progress Progress

	bank   *Bank
	cat    *catalog.Catalog
	source Source
}

func NewGenerator(bank *Bank, cat *catalog.Catalog, source Source) *Generator {
	return &Generator{bank: bank, cat: cat, source: source}
}

// Start launches a background run producing up to target ideas. Fails fast
// with ErrBusy while a run is active.
func (g *Generator) Start(ctx context.Context, target int) error {
	if target < 1 {
		return fmt.Errorf("idea target must be >= 1, got %d", target)
	}

	g.mu.Lock()
	if g.progress.Active {
		g.mu.Unlock()
		return ErrBusy
	}
	g.progress = Progress{Active: true, Total: target}
	g.mu.Unlock()

	go g.run(ctx, target)
	return nil
}

func (g *Generator) run(ctx context.Context, target int) {
	defer func() {
		g.mu.Lock()
		g.progress.Active = false
		g.mu.Unlock()
	}()

	generated := 0
	cursor := 0
	for generated < target {
		if err := ctx.Err(); err != nil {
			g.setError(err)
			return
		}

		n := draftBatchSize
		if remain := target - generated; remain < n {
			n = remain
		}
		category := g.cat.Categories[cursor%len(g.cat.Categories)]
		cursor++

		drafts, err := g.source.Drafts(ctx, category, n)
		if err != nil {
			g.setError(fmt.Errorf("draft batch for %s: %w", category.ID, err))
			return
		}
		if len(drafts) == 0 {
			// A dried-up source would otherwise spin this loop forever.
			g.setError(fmt.Errorf("source produced no drafts for %s (%d of %d generated)", category.ID, generated, target))
			return
		}

		batch := make([]Idea, 0, len(drafts))
		for _, d := range drafts {
			batch = append(batch, Idea{CategoryID: category.ID, Title: d.Title, Hook: d.Hook})
		}
		if err := g.bank.Add(batch); err != nil {
			g.setError(fmt.Errorf("store ideas: %w", err))
			return
		}

		generated += len(batch)
		g.mu.Lock()
		g.progress.Generated = generated
		g.mu.Unlock()
	}
	log.Printf("idea generation finished: %d ideas\n", generated)
}

func (g *Generator) setError(err error) {
	log.Printf("idea generation stopped: %v\n", err)
	g.mu.Lock()
	g.progress.Error = err.Error()
	g.mu.Unlock()
}

// Progress returns the current run state.
func (g *Generator) Progress() Progress {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress
}

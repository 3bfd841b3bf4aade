package ideas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meridian/internal/catalog"
)

type scriptedSource struct {
	mu      sync.Mutex
	calls   int
	failAt  int // fail the n-th Drafts call (1-based), 0 = never
	release chan struct{}
}

func (s *scriptedSource) Drafts(ctx context.Context, category catalog.Category, n int) ([]Draft, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	s.calls++
	calls := s.calls
	s.mu.Unlock()
	if s.failAt > 0 && calls >= s.failAt {
		return nil, errors.New("quota exhausted")
	}
	out := make([]Draft, n)
	for i := range out {
		out[i] = Draft{Title: "idea", Hook: "hook"}
	}
	return out, nil
}

func waitInactive(t *testing.T, g *Generator) Progress {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p := g.Progress()
		if !p.Active {
			return p
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("generation run did not finish")
	return Progress{}
}

func TestGenerator_ProducesTarget(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	bank := NewBank(cat, store)
	gen := NewGenerator(bank, cat, &scriptedSource{})

	if err := gen.Start(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	p := waitInactive(t, gen)
	if p.Generated != 50 || p.Error != "" {
		t.Fatalf("progress = %+v, want 50 generated", p)
	}

	stats, err := bank.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Available != 50 {
		t.Fatalf("bank has %d available, want 50", stats.Available)
	}
}

func TestGenerator_BusyWhileActive(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	bank := NewBank(cat, store)
	src := &scriptedSource{release: make(chan struct{})}
	gen := NewGenerator(bank, cat, src)

	if err := gen.Start(context.Background(), 20); err != nil {
		t.Fatal(err)
	}
	if err := gen.Start(context.Background(), 20); !errors.Is(err, ErrBusy) {
		t.Fatalf("second start: err = %v, want busy", err)
	}

	// The original run is unaffected by the rejected start.
	close(src.release)
	p := waitInactive(t, gen)
	if p.Generated != 20 {
		t.Fatalf("generated = %d, want 20", p.Generated)
	}

	// A new run is allowed once the first finished.
	if err := gen.Start(context.Background(), 1); err != nil {
		t.Fatalf("start after finish: %v", err)
	}
	waitInactive(t, gen)
}

func TestGenerator_PartialResultsKeptOnError(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	bank := NewBank(cat, store)
	gen := NewGenerator(bank, cat, &scriptedSource{failAt: 2})

	if err := gen.Start(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	p := waitInactive(t, gen)
	if p.Error == "" {
		t.Fatal("expected an error recorded in progress")
	}
	if p.Generated != 20 {
		t.Fatalf("generated = %d, want the 20 from the first batch", p.Generated)
	}

	stats, err := bank.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Available != 20 {
		t.Fatalf("bank kept %d ideas, want 20", stats.Available)
	}
}

type emptySource struct{}

func (emptySource) Drafts(ctx context.Context, category catalog.Category, n int) ([]Draft, error) {
	return []Draft{}, nil
}

func TestGenerator_EmptySuccessfulBatchEndsRun(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	bank := NewBank(cat, store)
	gen := NewGenerator(bank, cat, emptySource{})

	if err := gen.Start(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	p := waitInactive(t, gen)
	if p.Error == "" {
		t.Fatal("a source that yields nothing must end the run with an error")
	}
	if p.Generated != 0 {
		t.Fatalf("generated = %d, want 0", p.Generated)
	}

	// The generator is free again, not wedged busy.
	if err := gen.Start(context.Background(), 1); errors.Is(err, ErrBusy) {
		t.Fatalf("start after empty-source run: %v", err)
	}
	waitInactive(t, gen)
}

func TestGenerator_RejectsBadTarget(t *testing.T) {
	store := newFakeStore()
	cat := catalog.Default()
	gen := NewGenerator(NewBank(cat, store), cat, &scriptedSource{})
	if err := gen.Start(context.Background(), 0); err == nil {
		t.Fatal("expected error for target 0")
	}
}

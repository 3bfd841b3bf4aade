package autopublish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meridian/internal/catalog"
	"meridian/internal/event"
	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/render"
	"meridian/internal/rotation"
)

type memIdeaStore struct {
	mu    sync.Mutex
	rows  map[string]ideas.Idea
	order []string
	state ideas.PublisherState
}

func newMemIdeaStore() *memIdeaStore { return &memIdeaStore{rows: make(map[string]ideas.Idea)} }

func (s *memIdeaStore) Stats() (ideas.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st ideas.Stats
	for _, i := range s.rows {
		st.Total++
		if i.Status == ideas.IdeaAvailable {
			st.Available++
		}
	}
	return st, nil
}

func (s *memIdeaStore) Available() ([]ideas.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ideas.Idea
	for _, id := range s.order {
		if i := s.rows[id]; i.Status == ideas.IdeaAvailable {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *memIdeaStore) Get(id string) (ideas.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.rows[id]
	if !ok {
		return ideas.Idea{}, errors.New("not found")
	}
	return i, nil
}

func (s *memIdeaStore) Insert(batch []ideas.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range batch {
		s.rows[i.ID] = i
		s.order = append(s.order, i.ID)
	}
	return nil
}

func (s *memIdeaStore) Save(i *ideas.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[i.ID] = *i
	return nil
}

func (s *memIdeaStore) LoadState() (ideas.PublisherState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *memIdeaStore) SaveState(st *ideas.PublisherState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = *st
	return nil
}

type memRotStore struct {
	mu sync.Mutex
	st rotation.State
}

func (m *memRotStore) Load() (rotation.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *memRotStore) Save(st *rotation.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = *st
	return nil
}

type memJobStore struct {
	mu   sync.Mutex
	rows map[string]job.Job
}

func newMemJobStore() *memJobStore { return &memJobStore{rows: make(map[string]job.Job)} }

func (m *memJobStore) LoadAll() ([]job.Job, error) { return nil, nil }

func (m *memJobStore) Insert(j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[j.ID] = *j
	return nil
}

func (m *memJobStore) Update(j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[j.ID] = *j
	return nil
}

func (m *memJobStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memJobStore) DeleteMany(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.rows, id)
	}
	return nil
}

type noopDiscarder struct{}

func (noopDiscarder) Discard(string) error { return nil }

type instantRenderer struct{}

func (instantRenderer) Execute(ctx context.Context, sel rotation.Selection, report render.ProgressFunc) (string, error) {
	report(50, "rendering")
	return "artifacts/out.mp4", nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	calls    int
	lastMeta render.Metadata
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, artifact string, meta render.Metadata) (render.RemoteRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastMeta = meta
	if p.err != nil {
		return render.RemoteRecord{}, p.err
	}
	return render.RemoteRecord{ID: "yt-123", URL: "https://example.com/yt-123"}, nil
}

func (p *recordingPublisher) CredentialStatus(ctx context.Context) error { return nil }

type fixture struct {
	worker    *Worker
	ideaStore *memIdeaStore
	seq       *rotation.Sequencer
	reg       *job.Registry
	pub       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.Default()
	ideaStore := newMemIdeaStore()
	bank := ideas.NewBank(cat, ideaStore)
	sched := ideas.NewScheduler(ideaStore, bank, time.UTC, ideas.DefaultAnchors)

	seq, err := rotation.NewSequencer(cat, &memRotStore{})
	if err != nil {
		t.Fatal(err)
	}
	reg, err := job.NewRegistry(newMemJobStore(), event.NewHub(), noopDiscarder{})
	if err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}

	return &fixture{
		worker: &Worker{
			Scheduler:    sched,
			Bank:         bank,
			Sequencer:    seq,
			Registry:     reg,
			Runner:       render.NewRunner(reg, instantRenderer{}, 1),
			Publisher:    pub,
			Loc:          time.UTC,
			Anchors:      ideas.DefaultAnchors,
			PollInterval: 2 * time.Millisecond,
			RenderWait:   2 * time.Second,
		},
		ideaStore: ideaStore,
		seq:       seq,
		reg:       reg,
		pub:       pub,
	}
}

func (f *fixture) enable(t *testing.T) {
	t.Helper()
	if _, err := f.worker.Scheduler.Toggle(); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) seedIdea(t *testing.T, title string) {
	t.Helper()
	cat := catalog.Default()
	if err := f.worker.Bank.Add([]ideas.Idea{{CategoryID: cat.Categories[0].ID, Title: title, Hook: "a quiet start"}}); err != nil {
		t.Fatal(err)
	}
}

func TestRunSlot_DisabledIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.seedIdea(t, "misty morning")

	if err := f.worker.runSlot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(f.reg.List(job.Filter{})); got != 0 {
		t.Fatalf("%d jobs created while disabled, want 0", got)
	}
	if f.pub.calls != 0 {
		t.Fatalf("publisher called %d times while disabled", f.pub.calls)
	}
}

func TestRunSlot_EmptyBankSkipsQuietly(t *testing.T) {
	f := newFixture(t)
	f.enable(t)

	if err := f.worker.runSlot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(f.reg.List(job.Filter{})); got != 0 {
		t.Fatalf("%d jobs created from an empty bank, want 0", got)
	}
}

func TestRunSlot_PublishesOneIdeaEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.enable(t)
	f.seedIdea(t, "misty morning")

	if err := f.worker.runSlot(context.Background()); err != nil {
		t.Fatal(err)
	}

	all := f.reg.List(job.Filter{})
	if len(all) != 1 {
		t.Fatalf("%d jobs, want 1", len(all))
	}
	j := all[0]
	if j.Status != job.StatusCompleted {
		t.Fatalf("job status = %s, want completed", j.Status)
	}
	if j.Publish == nil || j.Publish.RemoteID != "yt-123" || j.Publish.PublishedAt == nil {
		t.Fatalf("publish record = %+v", j.Publish)
	}
	if f.pub.lastMeta.Title != "misty morning" || f.pub.lastMeta.Privacy != "public" {
		t.Fatalf("metadata = %+v", f.pub.lastMeta)
	}

	if got := f.seq.State().TotalGenerated; got != 1 {
		t.Fatalf("rotation advanced %d times, want 1", got)
	}

	// The reserved idea is tied to the job it produced.
	var used *ideas.Idea
	for _, id := range f.ideaStore.order {
		i, err := f.ideaStore.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if i.Status == ideas.IdeaUsed {
			used = &i
			break
		}
	}
	if used == nil || used.JobID != j.ID {
		t.Fatalf("no idea tied to job %s", j.ID)
	}
}

func TestRunSlot_PublishFailureLeavesJobCompleted(t *testing.T) {
	f := newFixture(t)
	f.enable(t)
	f.seedIdea(t, "misty morning")
	f.pub.err = errors.New("upload quota exceeded")

	if err := f.worker.runSlot(context.Background()); err == nil {
		t.Fatal("expected the publish error to surface")
	}

	all := f.reg.List(job.Filter{})
	if len(all) != 1 {
		t.Fatalf("%d jobs, want 1", len(all))
	}
	if all[0].Status != job.StatusCompleted || all[0].Publish != nil {
		t.Fatalf("job = %+v, want completed without a publish record", all[0])
	}
}

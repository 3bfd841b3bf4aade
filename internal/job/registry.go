package job

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"meridian/internal/event"
	"meridian/internal/rotation"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation")
)

// Discarder removes a job's stored artifact when the job is deleted.
type Discarder interface {
	Discard(ref string) error
}

// Registry is the single source of truth for jobs. State lives in memory and
// is written through to the Store before the in-memory copy advances; events
// are emitted to the hub after each successful mutation, outside the lock.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	store     Store
	hub       *event.Hub
	artifacts Discarder
}

func NewRegistry(store Store, hub *event.Hub, artifacts Discarder) (*Registry, error) {
	existing, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	jobs := make(map[string]*Job, len(existing))
	for i := range existing {
		j := existing[i]
		jobs[j.ID] = &j
	}
	return &Registry{jobs: jobs, store: store, hub: hub, artifacts: artifacts}, nil
}

func newID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Create registers a new queued job for a rotation selection.
func (r *Registry) Create(kind Kind, sel rotation.Selection) (Job, error) {
	if kind != KindLongForm && kind != KindShortForm {
		return Job{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}

	j := &Job{
		ID:           newID(),
		Kind:         kind,
		Status:       StatusQueued,
		Progress:     0,
		Message:      "Queued for processing",
		CategoryID:   sel.Category.ID,
		CategoryName: sel.Category.Name,
		Duration:     sel.Duration,
		TrackID:      sel.Track.ID,
		TrackName:    sel.Track.Name,
		CreatedAt:    time.Now(),
	}

	r.mu.Lock()
	if err := r.store.Insert(j); err != nil {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("persist job: %w", err)
	}
	r.jobs[j.ID] = j
	snap := *j
	r.mu.Unlock()

	r.hub.Publish(event.Event{Kind: event.KindJobCreated, Payload: snap})
	return snap, nil
}

// UpdateProgress records worker progress. Progress is monotonic while the job
// is live; the first report moves a queued job to generating.
func (r *Registry) UpdateProgress(id string, progress int, message string) (Job, error) {
	if progress < 0 || progress > 100 {
		return Job{}, fmt.Errorf("%w: progress %d out of range", ErrValidation, progress)
	}
	// 100 is reserved for completion; a worker reporting full progress is
	// held at 99 until it delivers the artifact.
	if progress == 100 {
		progress = 99
	}

	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrNotFound
	}
	if j.Status.Terminal() {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("%w: job %s is %s", ErrConflict, id, j.Status)
	}
	if progress < j.Progress {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("%w: progress cannot decrease (%d -> %d)", ErrConflict, j.Progress, progress)
	}

	next := *j
	next.Status = StatusGenerating
	next.Progress = progress
	next.Message = message
	if err := r.store.Update(&next); err != nil {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("persist job: %w", err)
	}
	*j = next
	snap := next
	r.mu.Unlock()

	r.hub.Publish(event.Event{Kind: event.KindJobUpdate, Payload: snap})
	return snap, nil
}

// Complete marks a job terminal-successful with its artifact reference.
// Re-completing with the same artifact is a no-op; any other re-termination
// is a conflict.
func (r *Registry) Complete(id string, artifact string) (Job, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrNotFound
	}
	if j.Status == StatusCompleted {
		same := j.Artifact != nil && *j.Artifact == artifact
		snap := *j
		r.mu.Unlock()
		if same {
			return snap, nil
		}
		return Job{}, fmt.Errorf("%w: job %s already completed with a different artifact", ErrConflict, id)
	}
	if !CanTransition(j.Status, StatusCompleted) {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("%w: cannot complete job in status %s", ErrConflict, j.Status)
	}

	now := time.Now()
	next := *j
	next.Status = StatusCompleted
	next.Progress = 100
	next.Message = "Generation complete"
	next.CompletedAt = &now
	next.Artifact = &artifact
	if err := r.store.Update(&next); err != nil {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("persist job: %w", err)
	}
	*j = next
	snap := next
	r.mu.Unlock()

	r.hub.Publish(event.Event{Kind: event.KindJobUpdate, Payload: snap})
	return snap, nil
}

// Fail marks a job terminal-failed, freezing progress at its last value.
func (r *Registry) Fail(id string, cause string) (Job, error) {
	if cause == "" {
		return Job{}, fmt.Errorf("%w: failure cause required", ErrValidation)
	}

	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrNotFound
	}
	if j.Status == StatusFailed {
		same := j.Error != nil && *j.Error == cause
		snap := *j
		r.mu.Unlock()
		if same {
			return snap, nil
		}
		return Job{}, fmt.Errorf("%w: job %s already failed with a different cause", ErrConflict, id)
	}
	if !CanTransition(j.Status, StatusFailed) {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("%w: cannot fail job in status %s", ErrConflict, j.Status)
	}

	now := time.Now()
	next := *j
	next.Status = StatusFailed
	next.Message = "Error: " + cause
	next.CompletedAt = &now
	next.Error = &cause
	if err := r.store.Update(&next); err != nil {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("persist job: %w", err)
	}
	*j = next
	snap := next
	r.mu.Unlock()

	r.hub.Publish(event.Event{Kind: event.KindJobUpdate, Payload: snap})
	return snap, nil
}

// SetPublished attaches a publish record for an already-live remote copy.
func (r *Registry) SetPublished(id, remoteID, remoteURL string, publishedAt time.Time) (Job, error) {
	return r.setPublish(id, PublishRecord{RemoteID: remoteID, RemoteURL: remoteURL, PublishedAt: &publishedAt})
}

// SetScheduled attaches a publish record for a future publish slot.
func (r *Registry) SetScheduled(id, remoteID, remoteURL string, scheduledFor time.Time) (Job, error) {
	return r.setPublish(id, PublishRecord{RemoteID: remoteID, RemoteURL: remoteURL, ScheduledFor: &scheduledFor})
}

func (r *Registry) setPublish(id string, rec PublishRecord) (Job, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrNotFound
	}
	if j.Status != StatusCompleted {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("%w: only completed jobs can be published (status %s)", ErrConflict, j.Status)
	}

	next := *j
	next.Publish = &rec
	if err := r.store.Update(&next); err != nil {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("persist job: %w", err)
	}
	*j = next
	snap := next
	r.mu.Unlock()

	r.hub.Publish(event.Event{Kind: event.KindJobUpdate, Payload: snap})
	return snap, nil
}

// Delete removes a terminal job and discards its artifact. In-flight jobs are
// refused; the render worker owns cancellation.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if !j.Status.Terminal() {
		r.mu.Unlock()
		return fmt.Errorf("%w: cannot delete job in status %s", ErrConflict, j.Status)
	}
	artifact := j.Artifact
	if err := r.store.Delete(id); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("persist delete: %w", err)
	}
	delete(r.jobs, id)
	r.mu.Unlock()

	if artifact != nil && r.artifacts != nil {
		// Deletion already committed; an orphaned artifact shows up in the
		// storage health check rather than failing the request.
		if err := r.artifacts.Discard(*artifact); err != nil {
			log.Printf("registry: discard artifact for job %s: %v\n", id, err)
		}
	}
	r.hub.Publish(event.Event{Kind: event.KindJobDeleted, Payload: map[string]string{"id": id}})
	return nil
}

// Clear removes all terminal jobs and returns how many were removed.
func (r *Registry) Clear() (int, error) {
	r.mu.Lock()
	var ids []string
	var artifacts []string
	for id, j := range r.jobs {
		if j.Status.Terminal() {
			ids = append(ids, id)
			if j.Artifact != nil {
				artifacts = append(artifacts, *j.Artifact)
			}
		}
	}
	if err := r.store.DeleteMany(ids); err != nil {
		r.mu.Unlock()
		return 0, fmt.Errorf("persist clear: %w", err)
	}
	for _, id := range ids {
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	if r.artifacts != nil {
		for _, ref := range artifacts {
			_ = r.artifacts.Discard(ref)
		}
	}
	r.hub.Publish(event.Event{Kind: event.KindJobsCleared, Payload: map[string]int{"removed": len(ids)}})
	return len(ids), nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status Status
	Kind   Kind
}

// List returns a snapshot of matching jobs, newest first.
func (r *Registry) List(f Filter) []Job {
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Kind != "" && j.Kind != f.Kind {
			continue
		}
		out = append(out, *j)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// Get returns a copy of one job.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

// Snapshot returns all jobs, newest first, for subscriber init events.
func (r *Registry) Snapshot() []Job {
	return r.List(Filter{})
}

// Counts summarizes jobs by status, used by the health monitor.
func (r *Registry) Counts() map[Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Status]int, 4)
	for _, j := range r.jobs {
		out[j.Status]++
	}
	return out
}

// StuckSince returns live jobs created before the cutoff.
func (r *Registry) StuckSince(cutoff time.Time) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Job
	for _, j := range r.jobs {
		if !j.Status.Terminal() && j.CreatedAt.Before(cutoff) {
			out = append(out, *j)
		}
	}
	return out
}

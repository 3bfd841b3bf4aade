// Package autopublish runs the hands-off publishing pipeline: at each
// configured slot it turns one banked idea into a render job and pushes the
// finished artifact to the remote platform.
package autopublish

import (
	"context"
	"fmt"
	"log"
	"time"

	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/render"
	"meridian/internal/rotation"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultRenderWait   = 45 * time.Minute
)

// Worker drives the autopublish pipeline. All fields are required except the
// two intervals, which default when zero.
type Worker struct {
	Scheduler *ideas.Scheduler
	Bank      *ideas.Bank
	Sequencer *rotation.Sequencer
	Registry  *job.Registry
	Runner    *render.Runner
	Publisher render.Publisher

	Loc     *time.Location
	Anchors []ideas.Anchor

	// PollInterval is how often the worker checks a dispatched job for
	// completion; RenderWait bounds how long it waits before giving up.
	PollInterval time.Duration
	RenderWait   time.Duration
}

// Run blocks until ctx is cancelled, firing once per publish slot.
func (w *Worker) Run(ctx context.Context) {
	for {
		slots := ideas.NextSlots(1, time.Now(), w.Loc, w.Anchors)
		if len(slots) == 0 {
			log.Println("autopublish: no anchors configured, worker idle")
			return
		}
		next := slots[0]
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := w.runSlot(ctx); err != nil {
				log.Printf("autopublish: slot %s: %v\n", next.Format(time.RFC3339), err)
			}
		}
	}
}

// runSlot performs one pipeline pass: reserve an idea, advance the rotation,
// render, publish. A disabled toggle or an empty bank is a quiet no-op; the
// idea bank health check raises the alert for the latter.
func (w *Worker) runSlot(ctx context.Context) error {
	enabled, err := w.Scheduler.Enabled()
	if err != nil {
		return fmt.Errorf("read toggle: %w", err)
	}
	if !enabled {
		return nil
	}

	idea, ok, err := w.Bank.Pick()
	if err != nil {
		return fmt.Errorf("pick idea: %w", err)
	}
	if !ok {
		log.Println("autopublish: idea bank empty, skipping slot")
		return nil
	}

	sel, _, err := w.Sequencer.Advance()
	if err != nil {
		return fmt.Errorf("advance rotation: %w", err)
	}
	j, err := w.Registry.Create(job.KindLongForm, sel)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if err := w.Bank.MarkUsed(idea.ID, j.ID); err != nil {
		log.Printf("autopublish: mark idea %s used: %v\n", idea.ID, err)
	}

	w.Runner.Dispatch(ctx, j.ID, sel)
	done, err := w.awaitTerminal(ctx, j.ID)
	if err != nil {
		return err
	}
	if done.Status != job.StatusCompleted || done.Artifact == nil {
		return fmt.Errorf("job %s ended %s, nothing to publish", j.ID, done.Status)
	}

	rec, err := w.Publisher.Publish(ctx, *done.Artifact, metadataFor(idea, sel))
	if err != nil {
		// The job stays completed; an operator can publish it manually.
		return fmt.Errorf("publish job %s: %w", j.ID, err)
	}
	if rec.ScheduledFor != nil {
		_, err = w.Registry.SetScheduled(j.ID, rec.ID, rec.URL, *rec.ScheduledFor)
	} else {
		_, err = w.Registry.SetPublished(j.ID, rec.ID, rec.URL, time.Now())
	}
	if err != nil {
		return fmt.Errorf("record publish for job %s: %w", j.ID, err)
	}
	log.Printf("autopublish: job %s published as %s\n", j.ID, rec.ID)
	return nil
}

func (w *Worker) awaitTerminal(ctx context.Context, jobID string) (job.Job, error) {
	poll := w.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	wait := w.RenderWait
	if wait <= 0 {
		wait = defaultRenderWait
	}
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		j, err := w.Registry.Get(jobID)
		if err != nil {
			return job.Job{}, err
		}
		if j.Status.Terminal() {
			return j, nil
		}
		if time.Now().After(deadline) {
			return job.Job{}, fmt.Errorf("job %s still %s after %s", jobID, j.Status, wait)
		}
		select {
		case <-ctx.Done():
			return job.Job{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func metadataFor(idea ideas.Idea, sel rotation.Selection) render.Metadata {
	desc := idea.Hook
	if sel.Category.Description != "" {
		desc += "\n\n" + sel.Category.Description
	}
	tags := append([]string{}, sel.Category.Moods...)
	if sel.Track.Mood != "" {
		tags = append(tags, sel.Track.Mood)
	}
	return render.Metadata{
		Title:       idea.Title,
		Description: desc,
		Tags:        tags,
		Privacy:     "public",
	}
}

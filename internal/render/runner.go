package render

import (
	"context"
	"log"

	"meridian/internal/job"
	"meridian/internal/rotation"
)

// Runner hands created jobs to the Renderer and feeds its progress back into
// the registry. Each job runs in its own goroutine; a semaphore bounds how
// many render in parallel.
type Runner struct {
	reg      *job.Registry
	renderer Renderer
	sem      chan struct{}
}

func NewRunner(reg *job.Registry, renderer Renderer, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{reg: reg, renderer: renderer, sem: make(chan struct{}, concurrency)}
}

// Dispatch schedules one job for execution and returns immediately.
func (r *Runner) Dispatch(ctx context.Context, jobID string, sel rotation.Selection) {
	go func() {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			if _, err := r.reg.Fail(jobID, "shutdown before render started"); err != nil {
				log.Printf("runner: fail job %s: %v\n", jobID, err)
			}
			return
		}

		report := func(percent int, message string) {
			if _, err := r.reg.UpdateProgress(jobID, percent, message); err != nil {
				log.Printf("runner: progress for job %s: %v\n", jobID, err)
			}
		}

		artifact, err := r.renderer.Execute(ctx, sel, report)
		if err != nil {
			if _, ferr := r.reg.Fail(jobID, err.Error()); ferr != nil {
				log.Printf("runner: fail job %s: %v\n", jobID, ferr)
			}
			return
		}
		if _, err := r.reg.Complete(jobID, artifact); err != nil {
			log.Printf("runner: complete job %s: %v\n", jobID, err)
		}
	}()
}

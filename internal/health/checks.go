package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/render"
)

// StorageStat reports free and total bytes of the artifact volume.
type StorageStat interface {
	Free() (free, total uint64, err error)
}

const gib = 1 << 30

// StorageCheck verifies the artifact volume has headroom. Below warnBytes is
// a warning, below critBytes critical.
func StorageCheck(stat StorageStat, warnBytes, critBytes uint64) Check {
	return Check{
		Name:    "storage",
		Timeout: 5 * time.Second,
		Run: func(ctx context.Context) Result {
			free, total, err := stat.Free()
			if err != nil {
				return Result{Status: StatusCritical, Error: err.Error()}
			}
			res := Result{
				Status: StatusHealthy,
				Metrics: map[string]any{
					"free_gb":  float64(free) / gib,
					"total_gb": float64(total) / gib,
				},
			}
			if free < warnBytes {
				res.Status = StatusWarning
			}
			if free < critBytes {
				res.Status = StatusCritical
				res.Alerts = []string{fmt.Sprintf("storage critically low: %.1f GB free", float64(free)/gib)}
			}
			return res
		},
	}
}

// JobsCheck inspects the registry for failed jobs and jobs stuck in a live
// status longer than stuckAfter.
func JobsCheck(reg *job.Registry, stuckAfter time.Duration) Check {
	return Check{
		Name:    "jobs",
		Timeout: 5 * time.Second,
		Run: func(ctx context.Context) Result {
			counts := reg.Counts()
			stuck := reg.StuckSince(time.Now().Add(-stuckAfter))

			failed := counts[job.StatusFailed]
			res := Result{
				Status: StatusHealthy,
				Metrics: map[string]any{
					"failed_count": failed,
					"stuck_count":  len(stuck),
					"queued_count": counts[job.StatusQueued],
				},
			}
			if failed > 0 || len(stuck) > 0 {
				res.Status = StatusWarning
			}
			if failed > 5 || len(stuck) > 2 {
				res.Status = StatusCritical
				res.Alerts = []string{fmt.Sprintf("%d failed jobs, %d stuck jobs", failed, len(stuck))}
			}
			return res
		},
	}
}

// CredentialCheck verifies the externally issued publish credential.
func CredentialCheck(pub render.Publisher) Check {
	return Check{
		Name:    "credential",
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context) Result {
			if err := pub.CredentialStatus(ctx); err != nil {
				return Result{
					Status: StatusCritical,
					Error:  err.Error(),
					Alerts: []string{"publish credential invalid: " + err.Error()},
				}
			}
			return Result{Status: StatusHealthy, Metrics: map[string]any{"valid": true}}
		},
	}
}

// AutopublishCheck reports the effective autopublish pipeline state: enabled
// flag plus idea inventory. A critically low bank triggers idea generation as
// a remediation unless a run is already active.
func AutopublishCheck(sched *ideas.Scheduler, bank *ideas.Bank, gen *ideas.Generator, target int) Check {
	return Check{
		Name:    "autopublish",
		Timeout: 10 * time.Second,
		Run: func(ctx context.Context) Result {
			enabled, err := sched.Enabled()
			if err != nil {
				return Result{Status: StatusCritical, Error: err.Error()}
			}
			stats, err := bank.Stats()
			if err != nil {
				return Result{Status: StatusCritical, Error: err.Error()}
			}

			level := ideas.Health(stats.Available)
			res := Result{
				Status: StatusHealthy,
				Metrics: map[string]any{
					"enabled":         enabled,
					"ideas_available": stats.Available,
					"bank_health":     string(level),
				},
			}
			if !enabled {
				res.Status = StatusWarning
			}
			switch level {
			case ideas.HealthLow:
				res.Status = Worse(res.Status, StatusWarning)
			case ideas.HealthCritical:
				res.Status = Worse(res.Status, StatusCritical)
				res.Alerts = append(res.Alerts, fmt.Sprintf("idea bank critical: %d available", stats.Available))
				if gen != nil {
					err := gen.Start(context.WithoutCancel(ctx), target)
					switch {
					case err == nil:
						res.Actions = append(res.Actions, fmt.Sprintf("started idea generation (target %d, was %d available)", target, stats.Available))
					case errors.Is(err, ideas.ErrBusy):
						res.Metrics["generation_active"] = true
					default:
						res.Alerts = append(res.Alerts, "failed to start idea generation: "+err.Error())
					}
				}
			}
			return res
		},
	}
}

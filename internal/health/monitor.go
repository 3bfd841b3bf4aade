package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Check is one named probe. Run must respect its context; the monitor
// enforces Timeout around every invocation.
type Check struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) Result
}

const (
	defaultCheckTimeout = 10 * time.Second
	logRetention        = 100
)

// Monitor runs a fixed set of independent checks and keeps a bounded log of
// aggregate snapshots. A check that times out or panics is recorded as
// critical without aborting the others.
type Monitor struct {
	checks []Check
	store  LogStore

	mu     sync.Mutex
	latest *Entry
}

func NewMonitor(store LogStore, checks ...Check) *Monitor {
	return &Monitor{store: store, checks: checks}
}

func runGuarded(ctx context.Context, c Check) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- Result{
					Name:   c.Name,
					Status: StatusCritical,
					Error:  fmt.Sprintf("check panicked: %v", p),
				}
			}
		}()
		done <- c.Run(cctx)
	}()

	select {
	case res := <-done:
		res.Name = c.Name
		res.At = time.Now()
		return res
	case <-cctx.Done():
		return Result{
			Name:    c.Name,
			Status:  StatusCritical,
			Error:   "check timed out",
			Metrics: map[string]any{"timeout": timeout.String()},
			At:      time.Now(),
		}
	}
}

// Run executes every check concurrently, appends one log entry and returns
// it. Per-check failures are isolated; only log persistence can fail the run.
func (m *Monitor) Run(ctx context.Context) (Entry, error) {
	results := make([]Result, len(m.checks))
	var wg sync.WaitGroup
	for i, c := range m.checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			results[i] = runGuarded(ctx, c)
		}(i, c)
	}
	wg.Wait()

	sort.Slice(results, func(i, k int) bool { return results[i].Name < results[k].Name })

	overall := StatusHealthy
	var actions, alerts []string
	for _, r := range results {
		overall = Worse(overall, r.Status)
		actions = append(actions, r.Actions...)
		alerts = append(alerts, r.Alerts...)
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return Entry{}, fmt.Errorf("encode results: %w", err)
	}
	entry := Entry{
		Overall: overall,
		Results: raw,
		Actions: actions,
		Alerts:  alerts,
		At:      time.Now(),
	}
	if err := m.store.Append(&entry); err != nil {
		return Entry{}, fmt.Errorf("append health log: %w", err)
	}
	if err := m.store.Trim(logRetention); err != nil {
		return Entry{}, fmt.Errorf("trim health log: %w", err)
	}

	m.mu.Lock()
	m.latest = &entry
	m.mu.Unlock()
	return entry, nil
}

// Status returns the most recent snapshot without re-running checks. The
// second return is false when no check has run yet.
func (m *Monitor) Status() (Entry, bool, error) {
	m.mu.Lock()
	if m.latest != nil {
		e := *m.latest
		m.mu.Unlock()
		return e, true, nil
	}
	m.mu.Unlock()

	recent, err := m.store.Recent(1)
	if err != nil {
		return Entry{}, false, err
	}
	if len(recent) == 0 {
		return Entry{}, false, nil
	}
	return recent[0], true, nil
}

// Recent returns up to n log entries, newest first.
func (m *Monitor) Recent(n int) ([]Entry, error) {
	return m.store.Recent(n)
}

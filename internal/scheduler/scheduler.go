// Package scheduler provides the single periodic trigger that drives
// watch cycles. The engine itself is not reentrant-safe; the runner is
// the mutual-exclusion guard around it.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/log"
)

// Runner fires a named job at a fixed interval. A runner carries exactly
// one schedule: calling Schedule again replaces the previous interval
// rather than registering a second trigger.
type Runner struct {
	name string
	job  func(ctx context.Context)

	mu       sync.Mutex
	interval time.Duration

	// reschedule wakes the Run loop to pick up a replaced interval.
	// Buffered so Schedule never blocks; repeated replacements coalesce.
	reschedule chan struct{}

	// busy guards against overlapping job runs. A tick that arrives
	// while a run is still in flight is skipped, not queued.
	busy sync.Mutex
	wg   sync.WaitGroup

	runs  atomic.Int64
	skips atomic.Int64
}

// New creates a runner for the given job. The interval defaults to the
// poll default until Schedule sets one.
func New(name string, job func(ctx context.Context)) *Runner {
	return &Runner{
		name:       name,
		job:        job,
		interval:   constants.DefaultPollInterval,
		reschedule: make(chan struct{}, 1),
	}
}

// Schedule sets the tick interval, replacing any previous schedule. Safe
// to call while Run is active; the loop resets its ticker on the next
// wakeup. Non-positive intervals fall back to the default.
func (r *Runner) Schedule(interval time.Duration) {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	r.mu.Lock()
	r.interval = interval
	r.mu.Unlock()

	select {
	case r.reschedule <- struct{}{}:
	default:
	}
}

// Interval returns the current tick interval.
func (r *Runner) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// Runs returns the number of job runs started.
func (r *Runner) Runs() int64 { return r.runs.Load() }

// Skips returns the number of ticks dropped because a run was in flight.
func (r *Runner) Skips() int64 { return r.skips.Load() }

// Run blocks until ctx is cancelled, firing the job immediately and then
// on every tick. A cancelled context stops the ticker and waits for an
// in-flight run to finish before returning.
func (r *Runner) Run(ctx context.Context) {
	log.Info("schedule started", "name", r.name, "interval", r.Interval())

	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	r.fire(ctx)

	for {
		select {
		case <-ctx.Done():
			r.wg.Wait()
			log.Info("schedule stopped", "name", r.name, "runs", r.Runs(), "skipped", r.Skips())
			return
		case <-r.reschedule:
			ticker.Reset(r.Interval())
			log.Debug("schedule replaced", "name", r.name, "interval", r.Interval())
		case <-ticker.C:
			r.fire(ctx)
		}
	}
}

// fire starts one job run unless the previous one is still active.
func (r *Runner) fire(ctx context.Context) {
	if !r.busy.TryLock() {
		r.skips.Add(1)
		log.Debug("schedule tick skipped, previous run still active", "name", r.name)
		return
	}

	r.runs.Add(1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.busy.Unlock()
		r.job(ctx)
	}()
}

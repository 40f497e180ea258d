package cmd

import (
	"context"
	"time"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/duration"
	"github.com/spiffcs/vigil/internal/engine"
	"github.com/spiffcs/vigil/internal/ghclient"
	"github.com/spiffcs/vigil/internal/history"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/state"
)

// runCycleOnce executes a single watch cycle, persists the advanced state,
// and appends a history snapshot. The checkpoint only moves when the cycle
// and the state save both succeed.
func runCycleOnce(ctx context.Context, eng *engine.Engine, states *state.Store, hist *history.Store) (engine.CycleResult, error) {
	st, err := states.Load()
	if err != nil {
		return engine.CycleResult{}, err
	}

	started := time.Now()
	next, res, err := eng.RunCycle(ctx, st)
	if err == nil && !res.Skipped {
		err = states.Save(next)
	}

	if hist != nil {
		snap := history.Snapshot{
			Timestamp:      started.UTC(),
			Found:          res.Found,
			Added:          res.Added,
			ThreadsChecked: res.ThreadsChecked,
			Skipped:        res.Skipped,
			DurationMS:     time.Since(started).Milliseconds(),
		}
		if err != nil {
			snap.Err = err.Error()
		}
		if appendErr := hist.Append(snap); appendErr != nil {
			log.Warn("could not record cycle history", "error", appendErr)
		}
	}

	return res, err
}

// newFetcher returns an authenticated GitHub client, or nil when no token
// is configured. A nil fetcher turns cycles into silent no-ops.
func newFetcher(ctx context.Context, cfg *config.Config) (ghclient.Fetcher, error) {
	token := cfg.GetGitHubToken()
	if token == "" {
		return nil, nil
	}
	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openHistory returns the cycle history store, or nil when the cache dir
// is unavailable. History is best-effort; cycles proceed without it.
func openHistory() *history.Store {
	hist, err := history.NewStore()
	if err != nil {
		log.Warn("cycle history disabled", "error", err)
		return nil
	}
	return hist
}

// seedCheckpoint backdates the first checkpoint when --since is given and
// no cycle has completed yet. A seeded checkpoint bounds the first cycle's
// new-item window instead of treating the whole search result as new.
func seedCheckpoint(states *state.Store, since string) error {
	if since == "" {
		return nil
	}

	st, err := states.Load()
	if err != nil {
		return err
	}
	if st.HasChecked() {
		log.Debug("checkpoint already set, ignoring --since", "checkpoint", st.LastCheckedAt)
		return nil
	}

	t, err := duration.Since(since)
	if err != nil {
		return err
	}
	st.LastCheckedAt = t.UTC()
	if err := states.Save(st); err != nil {
		return err
	}
	log.Info("seeded checkpoint", "since", since, "checkpoint", st.LastCheckedAt)
	return nil
}

// Package engine runs the watch cycle: build the query, fetch, classify,
// merge, and advance the checkpoint. The engine holds no mutable state of
// its own; the caller passes the engine state in and persists what comes
// back.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/classify"
	"github.com/spiffcs/vigil/internal/ghclient"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/store"
)

// Engine wires the collaborators of one watch cycle together.
type Engine struct {
	fetcher ghclient.Fetcher
	notifs  *store.Store
	repos   []model.RepoRef
	flags   config.NotifyFlags
}

// New creates an engine. A nil fetcher means no credential is configured;
// cycles then skip silently instead of failing.
func New(fetcher ghclient.Fetcher, notifs *store.Store, repos []model.RepoRef, flags config.NotifyFlags) *Engine {
	return &Engine{
		fetcher: fetcher,
		notifs:  notifs,
		repos:   repos,
		flags:   flags,
	}
}

// CycleResult summarizes one watch cycle.
type CycleResult struct {
	// Skipped is true when the cycle was a configuration no-op: no
	// credential or no watched repos.
	Skipped bool

	// Found counts the items returned by the search call.
	Found int

	// Added counts the notifications the merge actually appended.
	Added int

	// ThreadsChecked counts the pull requests included in the review
	// thread lookup.
	ThreadsChecked int
}

// RunCycle executes one watch cycle against the given state and returns
// the advanced state. The checkpoint moves to the cycle-start time only
// when every step succeeded; on failure the input state comes back
// unchanged, nothing has been persisted by this cycle, and the next
// scheduled cycle is the retry.
//
// The cycle is not reentrant. Callers guarantee that invocations never
// overlap; the scheduler's skip-if-busy guard provides that for the
// daemon.
func (e *Engine) RunCycle(ctx context.Context, state model.EngineState) (model.EngineState, CycleResult, error) {
	if e.fetcher == nil || len(e.repos) == 0 {
		log.Debug("watch cycle skipped", "credential", e.fetcher != nil, "repos", len(e.repos))
		return state, CycleResult{Skipped: true}, nil
	}

	// Captured before any fetch, so items changing while the cycle runs
	// fall into the next window instead of being lost.
	cycleStart := time.Now().UTC()

	viewer := state.Viewer
	if viewer == "" {
		v, err := e.fetcher.Viewer(ctx)
		if err != nil {
			return state, CycleResult{}, fmt.Errorf("failed to resolve viewer identity: %w", err)
		}
		viewer = v
		log.Debug("resolved viewer identity", "login", viewer)
	}

	query := ghclient.BuildSearchQuery(e.repos, state.LastCheckedAt, viewer)
	log.Trace("watch cycle query", "query", query)

	items, err := e.fetcher.SearchOpenItems(ctx, query)
	if err != nil {
		return state, CycleResult{}, err
	}

	cls := classify.New(viewer, state.LastCheckedAt, e.flags)
	firstPass := cls.ClassifyItems(items, cycleStart)
	candidates := firstPass.Candidates

	threadsChecked := 0
	if len(firstPass.ThreadChecks) > 0 && e.flags.Enabled(model.KindThread) {
		ids := make([]string, len(firstPass.ThreadChecks))
		for i, pr := range firstPass.ThreadChecks {
			ids[i] = pr.NodeID
		}

		threads, err := e.fetcher.FetchReviewThreads(ctx, ids)
		if err != nil {
			return state, CycleResult{}, err
		}
		threadsChecked = len(ids)
		candidates = append(candidates, cls.ClassifyThreads(firstPass.ThreadChecks, threads, cycleStart)...)
	}

	added, err := e.notifs.Merge(candidates)
	if err != nil {
		return state, CycleResult{}, fmt.Errorf("failed to merge notifications: %w", err)
	}

	state.Viewer = viewer
	state.LastCheckedAt = cycleStart

	result := CycleResult{
		Found:          len(items),
		Added:          added,
		ThreadsChecked: threadsChecked,
	}
	log.Info("watch cycle complete", "found", result.Found, "added", result.Added, "badge", e.notifs.Badge())
	return state, result, nil
}

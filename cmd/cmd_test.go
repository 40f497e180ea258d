package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/engine"
	"github.com/spiffcs/vigil/internal/history"
	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "vigil" {
		t.Errorf("expected Use to be 'vigil', got %q", cmd.Use)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := New()
	want := []string{
		"list", "watch", "poll", "open", "read", "status",
		"ratelimit", "config", "auth", "clear", "version",
	}

	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			for _, sub := range cmd.Commands() {
				if sub.Name() == name {
					return
				}
			}
			t.Errorf("subcommand %q not registered", name)
		})
	}
}

func TestNewCmdConfig(t *testing.T) {
	cmd := NewCmdConfig()
	if cmd.Use != "config" {
		t.Errorf("expected Use to be 'config', got %q", cmd.Use)
	}

	want := []string{"init", "path", "show", "set"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("config subcommand %q not registered", name)
		}
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")
	// Just verify it doesn't panic - version info is in package vars
}

func TestNewOptions(t *testing.T) {
	opts := NewOptions(WithFormat("json"), WithSince("24h"), WithVerbosity(2))
	if opts.Format != "json" {
		t.Errorf("expected Format to be 'json', got %q", opts.Format)
	}
	if opts.Since != "24h" {
		t.Errorf("expected Since to be '24h', got %q", opts.Since)
	}
	if opts.Verbosity != 2 {
		t.Errorf("expected Verbosity to be 2, got %d", opts.Verbosity)
	}
}

func TestTUIFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    string // String() after Set
		wantErr bool
	}{
		{"true", "true", false},
		{"1", "true", false},
		{"yes", "true", false},
		{"false", "false", false},
		{"0", "false", false},
		{"no", "false", false},
		{"auto", "auto", false},
		{"maybe", "auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newTUIFlag(&Options{})
			err := f.Set(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldUseTUI(t *testing.T) {
	forced := true
	disabled := false

	if shouldUseTUI(&Options{Verbosity: 1, TUI: &forced}) {
		t.Error("verbose logging should disable the TUI")
	}
	if !shouldUseTUI(&Options{TUI: &forced}) {
		t.Error("explicit --tui=true should force the TUI")
	}
	if shouldUseTUI(&Options{TUI: &disabled}) {
		t.Error("explicit --tui=false should disable the TUI")
	}
}

func TestSplitRepos(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "acme/widgets", []string{"acme/widgets"}},
		{"spaced list", " acme/widgets , acme/gadgets ", []string{"acme/widgets", "acme/gadgets"}},
		{"only separators", ",,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitRepos(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitRepos(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitRepos(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateRepos(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"acme/widgets", false},
		{"acme/widgets, golang/go", false},
		{"", true},
		{"acme", true},
		{"acme/widgets, nope", true},
		{"/widgets", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validateRepos(tt.input)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMinutes(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"5", false},
		{" 10 ", false},
		{"0", true},
		{"-1", true},
		{"x", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validateMinutes(tt.input)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNotifyOverrides(t *testing.T) {
	if got := notifyOverrides(config.DefaultNotifyFlags()); got != nil {
		t.Errorf("default flags should produce no overrides, got %+v", got)
	}

	flags := config.DefaultNotifyFlags()
	flags.Mentions = false
	got := notifyOverrides(flags)
	if got == nil {
		t.Fatal("expected overrides for non-default flags")
	}
	if got.Mentions == nil || *got.Mentions {
		t.Error("mentions override should be false")
	}
	if got.NewItems == nil || !*got.NewItems {
		t.Error("new items override should stay true")
	}
}

func TestSeedCheckpoint(t *testing.T) {
	states := state.NewStoreAt(filepath.Join(t.TempDir(), "state.json"))

	if err := seedCheckpoint(states, ""); err != nil {
		t.Fatalf("empty since: %v", err)
	}
	st, err := states.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.HasChecked() {
		t.Error("empty --since should not seed anything")
	}

	if err := seedCheckpoint(states, "24h"); err != nil {
		t.Fatalf("seedCheckpoint: %v", err)
	}
	st, err = states.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := time.Now().Add(-24 * time.Hour)
	if st.LastCheckedAt.Before(want.Add(-time.Minute)) || st.LastCheckedAt.After(want.Add(time.Minute)) {
		t.Errorf("checkpoint = %v, want about %v", st.LastCheckedAt, want)
	}

	// A second seed must not move an existing checkpoint
	first := st.LastCheckedAt
	if err := seedCheckpoint(states, "7d"); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	st, _ = states.Load()
	if !st.LastCheckedAt.Equal(first) {
		t.Errorf("checkpoint moved from %v to %v", first, st.LastCheckedAt)
	}

	fresh := state.NewStoreAt(filepath.Join(t.TempDir(), "state.json"))
	if err := seedCheckpoint(fresh, "bogus"); err == nil {
		t.Error("expected error for invalid duration")
	}
}

// fakeFetcher satisfies ghclient.Fetcher with canned empty results.
type fakeFetcher struct{}

func (fakeFetcher) Viewer(_ context.Context) (string, error) {
	return "octocat", nil
}

func (fakeFetcher) SearchOpenItems(_ context.Context, _ string) ([]model.Item, error) {
	return nil, nil
}

func (fakeFetcher) FetchReviewThreads(_ context.Context, _ []string) (map[string][]model.ReviewThread, error) {
	return map[string][]model.ReviewThread{}, nil
}

func TestRunCycleOnce(t *testing.T) {
	dir := t.TempDir()
	notifs := store.NewStoreAt(filepath.Join(dir, "notifications.json"))
	states := state.NewStoreAt(filepath.Join(dir, "state.json"))
	hist := history.NewStoreWithPath(filepath.Join(dir, "history.jsonl"))

	repos := []model.RepoRef{{Owner: "acme", Name: "widgets"}}
	eng := engine.New(fakeFetcher{}, notifs, repos, config.DefaultNotifyFlags())

	res, err := runCycleOnce(context.Background(), eng, states, hist)
	if err != nil {
		t.Fatalf("runCycleOnce: %v", err)
	}
	if res.Skipped {
		t.Fatal("cycle should not be skipped")
	}

	st, err := states.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !st.HasChecked() {
		t.Error("checkpoint should advance after a successful cycle")
	}
	if st.Viewer != "octocat" {
		t.Errorf("viewer = %q, want %q", st.Viewer, "octocat")
	}

	recent := hist.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 history snapshot, got %d", len(recent))
	}
	if recent[0].Err != "" {
		t.Errorf("snapshot error = %q, want empty", recent[0].Err)
	}
}

func TestRunCycleOnceSkipped(t *testing.T) {
	// No fetcher configured: the cycle is a no-op and the checkpoint stays put
	dir := t.TempDir()
	notifs := store.NewStoreAt(filepath.Join(dir, "notifications.json"))
	states := state.NewStoreAt(filepath.Join(dir, "state.json"))

	eng := engine.New(nil, notifs, nil, config.DefaultNotifyFlags())
	res, err := runCycleOnce(context.Background(), eng, states, nil)
	if err != nil {
		t.Fatalf("runCycleOnce: %v", err)
	}
	if !res.Skipped {
		t.Error("expected cycle to be skipped")
	}

	st, err := states.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.HasChecked() {
		t.Error("checkpoint should stay unset for a skipped cycle")
	}
}

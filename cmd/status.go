package cmd

import (
	"fmt"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/format"
	"github.com/spiffcs/vigil/internal/ghclient"
	"github.com/spiffcs/vigil/internal/output"
	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdStatus creates the status command.
func NewCmdStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show watcher, store, and GitHub status",
		Long: `Shows the watch configuration and checkpoint, the notification
store summary, recent cycle outcomes, and the GitHub connection. The
GitHub probes run concurrently; a network failure degrades the output
instead of failing the command.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}
	states, err := state.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	st, err := states.Load()
	if err != nil {
		return err
	}

	var (
		viewer    string
		viewerErr error
		limits    *gh.RateLimits
		limitsErr error
	)

	token := cfg.GetGitHubToken()
	if token != "" {
		client, err := ghclient.NewClient(ctx, token)
		if err != nil {
			return err
		}

		// Probes record their own errors, so the group never fails;
		// partial results still render.
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			viewer, viewerErr = client.Viewer(ctx)
			return nil
		})
		g.Go(func() error {
			limits, limitsErr = client.RateLimits(ctx)
			return nil
		})
		_ = g.Wait()
	}

	fmt.Printf("Watching:   %d repositories, every %s\n", len(cfg.Repos), cfg.GetPollInterval())
	if st.HasChecked() {
		fmt.Printf("Checkpoint: %s (%s ago)\n", st.LastCheckedAt.Format(time.RFC3339), format.FormatAge(time.Since(st.LastCheckedAt)))
	} else {
		fmt.Println("Checkpoint: none, no cycle has completed yet")
	}

	switch {
	case token == "":
		fmt.Println("GitHub:     no token configured, run \"vigil auth set-token\"")
	case viewerErr != nil:
		fmt.Printf("GitHub:     unreachable (%v)\n", viewerErr)
	default:
		fmt.Printf("GitHub:     authenticated as %s\n", viewer)
	}
	switch {
	case limits != nil && limits.Core != nil:
		fmt.Printf("Rate limit: %d/%d core remaining\n", limits.Core.Remaining, limits.Core.Limit)
	case limitsErr != nil:
		fmt.Printf("Rate limit: unavailable (%v)\n", limitsErr)
	}

	fmt.Println()
	formatter := output.NewFormatter(output.FormatTable)
	if err := formatter.FormatSummary(output.Summarize(notifs.All(), notifs.Badge()), os.Stdout); err != nil {
		return err
	}

	printRecentCycles()
	return nil
}

// printRecentCycles renders the last few history snapshots, newest first.
func printRecentCycles() {
	hist := openHistory()
	if hist == nil {
		return
	}
	recent := hist.Recent(5)
	if len(recent) == 0 {
		return
	}

	fmt.Println("\nRecent cycles:")
	for i := len(recent) - 1; i >= 0; i-- {
		snap := recent[i]
		fmt.Printf("  %s", snap.Timestamp.Local().Format("2006-01-02 15:04"))
		switch {
		case snap.Err != "":
			fmt.Printf("  failed: %s\n", snap.Err)
		case snap.Skipped:
			fmt.Println("  skipped")
		default:
			fmt.Printf("  found %d, added %d (%dms)\n", snap.Found, snap.Added, snap.DurationMS)
		}
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/engine"
	"github.com/spiffcs/vigil/internal/ghclient"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/output"
	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
	"github.com/spiffcs/vigil/internal/tui"
)

// NewCmdList creates the list command.
func NewCmdList(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show pending notifications (same as bare vigil)",
		Long: `Shows the notifications collected by watch cycles. On a terminal
this opens an interactive list; otherwise it prints a table. Nothing is
fetched here; run "vigil watch" or "vigil poll" to detect new activity.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

// addListFlags adds the list-specific flags to a command.
func addListFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable the interactive list (default: auto-detect)")
}

func runList(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}

	format := output.Format(opts.Format)
	if format == "" {
		format = output.Format(cfg.DefaultFormat)
	}

	if shouldUseTUI(opts) && (format == "" || format == output.FormatTable) {
		// Suppress logs during the TUI to avoid interleaving with the display
		log.Initialize(opts.Verbosity, io.Discard)
		return tui.RunListUI(notifs.All(), notifs.Badge(), notifs, newRefreshFunc(ctx, cfg, notifs))
	}

	formatter := output.NewFormatter(format)
	return formatter.Format(notifs.All(), os.Stdout)
}

// newRefreshFunc wires the TUI refresh key to a full watch cycle. It
// returns nil when no credential or no repos are configured; the TUI
// then ignores the refresh key.
func newRefreshFunc(ctx context.Context, cfg *config.Config, notifs *store.Store) tui.RefreshFunc {
	token := cfg.GetGitHubToken()
	if token == "" || len(cfg.Repos) == 0 {
		return nil
	}

	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		log.Warn("refresh disabled", "error", err)
		return nil
	}
	states, err := state.NewStore()
	if err != nil {
		log.Warn("refresh disabled", "error", err)
		return nil
	}

	eng := engine.New(client, notifs, cfg.RepoRefs(), cfg.GetNotifyFlags())
	hist := openHistory()

	return func() ([]model.StoredNotification, int, error) {
		if _, err := runCycleOnce(ctx, eng, states, hist); err != nil {
			return nil, 0, err
		}
		return notifs.All(), notifs.Badge(), nil
	}
}

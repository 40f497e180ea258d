package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/engine"
	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdPoll creates the poll command.
func NewCmdPoll(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one watch cycle and exit",
		Long: `Runs a single watch cycle: search the watched repositories,
detect notifications, merge them into the store, and advance the
checkpoint. Useful from cron or for trying out a configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPoll(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Backdate the first checkpoint (e.g. 24h, 7d)")

	return cmd
}

func runPoll(cmd *cobra.Command, opts *Options) error {
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
	if err := seedCheckpoint(states, opts.Since); err != nil {
		return err
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}

	eng := engine.New(fetcher, notifs, cfg.RepoRefs(), cfg.GetNotifyFlags())
	res, err := runCycleOnce(ctx, eng, states, openHistory())
	if err != nil {
		return err
	}

	if res.Skipped {
		fmt.Println("Cycle skipped: configure a GitHub token and at least one repository first.")
		fmt.Println("See \"vigil auth set-token\" and \"vigil config init\".")
		return nil
	}

	fmt.Printf("Checked %d items", res.Found)
	if res.ThreadsChecked > 0 {
		fmt.Printf(" and review threads on %d pull requests", res.ThreadsChecked)
	}
	fmt.Printf(": %d new, %d unread total.\n", res.Added, notifs.Badge())
	return nil
}

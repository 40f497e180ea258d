package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdClear creates the clear command.
func NewCmdClear() *cobra.Command {
	var resetState bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		Long: `Deletes every notification, read markers included. Items the
watcher already reported can be detected again afterwards. With --state
the watch checkpoint is also reset, so the next cycle starts a fresh
window.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runClear(resetState)
		},
	}

	cmd.Flags().BoolVar(&resetState, "state", false, "Also reset the watch checkpoint")

	return cmd
}

func runClear(resetState bool) error {
	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}
	if err := notifs.Clear(); err != nil {
		return err
	}
	fmt.Println("Cleared all notifications.")

	if resetState {
		states, err := state.NewStore()
		if err != nil {
			return err
		}
		if err := states.Reset(); err != nil {
			return err
		}
		fmt.Println("Watch state reset; the next cycle starts a fresh window.")
	}

	return nil
}

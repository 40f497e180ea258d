package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdRead creates the read command.
func NewCmdRead() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark notifications read",
		Long: `Marks a single notification read by id, or everything at once
with --all. Read notifications leave the list and stop counting toward
the badge; detecting the same notification again later stays suppressed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRead(args, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Mark every notification read")

	return cmd
}

func runRead(args []string, all bool) error {
	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}

	if all {
		n, err := notifs.MarkAllRead()
		if err != nil {
			return err
		}
		fmt.Printf("Marked %d notifications read.\n", n)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a notification id or --all")
	}

	id := args[0]
	if _, ok := notifs.Find(id); !ok && !notifs.IsRead(id) {
		return fmt.Errorf("unknown notification id %q, see \"vigil list\"", id)
	}
	if err := notifs.Acknowledge(id); err != nil {
		return err
	}

	fmt.Printf("Marked %s read (%d unread left).\n", id, notifs.Badge())
	return nil
}

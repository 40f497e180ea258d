package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/internal/browser"
	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdOpen creates the open command.
func NewCmdOpen() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a notification in the browser and mark it read",
		Long: `Opens the notification's issue or pull request in the default
browser and acknowledges it. Ids are shown by "vigil list -o json".`,
		Args: cobra.ExactArgs(1),
		RunE: runOpen,
	}
}

func runOpen(_ *cobra.Command, args []string) error {
	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}

	id := args[0]
	n, ok := notifs.Find(id)
	if !ok {
		return fmt.Errorf("unknown notification id %q, see \"vigil list\"", id)
	}

	if n.URL != "" {
		if err := browser.Open(n.URL); err != nil {
			return fmt.Errorf("could not open %s: %w", n.URL, err)
		}
	}

	if err := notifs.Acknowledge(id); err != nil {
		return err
	}

	fmt.Printf("Opened %s#%d and marked it read (%d unread left).\n", n.Repo, n.Number, notifs.Badge())
	return nil
}

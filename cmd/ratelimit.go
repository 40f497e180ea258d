package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
		RunE:  runRateLimit,
	}
}

func runRateLimit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken())
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		if errors.Is(err, ghclient.ErrRateLimited) {
			_, _, resetAt, _ := ghclient.GetRateLimitStatus()
			return fmt.Errorf("rate limited, resets at %s", resetAt.Format(time.RFC1123))
		}
		return err
	}

	fmt.Println("GitHub API rate limits:")
	fmt.Println()

	if limits.Core != nil {
		fmt.Printf("Core API:   %d/%d remaining (resets in %s)\n",
			limits.Core.Remaining, limits.Core.Limit, resetIn(limits.Core.Reset.Time))
	}
	if limits.Search != nil {
		fmt.Printf("Search API: %d/%d remaining (resets in %s)\n",
			limits.Search.Remaining, limits.Search.Limit, resetIn(limits.Search.Reset.Time))
	}
	if limits.GraphQL != nil {
		fmt.Printf("GraphQL:    %d/%d remaining (resets in %s)\n",
			limits.GraphQL.Remaining, limits.GraphQL.Limit, resetIn(limits.GraphQL.Reset.Time))
	}

	return nil
}

func resetIn(reset time.Time) time.Duration {
	d := time.Until(reset).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d
}

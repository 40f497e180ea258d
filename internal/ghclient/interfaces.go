// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/vigil/internal/model"
)

// Fetcher defines the remote operations one watch cycle performs, in the
// order the engine issues them. The engine depends on this interface so
// tests can substitute a fake without touching the network.
type Fetcher interface {
	// Viewer returns the authenticated user's login.
	Viewer(ctx context.Context) (string, error)

	// SearchOpenItems fetches open items matching a query built by
	// BuildSearchQuery.
	SearchOpenItems(ctx context.Context, query string) ([]model.Item, error)

	// FetchReviewThreads fetches review threads for pull request node ids.
	FetchReviewThreads(ctx context.Context, ids []string) (map[string][]model.ReviewThread, error)
}

// Ensure Client implements Fetcher.
var _ Fetcher = (*Client)(nil)

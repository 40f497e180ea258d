// Package urlutil provides URL helpers for GitHub issues and pull requests.
package urlutil

import (
	"fmt"

	"github.com/spiffcs/vigil/internal/model"
)

// ItemURL builds the canonical web URL for an item. Used as a fallback
// when the API response did not carry one.
func ItemURL(repo model.RepoRef, number int, itemType model.ItemType) string {
	kind := "issues"
	if itemType == model.ItemTypePullRequest {
		kind = "pull"
	}
	return fmt.Sprintf("https://github.com/%s/%s/%s/%d", repo.Owner, repo.Name, kind, number)
}

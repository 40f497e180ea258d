// Package classify turns fetched items into notification candidates.
// Every function here is pure: signals are computed from the item, the
// checkpoint, and the viewer login, never from the network or the store.
package classify

import (
	"strings"
	"time"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/model"
)

// Classifier holds the per-cycle inputs shared by every signal: the
// viewer login, the checkpoint separating seen from unseen, and the
// per-kind enable switches.
type Classifier struct {
	viewer     string
	checkpoint time.Time
	flags      config.NotifyFlags
}

// New returns a classifier for one watch cycle.
func New(viewer string, checkpoint time.Time, flags config.NotifyFlags) *Classifier {
	return &Classifier{
		viewer:     viewer,
		checkpoint: checkpoint,
		flags:      flags,
	}
}

// Result is the outcome of the first classification pass.
type Result struct {
	// Candidates in merge order: new items first, then mentions, then
	// assignee activity. Thread candidates are appended by the second
	// pass.
	Candidates []model.StoredNotification

	// ThreadChecks lists the pull requests whose review threads need a
	// lookup. Collected regardless of the thread switch; the engine
	// gates the actual fetch.
	ThreadChecks []model.Item
}

// ClassifyItems runs the first pass over the fetched items. One item can
// yield several candidates, one per matching kind; disabled kinds yield
// none. detectedAt stamps every candidate, so all notifications from one
// cycle carry the same detection time.
func (c *Classifier) ClassifyItems(items []model.Item, detectedAt time.Time) Result {
	var newItems, mentions, assigned []model.StoredNotification
	var threadChecks []model.Item

	for _, item := range items {
		if c.flags.Enabled(model.KindNew) && IsNew(item, c.checkpoint) {
			newItems = append(newItems, model.NewNotification(model.KindNew, item, detectedAt))
		}
		if c.flags.Enabled(model.KindMention) && HasMention(item, c.viewer) {
			mentions = append(mentions, model.NewNotification(model.KindMention, item, detectedAt))
		}
		if c.flags.Enabled(model.KindAssignee) && HasAssigneeActivity(item, c.viewer, c.checkpoint) {
			assigned = append(assigned, model.NewNotification(model.KindAssignee, item, detectedAt))
		}
		if NeedsThreadCheck(item, c.checkpoint) {
			threadChecks = append(threadChecks, item)
		}
	}

	candidates := make([]model.StoredNotification, 0, len(newItems)+len(mentions)+len(assigned))
	candidates = append(candidates, newItems...)
	candidates = append(candidates, mentions...)
	candidates = append(candidates, assigned...)

	return Result{
		Candidates:   candidates,
		ThreadChecks: threadChecks,
	}
}

// ClassifyThreads runs the second pass over fetched review threads. A
// pull request with at least one qualifying thread yields exactly one
// candidate keyed by the pull request itself, so repeated replies across
// threads collapse into a single notification.
func (c *Classifier) ClassifyThreads(prs []model.Item, threads map[string][]model.ReviewThread, detectedAt time.Time) []model.StoredNotification {
	var candidates []model.StoredNotification
	for _, pr := range prs {
		for _, thread := range threads[pr.NodeID] {
			if ThreadQualifies(thread, c.viewer, c.checkpoint) {
				candidates = append(candidates, model.NewNotification(model.KindThread, pr, detectedAt))
				break
			}
		}
	}
	return candidates
}

// IsNew reports whether the item was created strictly after the
// checkpoint. An item created exactly at the checkpoint is not new.
func IsNew(item model.Item, checkpoint time.Time) bool {
	return item.CreatedAt.After(checkpoint)
}

// MentionToken returns the literal substring that counts as a mention of
// the given login.
func MentionToken(viewer string) string {
	return "@" + viewer
}

// HasMention reports whether the mention token occurs in the item body or
// in any fetched comment body. Substring match only: no word boundaries,
// no case folding. A login that prefixes another login will
// false-positive; that approximation is part of the contract.
func HasMention(item model.Item, viewer string) bool {
	token := MentionToken(viewer)
	if strings.Contains(item.Body, token) {
		return true
	}
	for _, comment := range item.Comments {
		if strings.Contains(comment.Body, token) {
			return true
		}
	}
	return false
}

// HasAssigneeActivity reports whether the viewer is an assignee and any
// fetched comment was updated after the checkpoint. The viewer's own
// comments count too; self-activity is not filtered.
func HasAssigneeActivity(item model.Item, viewer string, checkpoint time.Time) bool {
	if !item.HasAssignee(viewer) {
		return false
	}
	for _, comment := range item.Comments {
		if comment.UpdatedAt.After(checkpoint) {
			return true
		}
	}
	return false
}

// NeedsThreadCheck reports whether the item is a pull request updated
// after the checkpoint. Only those pull requests are worth a review
// thread lookup.
func NeedsThreadCheck(item model.Item, checkpoint time.Time) bool {
	return item.IsPullRequest() && item.UpdatedAt.After(checkpoint)
}

// ThreadQualifies reports whether a review thread represents "pulled in
// earlier, someone just replied": the thread is unresolved, some comment
// created at or before the checkpoint mentions the viewer, and the
// chronologically last fetched comment was created after the checkpoint.
// A thread whose mention is itself the newest comment does not qualify;
// there is nothing new to read since the mention.
func ThreadQualifies(thread model.ReviewThread, viewer string, checkpoint time.Time) bool {
	if thread.IsResolved || len(thread.Comments) == 0 {
		return false
	}

	token := MentionToken(viewer)
	mentionedBefore := false
	var lastCreated time.Time
	for _, comment := range thread.Comments {
		if !comment.CreatedAt.After(checkpoint) && strings.Contains(comment.Body, token) {
			mentionedBefore = true
		}
		if comment.CreatedAt.After(lastCreated) {
			lastCreated = comment.CreatedAt
		}
	}

	return mentionedBefore && lastCreated.After(checkpoint)
}

package model

import (
	"fmt"
	"time"
)

// Kind classifies why an item became a notification.
type Kind string

const (
	// KindNew marks items created after the checkpoint.
	KindNew Kind = "new"
	// KindMention marks items whose body or comments mention the viewer.
	KindMention Kind = "mention"
	// KindThread marks pull requests with fresh replies in review threads
	// the viewer was mentioned in.
	KindThread Kind = "thread"
	// KindAssignee marks assigned items with comment activity after the
	// checkpoint.
	KindAssignee Kind = "assignee"
)

// AllKinds contains all valid notification kinds.
// This is the single source of truth for valid kind values.
var AllKinds = []Kind{
	KindNew,
	KindMention,
	KindThread,
	KindAssignee,
}

// Display returns a short human-readable label for the kind.
func (k Kind) Display() string {
	switch k {
	case KindNew:
		return "new item"
	case KindMention:
		return "mention"
	case KindThread:
		return "thread reply"
	case KindAssignee:
		return "assignee activity"
	default:
		return string(k)
	}
}

// StoredNotification is one entry in the persisted notification list.
// The same shape serves as a merge candidate before it is stored.
type StoredNotification struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	NodeID     string    `json:"nodeId,omitempty"`
	Type       ItemType  `json:"type"`
	Repo       RepoRef   `json:"repo"`
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	DetectedAt time.Time `json:"detectedAt"`
}

// NotificationID derives the dedup key for a notification. The key is
// the kind joined with the remote node id, so the same item can appear
// once per kind. Items without a node id fall back to the repo-and-number
// coordinate.
func NotificationID(kind Kind, nodeID string, repo RepoRef, number int) string {
	if nodeID == "" {
		return fmt.Sprintf("%s:%s#%d", kind, repo, number)
	}
	return string(kind) + ":" + nodeID
}

// NewNotification builds a candidate of the given kind from a fetched item.
func NewNotification(kind Kind, item Item, detectedAt time.Time) StoredNotification {
	return StoredNotification{
		ID:         NotificationID(kind, item.NodeID, item.Repo, item.Number),
		Kind:       kind,
		NodeID:     item.NodeID,
		Type:       item.Type,
		Repo:       item.Repo,
		Number:     item.Number,
		Title:      item.Title,
		URL:        item.URL,
		DetectedAt: detectedAt,
	}
}

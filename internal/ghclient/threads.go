package ghclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
)

// threadsResponse mirrors the data envelope of the batch node lookup.
// Entries are null when an id does not resolve, and empty when it
// resolves to something other than a pull request.
type threadsResponse struct {
	Nodes []*threadNode `json:"nodes"`
}

type threadNode struct {
	ID            string `json:"id"`
	ReviewThreads struct {
		Nodes []reviewThreadNode `json:"nodes"`
	} `json:"reviewThreads"`
}

type reviewThreadNode struct {
	ID         string `json:"id"`
	IsResolved bool   `json:"isResolved"`
	Comments   struct {
		Nodes []threadCommentNode `json:"nodes"`
	} `json:"comments"`
}

type threadCommentNode struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	Author    *actor `json:"author"`
}

// FetchReviewThreads runs the batch node lookup (call 2 of a cycle) for
// the given pull request node ids and returns review threads keyed by
// those ids. Ids that no longer resolve to a pull request are absent from
// the result; a malformed thread payload fails the whole call.
func (c *Client) FetchReviewThreads(ctx context.Context, ids []string) (map[string][]model.ReviewThread, error) {
	if len(ids) == 0 {
		return map[string][]model.ReviewThread{}, nil
	}

	doc, err := BuildThreadBatchQuery(ids)
	if err != nil {
		return nil, err
	}

	data, err := c.executeGraphQL(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("thread search failed: %w", err)
	}

	result, err := decodeThreadMap(data)
	if err != nil {
		return nil, err
	}

	log.Debug("thread lookup complete", "requested", len(ids), "resolved", len(result))
	return result, nil
}

// decodeThreadMap converts the raw node-lookup payload into review
// threads keyed by pull request node id.
func decodeThreadMap(data json.RawMessage) (map[string][]model.ReviewThread, error) {
	var resp threadsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse thread response: %w", err)
	}

	result := make(map[string][]model.ReviewThread, len(resp.Nodes))
	for _, node := range resp.Nodes {
		if node == nil || node.ID == "" {
			log.Debug("thread lookup id did not resolve to a pull request")
			continue
		}
		threads, err := threadsFromNode(node)
		if err != nil {
			return nil, err
		}
		result[node.ID] = threads
	}
	return result, nil
}

// threadsFromNode validates one pull request's review threads. Comments
// arrive in creation order, which the classifier relies on.
func threadsFromNode(n *threadNode) ([]model.ReviewThread, error) {
	subject := fmt.Sprintf("pull request %s", n.ID)

	threads := make([]model.ReviewThread, 0, len(n.ReviewThreads.Nodes))
	for _, tn := range n.ReviewThreads.Nodes {
		thread := model.ReviewThread{
			ID:         tn.ID,
			IsResolved: tn.IsResolved,
		}
		for _, cn := range tn.Comments.Nodes {
			comment := model.ThreadComment{
				ID:   cn.ID,
				Body: cn.Body,
			}
			if cn.Author != nil {
				comment.Author = cn.Author.Login
			}
			createdAt, err := parseTimestamp(subject, "thread comment createdAt", cn.CreatedAt)
			if err != nil {
				return nil, err
			}
			comment.CreatedAt = createdAt
			thread.Comments = append(thread.Comments, comment)
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

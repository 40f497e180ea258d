package ghclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/urlutil"
)

// searchResponse mirrors the data envelope of the item search call.
type searchResponse struct {
	Search struct {
		Nodes []json.RawMessage `json:"nodes"`
	} `json:"search"`
}

// searchNode is the raw field set shared by the Issue and PullRequest
// fragments of the search query. Timestamps stay strings until validation
// so a malformed value surfaces as a decode failure rather than a silent
// zero time.
type searchNode struct {
	Typename   string `json:"__typename"`
	ID         string `json:"id"`
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Body       string `json:"body"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
	Author     *actor `json:"author"`
	Repository struct {
		Name  string `json:"name"`
		Owner actor  `json:"owner"`
	} `json:"repository"`
	Assignees struct {
		Nodes []actor `json:"nodes"`
	} `json:"assignees"`
	Comments struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type commentNode struct {
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Author    *actor `json:"author"`
}

// SearchOpenItems runs the item search (call 1 of a cycle) for a query
// built by BuildSearchQuery and decodes the results into typed items.
// Any decode failure aborts the whole call; partial results are never
// returned.
func (c *Client) SearchOpenItems(ctx context.Context, query string) ([]model.Item, error) {
	doc, err := BuildSearchDocument(query)
	if err != nil {
		return nil, err
	}

	data, err := c.executeGraphQL(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("item search failed: %w", err)
	}

	items, err := decodeSearchItems(data)
	if err != nil {
		return nil, err
	}

	log.Debug("item search complete", "items", len(items))
	return items, nil
}

// decodeSearchItems converts the raw search payload into model items,
// validating each node along the way.
func decodeSearchItems(data json.RawMessage) ([]model.Item, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	items := make([]model.Item, 0, len(resp.Search.Nodes))
	for i, raw := range resp.Search.Nodes {
		var node searchNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, &DecodeError{Subject: subjectFor(i), Field: "node", Msg: err.Error()}
		}
		item, err := itemFromNode(i, node)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// itemFromNode validates one search result and converts it to a model
// item. The __typename discriminator selects the variant; anything other
// than Issue or PullRequest, a missing node id, or a bad timestamp fails
// the conversion.
func itemFromNode(idx int, n searchNode) (model.Item, error) {
	subject := subjectFor(idx)

	var itemType model.ItemType
	switch n.Typename {
	case "Issue":
		itemType = model.ItemTypeIssue
	case "PullRequest":
		itemType = model.ItemTypePullRequest
	default:
		return model.Item{}, &DecodeError{Subject: subject, Field: "__typename", Msg: fmt.Sprintf("unexpected value %q", n.Typename)}
	}

	if n.ID == "" {
		return model.Item{}, &DecodeError{Subject: subject, Field: "id", Msg: "missing"}
	}

	createdAt, err := parseTimestamp(subject, "createdAt", n.CreatedAt)
	if err != nil {
		return model.Item{}, err
	}
	updatedAt, err := parseTimestamp(subject, "updatedAt", n.UpdatedAt)
	if err != nil {
		return model.Item{}, err
	}

	repo := model.RepoRef{
		Owner: n.Repository.Owner.Login,
		Name:  n.Repository.Name,
	}
	item := model.Item{
		Type:      itemType,
		NodeID:    n.ID,
		Number:    n.Number,
		Title:     n.Title,
		URL:       n.URL,
		Body:      n.Body,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Repo:      repo,
	}
	if item.URL == "" {
		item.URL = urlutil.ItemURL(repo, n.Number, itemType)
	}
	if n.Author != nil {
		item.Author = n.Author.Login
	}
	for _, a := range n.Assignees.Nodes {
		if a.Login != "" {
			item.Assignees = append(item.Assignees, a.Login)
		}
	}

	for _, cn := range n.Comments.Nodes {
		comment := model.Comment{Body: cn.Body}
		if cn.Author != nil {
			comment.Author = cn.Author.Login
		}
		comment.CreatedAt, err = parseTimestamp(subject, "comment createdAt", cn.CreatedAt)
		if err != nil {
			return model.Item{}, err
		}
		comment.UpdatedAt, err = parseTimestamp(subject, "comment updatedAt", cn.UpdatedAt)
		if err != nil {
			return model.Item{}, err
		}
		item.Comments = append(item.Comments, comment)
	}

	return item, nil
}

func subjectFor(idx int) string {
	return fmt.Sprintf("search result %d", idx)
}

package ghclient

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spiffcs/vigil/internal/model"
)

func TestDecodeSearchItems(t *testing.T) {
	data := json.RawMessage(`{
		"search": {
			"nodes": [
				{
					"__typename": "Issue",
					"id": "I_abc",
					"number": 42,
					"title": "Crash on startup",
					"url": "https://github.com/acme/widgets/issues/42",
					"body": "It crashes. cc @octocat",
					"createdAt": "2024-03-01T10:00:00Z",
					"updatedAt": "2024-03-02T11:30:00Z",
					"author": {"login": "reporter"},
					"repository": {"name": "widgets", "owner": {"login": "acme"}},
					"assignees": {"nodes": [{"login": "octocat"}]},
					"comments": {"nodes": [
						{"body": "looking", "createdAt": "2024-03-02T11:00:00Z", "updatedAt": "2024-03-02T11:30:00Z", "author": {"login": "octocat"}}
					]}
				},
				{
					"__typename": "PullRequest",
					"id": "PR_def",
					"number": 7,
					"title": "Fix crash",
					"url": "https://github.com/acme/widgets/pull/7",
					"body": "",
					"createdAt": "2024-03-03T09:00:00Z",
					"updatedAt": "2024-03-03T09:00:00Z",
					"author": null,
					"repository": {"name": "widgets", "owner": {"login": "acme"}},
					"assignees": {"nodes": []},
					"comments": {"nodes": []}
				}
			]
		}
	}`)

	items, err := decodeSearchItems(data)
	if err != nil {
		t.Fatalf("decodeSearchItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	issue := items[0]
	if issue.Type != model.ItemTypeIssue {
		t.Errorf("items[0].Type = %q, want issue", issue.Type)
	}
	if issue.NodeID != "I_abc" {
		t.Errorf("items[0].NodeID = %q, want I_abc", issue.NodeID)
	}
	if issue.Number != 42 {
		t.Errorf("items[0].Number = %d, want 42", issue.Number)
	}
	if issue.Repo.Owner != "acme" || issue.Repo.Name != "widgets" {
		t.Errorf("items[0].Repo = %v, want acme/widgets", issue.Repo)
	}
	if issue.Author != "reporter" {
		t.Errorf("items[0].Author = %q, want reporter", issue.Author)
	}
	if len(issue.Assignees) != 1 || issue.Assignees[0] != "octocat" {
		t.Errorf("items[0].Assignees = %v, want [octocat]", issue.Assignees)
	}
	wantCreated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !issue.CreatedAt.Equal(wantCreated) {
		t.Errorf("items[0].CreatedAt = %v, want %v", issue.CreatedAt, wantCreated)
	}
	if len(issue.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(issue.Comments))
	}
	if issue.Comments[0].Author != "octocat" {
		t.Errorf("comment author = %q, want octocat", issue.Comments[0].Author)
	}
	wantCommentUpdated := time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC)
	if !issue.Comments[0].UpdatedAt.Equal(wantCommentUpdated) {
		t.Errorf("comment UpdatedAt = %v, want %v", issue.Comments[0].UpdatedAt, wantCommentUpdated)
	}

	pr := items[1]
	if pr.Type != model.ItemTypePullRequest {
		t.Errorf("items[1].Type = %q, want pull_request", pr.Type)
	}
	if !pr.IsPullRequest() {
		t.Error("items[1] should report as a pull request")
	}
	// Deleted author decodes to an empty login, not an error.
	if pr.Author != "" {
		t.Errorf("items[1].Author = %q, want empty", pr.Author)
	}
}

func TestDecodeSearchItemsValidation(t *testing.T) {
	validNode := func() map[string]any {
		return map[string]any{
			"__typename": "Issue",
			"id":         "I_abc",
			"number":     1,
			"title":      "t",
			"url":        "u",
			"body":       "",
			"createdAt":  "2024-03-01T10:00:00Z",
			"updatedAt":  "2024-03-01T10:00:00Z",
			"repository": map[string]any{"name": "r", "owner": map[string]any{"login": "o"}},
		}
	}

	tests := []struct {
		name      string
		mutate    func(node map[string]any)
		wantField string
	}{
		{
			name:      "unknown typename",
			mutate:    func(n map[string]any) { n["__typename"] = "Discussion" },
			wantField: "__typename",
		},
		{
			name:      "missing typename",
			mutate:    func(n map[string]any) { delete(n, "__typename") },
			wantField: "__typename",
		},
		{
			name:      "missing id",
			mutate:    func(n map[string]any) { delete(n, "id") },
			wantField: "id",
		},
		{
			name:      "malformed createdAt",
			mutate:    func(n map[string]any) { n["createdAt"] = "yesterday" },
			wantField: "createdAt",
		},
		{
			name:      "missing updatedAt",
			mutate:    func(n map[string]any) { delete(n, "updatedAt") },
			wantField: "updatedAt",
		},
		{
			name: "malformed comment timestamp",
			mutate: func(n map[string]any) {
				n["comments"] = map[string]any{"nodes": []any{
					map[string]any{"body": "hi", "createdAt": "2024-03-01T10:00:00Z", "updatedAt": "not-a-time"},
				}}
			},
			wantField: "comment updatedAt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := validNode()
			tt.mutate(node)
			data, err := json.Marshal(map[string]any{
				"search": map[string]any{"nodes": []any{node}},
			})
			if err != nil {
				t.Fatalf("failed to marshal fixture: %v", err)
			}

			_, err = decodeSearchItems(data)
			if err == nil {
				t.Fatal("expected a decode error")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if decodeErr.Field != tt.wantField {
				t.Errorf("DecodeError.Field = %q, want %q", decodeErr.Field, tt.wantField)
			}
		})
	}
}

func TestDecodeSearchItemsEmpty(t *testing.T) {
	items, err := decodeSearchItems(json.RawMessage(`{"search": {"nodes": []}}`))
	if err != nil {
		t.Fatalf("decodeSearchItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

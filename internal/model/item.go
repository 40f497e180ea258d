// Package model contains domain types for the vigil application.
// These types are independent of any external GitHub library.
package model

import (
	"strings"
	"time"
)

// ItemType discriminates issues from pull requests. Every item fetched
// from the API carries exactly one of these; anything else is rejected
// at the fetch boundary.
type ItemType string

const (
	ItemTypeIssue       ItemType = "issue"
	ItemTypePullRequest ItemType = "pull_request"
)

// RepoRef identifies a watched repository.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepo splits an "owner/name" string on the first slash. Input is
// taken literally; a missing slash leaves Name empty.
func ParseRepo(s string) RepoRef {
	owner, name, _ := strings.Cut(s, "/")
	return RepoRef{Owner: owner, Name: name}
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// Item is one open issue or pull request returned by the search call,
// with the slice of recent comments used for classification.
type Item struct {
	Type      ItemType  `json:"type"`
	NodeID    string    `json:"nodeId"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    string    `json:"author,omitempty"`
	Assignees []string  `json:"assignees,omitempty"`
	Repo      RepoRef   `json:"repo"`
	Comments  []Comment `json:"comments,omitempty"`
}

// IsPullRequest reports whether the item is a pull request.
func (i Item) IsPullRequest() bool {
	return i.Type == ItemTypePullRequest
}

// HasAssignee reports whether login appears in the assignee list.
func (i Item) HasAssignee(login string) bool {
	for _, a := range i.Assignees {
		if a == login {
			return true
		}
	}
	return false
}

// Comment is an issue or pull request comment. UpdatedAt drives the
// assignee-activity signal; CreatedAt is informational here.
type Comment struct {
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewThread is one review discussion on a pull request.
type ReviewThread struct {
	ID         string          `json:"id"`
	IsResolved bool            `json:"isResolved"`
	Comments   []ThreadComment `json:"comments,omitempty"`
}

// ThreadComment is a single comment inside a review thread. The API
// returns these in creation order; the last element is the newest
// fetched comment.
type ThreadComment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

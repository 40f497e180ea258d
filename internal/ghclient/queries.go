package ghclient

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/model"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// Query templates parsed at init time
var (
	searchWindowTemplate  *template.Template
	reviewThreadsTemplate *template.Template
)

func init() {
	searchData, err := queryFiles.ReadFile("queries/search_window.graphql")
	if err != nil {
		panic(fmt.Sprintf("failed to load search_window.graphql: %v", err))
	}
	searchWindowTemplate = template.Must(template.New("search_window").Parse(string(searchData)))

	threadData, err := queryFiles.ReadFile("queries/review_threads.graphql")
	if err != nil {
		panic(fmt.Sprintf("failed to load review_threads.graphql: %v", err))
	}
	reviewThreadsTemplate = template.Must(template.New("review_threads").Parse(string(threadData)))
}

// BuildSearchQuery renders the search-query string for one watch cycle:
// a repo: clause per watched repository, is:open, and a disjunction that
// casts a wide net (created after checkpoint, viewer mentioned, viewer
// assigned). Precise per-category filtering happens later in the
// classifier, so the disjunction is deliberately broad.
//
// Values are interpolated literally. Owner, name, and login are assumed
// to be valid GitHub identifiers (no spaces or quotes); the checkpoint
// renders as UTC RFC3339. An empty repo list omits the repo clause,
// which broadens the search to everything visible to the credential —
// callers treat an empty repo list as "disabled" and never get here.
func BuildSearchQuery(repos []model.RepoRef, checkpoint time.Time, viewer string) string {
	var sb strings.Builder
	for _, r := range repos {
		sb.WriteString("repo:")
		sb.WriteString(r.String())
		sb.WriteString(" ")
	}
	sb.WriteString("is:open ")
	fmt.Fprintf(&sb, "(created:>%s OR mentions:%s OR assignee:%s)",
		checkpoint.UTC().Format(time.RFC3339), viewer, viewer)
	return sb.String()
}

// searchDocParams feeds the search_window template.
type searchDocParams struct {
	Query     string
	First     int
	Assignees int
	Comments  int
}

// BuildSearchDocument wraps a search-query string into the full GraphQL
// document for the item search, with the fixed page sizes inlined.
// GitHub's GraphQL search does not accept variables for the query string
// when batching this way, so the value is interpolated directly.
func BuildSearchDocument(query string) (string, error) {
	var buf bytes.Buffer
	params := searchDocParams{
		Query:     query,
		First:     constants.SearchPageSize,
		Assignees: constants.AssigneePageSize,
		Comments:  constants.CommentPageSize,
	}
	if err := searchWindowTemplate.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute search template: %w", err)
	}
	return buf.String(), nil
}

// threadDocParams feeds the review_threads template.
type threadDocParams struct {
	IDs      string
	Threads  int
	Comments int
}

// BuildThreadBatchQuery builds the GraphQL document for the batch node
// lookup of call 2: all pull request node ids in a single nodes(ids:)
// query, each resolving to its review threads.
func BuildThreadBatchQuery(ids []string) (string, error) {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}

	var buf bytes.Buffer
	params := threadDocParams{
		IDs:      strings.Join(quoted, ", "),
		Threads:  constants.ThreadPageSize,
		Comments: constants.ThreadCommentPageSize,
	}
	if err := reviewThreadsTemplate.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute thread template: %w", err)
	}
	return buf.String(), nil
}

package classify

import (
	"testing"
	"time"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/model"
)

var checkpoint = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testItem() model.Item {
	return model.Item{
		Type:      model.ItemTypeIssue,
		NodeID:    "I_1",
		Number:    10,
		Title:     "Fix the frobnicator",
		URL:       "https://github.com/acme/widgets/issues/10",
		Repo:      model.RepoRef{Owner: "acme", Name: "widgets"},
		CreatedAt: checkpoint.Add(-time.Hour),
		UpdatedAt: checkpoint.Add(-time.Hour),
	}
}

func testPR() model.Item {
	item := testItem()
	item.Type = model.ItemTypePullRequest
	item.NodeID = "PR_1"
	item.URL = "https://github.com/acme/widgets/pull/10"
	return item
}

func TestIsNew(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{"created before checkpoint", checkpoint.Add(-time.Minute), false},
		{"created exactly at checkpoint", checkpoint, false},
		{"created after checkpoint", checkpoint.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := testItem()
			item.CreatedAt = tt.createdAt
			if got := IsNew(item, checkpoint); got != tt.want {
				t.Errorf("IsNew() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasMention(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		comments []model.Comment
		want     bool
	}{
		{"mention in body", "ping @octocat please", nil, true},
		{"mention in comment", "no mention here", []model.Comment{{Body: "cc @octocat"}}, true},
		{"no mention", "nothing to see", []model.Comment{{Body: "still nothing"}}, false},
		{"different login", "ping @hubot", nil, false},
		// Substring semantics: a login that prefixes another login
		// matches. Accepted approximation, not a bug.
		{"login prefixes another login", "thanks @octocats", nil, true},
		{"case sensitive", "ping @Octocat", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := testItem()
			item.Body = tt.body
			item.Comments = tt.comments
			if got := HasMention(item, "octocat"); got != tt.want {
				t.Errorf("HasMention() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasAssigneeActivity(t *testing.T) {
	fresh := model.Comment{Body: "update", UpdatedAt: checkpoint.Add(time.Minute)}
	stale := model.Comment{Body: "old", UpdatedAt: checkpoint.Add(-time.Minute)}

	tests := []struct {
		name      string
		assignees []string
		comments  []model.Comment
		want      bool
	}{
		{"assigned with fresh comment", []string{"octocat"}, []model.Comment{stale, fresh}, true},
		{"assigned with only stale comments", []string{"octocat"}, []model.Comment{stale}, false},
		{"assigned with no comments", []string{"octocat"}, nil, false},
		{"not assigned", []string{"hubot"}, []model.Comment{fresh}, false},
		{"comment updated exactly at checkpoint", []string{"octocat"}, []model.Comment{{UpdatedAt: checkpoint}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := testItem()
			item.Assignees = tt.assignees
			item.Comments = tt.comments
			if got := HasAssigneeActivity(item, "octocat", checkpoint); got != tt.want {
				t.Errorf("HasAssigneeActivity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasAssigneeActivityCountsSelfComments(t *testing.T) {
	item := testItem()
	item.Assignees = []string{"octocat"}
	item.Comments = []model.Comment{
		{Body: "my own note", Author: "octocat", UpdatedAt: checkpoint.Add(time.Minute)},
	}

	// The viewer's own comments are not excluded.
	if !HasAssigneeActivity(item, "octocat", checkpoint) {
		t.Error("self-authored comments should still count as activity")
	}
}

func TestNeedsThreadCheck(t *testing.T) {
	tests := []struct {
		name      string
		item      func() model.Item
		updatedAt time.Time
		want      bool
	}{
		{"pull request updated after checkpoint", testPR, checkpoint.Add(time.Minute), true},
		{"pull request updated at checkpoint", testPR, checkpoint, false},
		{"pull request updated before checkpoint", testPR, checkpoint.Add(-time.Minute), false},
		{"issue updated after checkpoint", testItem, checkpoint.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item()
			item.UpdatedAt = tt.updatedAt
			if got := NeedsThreadCheck(item, checkpoint); got != tt.want {
				t.Errorf("NeedsThreadCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThreadQualifies(t *testing.T) {
	mentionBefore := model.ThreadComment{Body: "what do you think @octocat", CreatedAt: checkpoint.Add(-time.Hour)}
	mentionAtCheckpoint := model.ThreadComment{Body: "@octocat ptal", CreatedAt: checkpoint}
	replyAfter := model.ThreadComment{Body: "done, updated", CreatedAt: checkpoint.Add(time.Hour)}
	replyBefore := model.ThreadComment{Body: "sure", CreatedAt: checkpoint.Add(-30 * time.Minute)}
	mentionAfter := model.ThreadComment{Body: "ping @octocat", CreatedAt: checkpoint.Add(time.Hour)}

	tests := []struct {
		name   string
		thread model.ReviewThread
		want   bool
	}{
		{
			name:   "old mention with fresh reply",
			thread: model.ReviewThread{Comments: []model.ThreadComment{mentionBefore, replyAfter}},
			want:   true,
		},
		{
			name:   "mention created exactly at checkpoint counts",
			thread: model.ReviewThread{Comments: []model.ThreadComment{mentionAtCheckpoint, replyAfter}},
			want:   true,
		},
		{
			name:   "old mention but no fresh reply",
			thread: model.ReviewThread{Comments: []model.ThreadComment{mentionBefore, replyBefore}},
			want:   false,
		},
		{
			name:   "mention is itself the newest comment",
			thread: model.ReviewThread{Comments: []model.ThreadComment{replyBefore, mentionAfter}},
			want:   false,
		},
		{
			name:   "resolved thread never qualifies",
			thread: model.ReviewThread{IsResolved: true, Comments: []model.ThreadComment{mentionBefore, replyAfter}},
			want:   false,
		},
		{
			name:   "empty thread",
			thread: model.ReviewThread{},
			want:   false,
		},
		{
			name:   "no mention at all",
			thread: model.ReviewThread{Comments: []model.ThreadComment{replyBefore, replyAfter}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThreadQualifies(tt.thread, "octocat", checkpoint); got != tt.want {
				t.Errorf("ThreadQualifies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyItemsNewIssue(t *testing.T) {
	item := testItem()
	item.CreatedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	item.UpdatedAt = item.CreatedAt

	c := New("octocat", checkpoint, config.DefaultNotifyFlags())
	detectedAt := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	result := c.ClassifyItems([]model.Item{item}, detectedAt)

	if len(result.Candidates) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(result.Candidates))
	}
	got := result.Candidates[0]
	if got.Kind != model.KindNew {
		t.Errorf("Kind = %q, want new", got.Kind)
	}
	if got.ID != "new:I_1" {
		t.Errorf("ID = %q, want new:I_1", got.ID)
	}
	if !got.DetectedAt.Equal(detectedAt) {
		t.Errorf("DetectedAt = %v, want %v", got.DetectedAt, detectedAt)
	}
	if len(result.ThreadChecks) != 0 {
		t.Errorf("issue should not need a thread check, got %d", len(result.ThreadChecks))
	}
}

func TestClassifyItemsKindOrder(t *testing.T) {
	// One item matching every first-pass signal at once.
	item := testPR()
	item.CreatedAt = checkpoint.Add(time.Minute)
	item.UpdatedAt = checkpoint.Add(time.Minute)
	item.Body = "needs eyes from @octocat"
	item.Assignees = []string{"octocat"}
	item.Comments = []model.Comment{{Body: "bump", UpdatedAt: checkpoint.Add(2 * time.Minute)}}

	second := testItem()
	second.NodeID = "I_2"
	second.CreatedAt = checkpoint.Add(time.Minute)

	c := New("octocat", checkpoint, config.DefaultNotifyFlags())
	result := c.ClassifyItems([]model.Item{item, second}, checkpoint)

	var kinds []model.Kind
	for _, cand := range result.Candidates {
		kinds = append(kinds, cand.Kind)
	}

	// Kind-major order: all new items, then mentions, then assignee
	// activity.
	want := []model.Kind{model.KindNew, model.KindNew, model.KindMention, model.KindAssignee}
	if len(kinds) != len(want) {
		t.Fatalf("got %d candidates %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("candidate %d kind = %q, want %q", i, kinds[i], want[i])
		}
	}

	if len(result.ThreadChecks) != 1 || result.ThreadChecks[0].NodeID != "PR_1" {
		t.Errorf("expected the pull request in ThreadChecks, got %v", result.ThreadChecks)
	}
}

func TestClassifyItemsDisabledKinds(t *testing.T) {
	item := testItem()
	item.CreatedAt = checkpoint.Add(time.Minute)
	item.Body = "cc @octocat"

	flags := config.DefaultNotifyFlags()
	flags.NewItems = false

	c := New("octocat", checkpoint, flags)
	result := c.ClassifyItems([]model.Item{item}, checkpoint)

	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.Candidates))
	}
	if result.Candidates[0].Kind != model.KindMention {
		t.Errorf("Kind = %q, want mention", result.Candidates[0].Kind)
	}
}

func TestClassifyItemsCollectsThreadChecksWhenThreadsDisabled(t *testing.T) {
	pr := testPR()
	pr.UpdatedAt = checkpoint.Add(time.Minute)

	flags := config.DefaultNotifyFlags()
	flags.MentionThreads = false

	// The thread switch gates the fetch in the engine, not the signal.
	c := New("octocat", checkpoint, flags)
	result := c.ClassifyItems([]model.Item{pr}, checkpoint)

	if len(result.ThreadChecks) != 1 {
		t.Errorf("expected 1 thread check, got %d", len(result.ThreadChecks))
	}
}

func TestClassifyThreads(t *testing.T) {
	pr := testPR()
	other := testPR()
	other.NodeID = "PR_2"

	qualifying := model.ReviewThread{Comments: []model.ThreadComment{
		{Body: "wdyt @octocat", CreatedAt: checkpoint.Add(-time.Hour)},
		{Body: "fixed", CreatedAt: checkpoint.Add(time.Hour)},
	}}
	stale := model.ReviewThread{Comments: []model.ThreadComment{
		{Body: "wdyt @octocat", CreatedAt: checkpoint.Add(-time.Hour)},
	}}

	threads := map[string][]model.ReviewThread{
		// Two qualifying threads still collapse to one candidate.
		"PR_1": {qualifying, qualifying},
		"PR_2": {stale},
	}

	c := New("octocat", checkpoint, config.DefaultNotifyFlags())
	candidates := c.ClassifyThreads([]model.Item{pr, other}, threads, checkpoint)

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ID != "thread:PR_1" {
		t.Errorf("ID = %q, want thread:PR_1", candidates[0].ID)
	}
	if candidates[0].Kind != model.KindThread {
		t.Errorf("Kind = %q, want thread", candidates[0].Kind)
	}
}

func TestClassifyThreadsMissingPR(t *testing.T) {
	pr := testPR()

	c := New("octocat", checkpoint, config.DefaultNotifyFlags())
	candidates := c.ClassifyThreads([]model.Item{pr}, map[string][]model.ReviewThread{}, checkpoint)

	if len(candidates) != 0 {
		t.Errorf("expected no candidates for a missing pull request, got %d", len(candidates))
	}
}

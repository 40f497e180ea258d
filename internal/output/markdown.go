package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/vigil/internal/format"
	"github.com/spiffcs/vigil/internal/model"
)

// MarkdownFormatter formats output as Markdown, suitable for pasting
// into an issue or a standup note.
type MarkdownFormatter struct{}

// Format outputs stored notifications as Markdown grouped by kind
func (f *MarkdownFormatter) Format(notifs []model.StoredNotification, w io.Writer) error {
	if len(notifs) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return nil
	}

	fmt.Fprintln(w, "# GitHub Watch Report")
	fmt.Fprintf(w, "\n*Generated: %s*\n\n", time.Now().Format("2006-01-02 15:04"))

	groups := make(map[model.Kind][]model.StoredNotification)
	for _, n := range notifs {
		groups[n.Kind] = append(groups[n.Kind], n)
	}

	now := time.Now()
	for _, k := range model.AllKinds {
		group := groups[k]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "## %s %s (%d)\n\n", format.KindIcon(k), kindHeading(k), len(group))
		for _, n := range group {
			fmt.Fprintf(w, "- [%s](%s) `%s#%d`, detected %s ago\n",
				n.Title, n.URL, n.Repo, n.Number, formatDuration(now.Sub(n.DetectedAt)))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// FormatSummary outputs a summary as Markdown
func (f *MarkdownFormatter) FormatSummary(summary Summary, w io.Writer) error {
	fmt.Fprintln(w, "# Notification Summary")
	fmt.Fprintf(w, "\n*Total: %d notifications, badge %d*\n\n", summary.Total, summary.Badge)

	if summary.Total == 0 {
		return nil
	}

	fmt.Fprintln(w, "| Kind | Count |")
	fmt.Fprintln(w, "|------|-------|")
	for _, k := range model.AllKinds {
		if count := summary.ByKind[k]; count > 0 {
			fmt.Fprintf(w, "| %s %s | %d |\n", format.KindIcon(k), kindHeading(k), count)
		}
	}

	return nil
}

func kindHeading(k model.Kind) string {
	switch k {
	case model.KindNew:
		return "New items"
	case model.KindMention:
		return "Mentions"
	case model.KindThread:
		return "Thread replies"
	case model.KindAssignee:
		return "Assignee activity"
	default:
		return string(k)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

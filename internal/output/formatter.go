package output

import (
	"io"

	"github.com/spiffcs/vigil/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(notifs []model.StoredNotification, w io.Writer) error
	FormatSummary(summary Summary, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Summary aggregates the stored notification list for footer and status
// output.
type Summary struct {
	Total  int                `json:"total"`
	Badge  int                `json:"badge"`
	ByKind map[model.Kind]int `json:"byKind"`
}

// Summarize counts the list per kind alongside the badge value.
func Summarize(notifs []model.StoredNotification, badge int) Summary {
	s := Summary{
		Total:  len(notifs),
		Badge:  badge,
		ByKind: make(map[model.Kind]int),
	}
	for _, n := range notifs {
		s.ByKind[n.Kind]++
	}
	return s
}

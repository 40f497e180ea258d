package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/vigil/internal/format"
	"github.com/spiffcs/vigil/internal/model"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Format outputs stored notifications as a table
func (f *TableFormatter) Format(notifs []model.StoredNotification, w io.Writer) error {
	if len(notifs) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return nil
	}

	// Column widths
	const (
		colKind  = 8
		colType  = 4
		colRepo  = 26
		colTitle = 44
		colAge   = 5
	)

	// Header
	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
		colKind, "Kind",
		colType, "Type",
		colRepo, "Repository",
		colTitle, "Title",
		"Age")
	fmt.Fprintln(w, strings.Repeat("-", colKind+colType+colRepo+colTitle+colAge+8))

	now := time.Now()
	for _, n := range notifs {
		kindPlain := string(n.Kind)
		kindStr := format.PadRight(colorKind(n.Kind), len(kindPlain), colKind)

		// Build title with the kind glyph in front so scanning a long
		// list stays possible without reading the kind column.
		title := format.KindIcon(n.Kind) + " " + n.Title
		title, visibleTitleLen := format.TruncateToWidth(title, colTitle)

		repo := fmt.Sprintf("%s#%d", n.Repo, n.Number)
		repo, repoWidth := format.TruncateToWidth(repo, colRepo)

		linkedTitle := hyperlink(title, n.URL)
		linkedTitle = format.PadRight(linkedTitle, visibleTitleLen, colTitle)

		age := format.FormatAge(now.Sub(n.DetectedAt))

		fmt.Fprintf(w, "%s  %-*s  %s  %s  %s\n",
			kindStr,
			colType, format.TypeLabel(n.Type),
			format.PadRight(repo, repoWidth, colRepo),
			linkedTitle,
			age,
		)
	}

	printFooterSummary(notifs, w)

	return nil
}

// printFooterSummary prints per-kind counts under the table
func printFooterSummary(notifs []model.StoredNotification, w io.Writer) {
	counts := make(map[model.Kind]int)
	for _, n := range notifs {
		counts[n.Kind]++
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))
	for _, k := range model.AllKinds {
		if c := counts[k]; c > 0 {
			fmt.Fprintf(w, "  %s %s: %d\n", format.KindIcon(k), colorKind(k), c)
		}
	}
}

// FormatSummary outputs store statistics
func (f *TableFormatter) FormatSummary(summary Summary, w io.Writer) error {
	fmt.Fprintf(w, "Total notifications: %d\n", summary.Total)
	fmt.Fprintf(w, "Unread badge: %d\n", summary.Badge)

	if summary.Total == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nBy kind:")
	for _, k := range model.AllKinds {
		if c := summary.ByKind[k]; c > 0 {
			fmt.Fprintf(w, "  %s %s: %d\n", format.KindIcon(k), k.Display(), c)
		}
	}

	return nil
}

func colorKind(k model.Kind) string {
	switch k {
	case model.KindMention:
		return color.RedString(string(k))
	case model.KindAssignee:
		return color.YellowString(string(k))
	case model.KindThread:
		return color.CyanString(string(k))
	case model.KindNew:
		return color.GreenString(string(k))
	default:
		return color.WhiteString(string(k))
	}
}

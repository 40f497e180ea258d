package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/format"
	"github.com/spiffcs/vigil/internal/model"
)

// Column widths. The title column takes whatever width remains.
const (
	colKind = 8
	colType = 4
	colRepo = 24
	colAge  = 5
)

// tableChromeLines is the table header plus its separator line.
const tableChromeLines = 2

// titleWidth returns the width left over for the title column.
func (m ListModel) titleWidth() int {
	w := m.windowWidth - 2 - colKind - 2 - colType - 2 - colRepo - 2 - 2 - colAge
	if w < 20 {
		return 20
	}
	return w
}

// renderListView renders the complete list view
func renderListView(m ListModel) string {
	var b strings.Builder

	availableHeight := m.windowHeight - constants.HeaderLines - constants.FooterLines - tableChromeLines
	if availableHeight < 1 {
		availableHeight = 1
	}

	b.WriteString(renderTitleBar(m))
	b.WriteString("\n\n")

	if len(m.notifs) == 0 {
		b.WriteString(listEmptyStyle.Render("All caught up! Nothing needs your attention."))
		b.WriteString("\n\n")
		b.WriteString(renderHelp())
		if m.statusMsg != "" {
			b.WriteString("\n")
			b.WriteString(renderStatus(m))
		}
		return b.String()
	}

	titleWidth := m.titleWidth()

	b.WriteString(renderHeader(titleWidth))
	b.WriteString("\n")
	b.WriteString(renderSeparator(titleWidth))
	b.WriteString("\n")

	start, end := calculateScrollWindow(m.cursor, len(m.notifs), availableHeight)
	now := time.Now()
	for i := start; i < end; i++ {
		b.WriteString(renderRow(m.notifs[i], i == m.cursor, now, titleWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelp())

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(renderStatus(m))
	}

	return b.String()
}

// renderTitleBar renders the application name, the unread badge and the
// refresh spinner.
func renderTitleBar(m ListModel) string {
	bar := titleStyle.Render(" " + constants.AppName + " ")

	if m.badge > 0 {
		bar += " " + badgeStyle.Render(fmt.Sprintf(" %d unread ", m.badge))
	}

	if m.refreshing {
		bar += "  " + m.spin.View() + listStatusStyle.Render("refreshing")
	}

	return bar
}

// renderHeader renders the table header
func renderHeader(titleWidth int) string {
	return listHeaderStyle.Render(fmt.Sprintf(
		"  %-*s  %-*s  %-*s  %-*s  %s",
		colKind, "Kind",
		colType, "Type",
		colRepo, "Repository",
		titleWidth, "Title",
		"Age"))
}

// renderSeparator renders the line under the header
func renderSeparator(titleWidth int) string {
	width := 2 + colKind + 2 + colType + 2 + colRepo + 2 + titleWidth + 2 + colAge
	return listSeparatorStyle.Render(strings.Repeat("─", width))
}

// renderRow renders a single notification row
func renderRow(n model.StoredNotification, selected bool, now time.Time, titleWidth int) string {
	kindCell := format.PadRight(string(n.Kind), len(string(n.Kind)), colKind)

	typeCell := fmt.Sprintf("%-*s", colType, format.TypeLabel(n.Type))

	repo := fmt.Sprintf("%s#%d", n.Repo, n.Number)
	repo, repoVis := format.TruncateToWidth(repo, colRepo)
	repoCell := format.PadRight(repo, repoVis, colRepo)

	// Truncate the title to the space left after the icon column.
	title, titleVis := format.TruncateToWidth(n.Title, titleWidth-format.IconWidth)
	title = format.KindIcon(n.Kind) + " " + title
	titleCell := format.PadRight(title, format.IconWidth+titleVis, titleWidth)

	ageCell := format.FormatAge(now.Sub(n.DetectedAt))

	if selected {
		line := fmt.Sprintf("▸ %s  %s  %s  %s  %s",
			kindCell, typeCell, repoCell, titleCell, ageCell)
		return listSelectedStyle.Render(line)
	}

	return fmt.Sprintf("  %s  %s  %s  %s  %s",
		applyStyle(kindStyle(n.Kind), kindCell, false),
		applyStyle(typeStyleFor(n.Type), typeCell, false),
		repoCell,
		titleCell,
		listHelpStyle.Render(ageCell))
}

// typeStyleFor returns the style for the type column.
func typeStyleFor(t model.ItemType) lipgloss.Style {
	if t == model.ItemTypePullRequest {
		return listTypePRStyle
	}
	return listTypeISSStyle
}

// renderStatus renders the transient status line.
func renderStatus(m ListModel) string {
	if m.statusErr {
		return listErrorStyle.Render(m.statusMsg)
	}
	return listStatusStyle.Render(m.statusMsg)
}

// renderHelp renders the key binding summary
func renderHelp() string {
	return listHelpStyle.Render("j/k: nav   g/G: top/bottom   enter: open   a: ack   r: refresh   q: quit")
}

// calculateScrollWindow keeps the cursor visible inside the viewport.
func calculateScrollWindow(cursor, total, viewHeight int) (start, end int) {
	if total <= viewHeight {
		return 0, total
	}

	start = cursor - viewHeight/2
	if start < 0 {
		start = 0
	}

	end = start + viewHeight
	if end > total {
		end = total
		start = end - viewHeight
		if start < 0 {
			start = 0
		}
	}

	return start, end
}

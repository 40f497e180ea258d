package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spiffcs/vigil/internal/model"
)

// List view styles - balanced palette (vibrant but not harsh)
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(lipgloss.Color("#60A5FA"))

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#EF4444"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CBD5E1"))

	listSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#475569"))

	listSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#334155")).
				Foreground(lipgloss.Color("#F1F5F9")).
				Bold(true)

	listHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	listStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	listErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	listEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	// Kind column styles
	kindNewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22C55E"))

	kindMentionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF4444"))

	kindThreadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#93C5FD"))

	kindAssigneeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F59E0B"))

	// Type column styles
	listTypePRStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA")) // Blue for PRs

	listTypeISSStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FBBF24")) // Yellow/amber for issues
)

// kindStyle returns the style for a notification kind column entry.
func kindStyle(k model.Kind) lipgloss.Style {
	switch k {
	case model.KindMention:
		return kindMentionStyle
	case model.KindThread:
		return kindThreadStyle
	case model.KindAssignee:
		return kindAssigneeStyle
	default:
		return kindNewStyle
	}
}

// applyStyle renders text with the given style when not selected.
// When selected, returns plain text to avoid ANSI reset codes that would
// interrupt the selected row's background highlight.
func applyStyle(s lipgloss.Style, text string, selected bool) string {
	if selected {
		return text
	}
	return s.Render(text)
}

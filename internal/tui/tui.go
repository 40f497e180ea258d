// Package tui renders the interactive notification list.
package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/store"
)

// RunListUI starts the interactive notification list and blocks until the
// user quits. refresh may be nil, in which case the r key does nothing.
func RunListUI(notifs []model.StoredNotification, badge int, notifStore *store.Store, refresh RefreshFunc) error {
	m := NewListModel(notifs, badge, notifStore, refresh)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ShouldUseTUI returns true if the TUI should be used based on environment.
func ShouldUseTUI() bool {
	// Check if stdout is a TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	// Check for CI environment variables
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"GITLAB_CI",
		"BUILDKITE",
	}

	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}

	return true
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spiffcs/vigil/internal/browser"
	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/store"
)

// RefreshFunc runs one watch cycle and returns the refreshed notification
// list and badge. It is invoked from a Bubble Tea command; the model never
// starts a second refresh while one is in flight.
type RefreshFunc func() ([]model.StoredNotification, int, error)

// ListModel is the Bubble Tea model for the interactive notification list
type ListModel struct {
	notifs []model.StoredNotification
	badge  int
	cursor int

	notifStore *store.Store
	refresh    RefreshFunc

	spin       spinner.Model
	refreshing bool

	statusMsg string
	statusErr bool
	quitting  bool

	windowWidth  int
	windowHeight int
}

// NewListModel creates a new list model
func NewListModel(notifs []model.StoredNotification, badge int, notifStore *store.Store, refresh RefreshFunc) ListModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return ListModel{
		notifs:       notifs,
		badge:        badge,
		notifStore:   notifStore,
		refresh:      refresh,
		spin:         s,
		windowWidth:  80,
		windowHeight: 24,
	}
}

// refreshDoneMsg carries the result of a background refresh cycle.
type refreshDoneMsg struct {
	notifs []model.StoredNotification
	badge  int
	err    error
}

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// Init implements tea.Model
func (m ListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.statusMsg = "Refresh failed: " + msg.err.Error()
			m.statusErr = true
		} else {
			m.notifs = msg.notifs
			m.badge = msg.badge
			if m.cursor >= len(m.notifs) && m.cursor > 0 {
				m.cursor = len(m.notifs) - 1
			}
			m.statusMsg = "Refreshed"
			m.statusErr = false
		}
		return m, clearStatusAfter(3 * time.Second)

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input
func (m ListModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.notifs)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "g", "home":
		m.cursor = 0
		return m, nil

	case "G", "end":
		if len(m.notifs) > 0 {
			m.cursor = len(m.notifs) - 1
		}
		return m, nil

	case "a":
		return m.acknowledge(false)

	case "enter":
		return m.acknowledge(true)

	case "r":
		return m.startRefresh()
	}

	return m, nil
}

// acknowledge clears the selected notification, optionally opening its
// URL in the browser first.
func (m ListModel) acknowledge(open bool) (tea.Model, tea.Cmd) {
	if len(m.notifs) == 0 {
		return m, nil
	}

	n := m.notifs[m.cursor]

	if open && n.URL != "" {
		if err := browser.Open(n.URL); err != nil {
			m.statusMsg = "Browser error: " + err.Error()
			m.statusErr = true
			return m, clearStatusAfter(3 * time.Second)
		}
	}

	if err := m.notifStore.Acknowledge(n.ID); err != nil {
		m.statusMsg = "Error: " + err.Error()
		m.statusErr = true
		return m, clearStatusAfter(3 * time.Second)
	}

	m.notifs = append(m.notifs[:m.cursor], m.notifs[m.cursor+1:]...)
	if m.cursor >= len(m.notifs) && m.cursor > 0 {
		m.cursor = len(m.notifs) - 1
	}
	m.badge = m.notifStore.Badge()

	if open {
		m.statusMsg = "Opened and acknowledged"
	} else {
		m.statusMsg = "Acknowledged"
	}
	m.statusErr = false

	return m, clearStatusAfter(2 * time.Second)
}

// startRefresh kicks off one watch cycle in the background.
func (m ListModel) startRefresh() (tea.Model, tea.Cmd) {
	if m.refreshing || m.refresh == nil {
		return m, nil
	}

	m.refreshing = true
	m.statusMsg = ""
	m.statusErr = false

	refresh := m.refresh
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		notifs, badge, err := refresh()
		return refreshDoneMsg{notifs: notifs, badge: badge, err: err}
	})
}

// View implements tea.Model
func (m ListModel) View() string {
	if m.quitting {
		return ""
	}

	return renderListView(m)
}

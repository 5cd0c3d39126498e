// Package tui provides the BubbleTea-based live notification viewer.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/pewbar/internal/notifier"
)

// Styles for the viewer.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	appStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// eventMsg carries one captured notification into the update loop.
type eventMsg notifier.Event

// tickMsg refreshes the relative timestamps.
type tickMsg time.Time

// Model is the live viewer model.
type Model struct {
	events <-chan notifier.Event

	received []notifier.Event // newest first
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	width    int
	height   int
	showHelp bool
}

// New creates a viewer consuming captured notifications from events.
func New(events <-chan notifier.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		events:  events,
		spinner: sp,
		help:    help.New(),
		keys:    DefaultKeyMap(),
	}
}

// waitForEvent blocks on the event channel as a tea command.
func waitForEvent(events <-chan notifier.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// tick schedules a relative-time refresh.
func tick() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events), tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.received = nil
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
		return m, nil

	case eventMsg:
		m.received = append([]notifier.Event{notifier.Event(msg)}, m.received...)
		return m, waitForEvent(m.events)

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pewbar"))
	b.WriteString(" ")
	b.WriteString(timeStyle.Render("live notifications"))
	b.WriteString("\n\n")

	if len(m.received) == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(waitingStyle.Render(" listening for notifications..."))
		b.WriteString("\n")
	} else {
		max := m.visibleLines()
		for i, ev := range m.received {
			if i >= max {
				b.WriteString(timeStyle.Render(fmt.Sprintf("  ... %d more", len(m.received)-max)))
				b.WriteString("\n")
				break
			}
			b.WriteString(m.renderEvent(ev))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

// renderEvent formats one captured notification line.
func (m Model) renderEvent(ev notifier.Event) string {
	parts := []string{
		timeStyle.Render(humanize.Time(ev.Time)),
	}
	if ev.AppName != "" {
		parts = append(parts, appStyle.Render(ev.AppName))
	}
	parts = append(parts, summaryStyle.Render(ev.Summary))
	if ev.Body != "" {
		parts = append(parts, bodyStyle.Render(ev.Body))
	}
	return strings.Join(parts, "  ")
}

// visibleLines bounds the event list to the terminal height.
func (m Model) visibleLines() int {
	if m.height <= 0 {
		return 20
	}
	// title, blank, help, blank
	lines := m.height - 4
	if lines < 1 {
		lines = 1
	}
	return lines
}

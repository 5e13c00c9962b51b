package tui

import "github.com/charmbracelet/lipgloss"

// Row statuses.
const (
	StatusPending = "pending"
	StatusActive  = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles the title line above the table.
	TitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// WarnStyle styles warnings printed after the table.
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	statusStyles = map[string]lipgloss.Style{
		StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"degraded":    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skipped":     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/models"
)

const (
	colorAccent = lipgloss.Color("42")
	colorMuted  = lipgloss.Color("244")
	colorAmber  = lipgloss.Color("214")
	colorRed    = lipgloss.Color("203")
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted)
	activeTabStyle = tabStyle.Foreground(colorAccent).Underline(true).Bold(true)

	bannerStyle = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	dangerStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted).Width(26)
)

// outcomeStyle colors a completion status in the stats pane.
func outcomeStyle(s models.CompletionStatus) lipgloss.Style {
	switch s {
	case models.StatusSucceeded:
		return lipgloss.NewStyle().Foreground(colorAccent)
	case models.StatusFailed:
		return lipgloss.NewStyle().Foreground(colorRed)
	default:
		return lipgloss.NewStyle().Foreground(colorAmber)
	}
}

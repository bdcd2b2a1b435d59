package ui

import "github.com/charmbracelet/lipgloss"

// Styles rebuilt whenever the theme changes.
var (
	TitleStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	AccentStyle   lipgloss.Style
	MutedStyle    lipgloss.Style
	ErrorStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	HelpStyle     lipgloss.Style
	PanelStyle    lipgloss.Style
)

func init() { refreshStyles() }

func refreshStyles() {
	t := current
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Title)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent)
	MutedStyle = lipgloss.NewStyle().Faint(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	HelpStyle = lipgloss.NewStyle().Faint(true)
	PanelStyle = lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.Muted).
		Padding(0, 1)
}

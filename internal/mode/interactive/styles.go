// ABOUTME: Lipgloss palette for the compose TUI
// ABOUTME: Basic ANSI colors only so the palette follows the terminal theme

package interactive

import "github.com/charmbracelet/lipgloss"

// Styles is the compose screen palette.
type Styles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	Dim       lipgloss.Style
	Local     lipgloss.Style
	Auto      lipgloss.Style
	Emoji     lipgloss.Style
	Selection lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Local:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Auto:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Italic(true),
		Emoji:     lipgloss.NewStyle(),
		Selection: lipgloss.NewStyle().Reverse(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// ABOUTME: Applies the PI_POST_THEME background override to lipgloss at startup
// ABOUTME: bubbletea's own init queries the terminal first; this only replaces the answer

package termfix

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// EnvTheme selects "light" or "dark" styling. Unset keeps the detected value.
const EnvTheme = "PI_POST_THEME"

// bubbletea's init calls lipgloss.HasDarkBackground, which sends an OSC 11
// query and waits up to 5s for a reply. Packages without a dependency on
// each other initialize in import-path order, so that query always runs
// before this init. A terminal that never answers stalls startup; setting
// TERM to dumb, screen* or tmux* makes termenv skip the query.
func init() {
	if dark, ok := Theme(os.Getenv(EnvTheme)); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

// Theme parses a theme name. ok is false for anything but "light" or "dark".
func Theme(name string) (dark, ok bool) {
	switch name {
	case "dark":
		return true, true
	case "light":
		return false, true
	}
	return false, false
}

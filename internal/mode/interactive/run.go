// ABOUTME: Entry point for the compose TUI
// ABOUTME: Creates the tea.Program on stderr and blocks until the user exits

package interactive

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/pi-post-go/internal/compose"
)

// Run starts the compose screen for widget. Blocks until the user exits.
func Run(ctx context.Context, widget *compose.Widget, state *State, opts ...Option) error {
	m := New(ctx, widget, state, opts...)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}

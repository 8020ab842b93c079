package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI in the alternate screen and blocks until exit.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.section = (m.section + 1) % sectionCount
			return m, nil
		case "shift+tab", "left", "h":
			m.section = (m.section + sectionCount - 1) % sectionCount
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

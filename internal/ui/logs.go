package ui

import (
	"strings"
)

// logContent colors the in-app log by its level prefix.
func (m Model) logContent() string {
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.store.Logs))
	for _, line := range m.store.Logs {
		switch {
		case strings.HasPrefix(line, "[ALERT]"):
			lines = append(lines, styles.SuccessText.Render(line))
		case strings.HasPrefix(line, "[WARN]"):
			lines = append(lines, styles.WarningText.Render(line))
		case strings.HasPrefix(line, "[INFO]"):
			lines = append(lines, styles.Text.Render(line))
		default:
			lines = append(lines, styles.MutedText.Render(line))
		}
	}
	if len(lines) == 0 {
		return styles.MutedText.Render("No log messages yet")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	return styles.FocusPane.
		Width(max(m.width-2, 10)).
		Height(max(m.height-4, 1)).
		Render(m.logView.View())
}

package ui

import (
	"fmt"
	"strings"
)

func (m Model) renderUpcoming() string {
	styles := m.theme.Styles()
	s := m.store
	height := max(m.height-4, 3)
	width := max(m.width-4, 20)

	fixtures := s.VisibleUpcoming()
	var lines []string
	switch {
	case len(fixtures) == 0 && s.UpcomingFetchedAt.IsZero():
		lines = append(lines, styles.MutedText.Render("Loading fixtures..."))
	case len(fixtures) == 0:
		lines = append(lines, styles.MutedText.Render(fmt.Sprintf("No upcoming %s fixtures in the window", s.League)))
	default:
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%-16s %-10s %-22s    %-22s", "Kickoff (UTC)", "Round", "Home", "Away")))
		start := windowStart(m.upcomingSelected, height-1)
		for i := start; i < len(fixtures) && len(lines) < height; i++ {
			u := fixtures[i]
			line := fmt.Sprintf("%-16s %-10s %-22s vs %-22s",
				strings.Replace(u.Kickoff, "T", " ", 1), truncate(u.Round, 10), truncate(u.Home, 22), truncate(u.Away, 22))
			line = truncate(line, width)
			if i == m.upcomingSelected {
				line = styles.Selected.Render(line)
			}
			lines = append(lines, line)
		}
	}
	if !s.UpcomingFetchedAt.IsZero() {
		lines = append(lines, "", styles.FaintText.Render("Updated "+s.UpcomingFetchedAt.Format("15:04:05")))
	}
	return styles.FocusPane.Width(max(m.width-2, 10)).Height(max(m.height-4, 1)).Render(strings.Join(lines, "\n"))
}

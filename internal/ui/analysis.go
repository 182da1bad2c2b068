package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pitchside/internal/state"
)

func (m Model) renderAnalysis() string {
	styles := m.theme.Styles()
	listW, listH, detailW, detailH := m.paneSizes()
	s := m.store

	var left string
	switch m.pane {
	case paneTeams:
		left = m.teamList(max(listH-2, 1))
	default:
		left = m.squadList(max(listH-2, 1))
	}

	var right string
	switch m.pane {
	case panePlayer:
		right = m.detail.View()
	default:
		right = m.analysisSummary()
	}
	if m.pane == paneTeams && s.SquadTeamID != 0 && len(s.Squad) > 0 {
		right += "\n\n" + styles.FaintText.Render(fmt.Sprintf("Last squad: %s (%d players)", s.SquadTeam, len(s.Squad)))
	}

	leftPane := styles.FocusPane.Width(max(listW-2, 10)).Height(max(listH-2, 1)).Render(left)
	rightPane := styles.Pane.Width(max(detailW-2, 10)).Height(max(detailH-2, 1)).Render(right)
	if m.width < LayoutCompactWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (m Model) teamList(height int) string {
	styles := m.theme.Styles()
	s := m.store
	if len(s.Analysis) == 0 {
		if s.AnalysisLoading {
			return styles.MutedText.Render("Loading teams...")
		}
		return styles.MutedText.Render("No teams loaded (r to retry)")
	}
	lines := []string{styles.FaintText.Render(fmt.Sprintf("%3s  %-26s %4s", "#", "Team", "Pts"))}
	start := windowStart(m.teamSelected, height-1)
	for i := start; i < len(s.Analysis) && len(lines) < height; i++ {
		t := s.Analysis[i]
		rank := "-"
		if t.Rank > 0 {
			rank = fmt.Sprint(t.Rank)
		}
		line := fmt.Sprintf("%3s  %-26s %4d", rank, truncate(t.Name, 26), t.Points)
		if i == m.teamSelected {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) squadList(height int) string {
	styles := m.theme.Styles()
	s := m.store
	title := styles.AccentText.Bold(true).Render(s.SquadTeam)
	if s.SquadLoading {
		return title + "\n" + styles.MutedText.Render("Loading squad...")
	}
	if len(s.Squad) == 0 {
		return title + "\n" + styles.MutedText.Render("No squad data")
	}
	lines := []string{title}
	start := windowStart(m.squadSelected, height-1)
	for i := start; i < len(s.Squad) && len(lines) < height; i++ {
		p := s.Squad[i]
		mark := " "
		if _, ok := s.Players[p.ID]; ok {
			mark = "•"
		}
		line := fmt.Sprintf("%s %3s %-24s %-12s", mark, shirt(p.ShirtNumber), truncate(p.Name, 24), truncate(p.Role, 12))
		if i == m.squadSelected && m.pane == paneSquad {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) analysisSummary() string {
	styles := m.theme.Styles()
	s := m.store
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(s.League.String() + " analysis"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Teams     %d\n", len(s.Analysis)))
	b.WriteString(fmt.Sprintf("Squads    %d cached\n", len(s.Squads)))
	b.WriteString(fmt.Sprintf("Players   %d cached\n", len(s.Players)))
	b.WriteString(fmt.Sprintf("Rankings  %d rows\n", len(s.Rankings)))
	if !s.AnalysisFetchedAt.IsZero() {
		b.WriteString(styles.FaintText.Render("Fetched   "+s.AnalysisFetchedAt.Format("15:04:05")) + "\n")
	}
	if msg := s.RankingsProgress.Message; msg != "" {
		b.WriteString("\n" + styles.InfoText.Render(msg) + "\n")
	}
	if e := s.Export; e.Path != "" || e.Active {
		b.WriteString("\n")
		switch {
		case e.Active:
			b.WriteString(styles.InfoText.Render(fmt.Sprintf("Export %d/%d %s", e.Progress.Current, e.Progress.Total, e.Progress.Message)))
		case e.Err != "":
			b.WriteString(styles.DangerText.Render("Export failed: " + e.Err))
		default:
			b.WriteString(styles.SuccessText.Render("Exported " + e.Path))
		}
	}
	return b.String()
}

// renderPlayer renders a player's season statistics.
func renderPlayer(p *state.PlayerDetail, loading bool, styles Styles) string {
	if p == nil {
		return styles.MutedText.Render("No player selected")
	}
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.Name))
	if p.Team != "" || p.Position != "" {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  %s %s", p.Team, p.Position)))
	}
	b.WriteString("\n")
	if loading {
		b.WriteString(styles.MutedText.Render("Fetching latest stats...") + "\n")
	}
	if p.IsStub() {
		if !loading {
			b.WriteString(styles.MutedText.Render("No statistics available"))
		}
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("\n")
	for _, st := range p.Stats {
		line := fmt.Sprintf("%-28s %8s", truncate(st.Title, 28), st.Total)
		if st.Per90 != "" {
			line += styles.FaintText.Render(fmt.Sprintf("  %s/90", st.Per90))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRankings() string {
	styles := m.theme.Styles()
	s := m.store
	height := max(m.height-4, 3)
	width := max(m.width-4, 20)

	var lines []string
	status := s.RankingsProgress.Message
	if s.RankingsLoading {
		status = fmt.Sprintf("%s (%d/%d)", status, s.RankingsProgress.Current, s.RankingsProgress.Total)
	}
	if status != "" {
		lines = append(lines, styles.InfoText.Render(truncate(status, width)))
	}

	switch {
	case len(s.Analysis) == 0:
		lines = append(lines, styles.MutedText.Render("Rankings need the team list first"))
	case len(s.Rankings) == 0:
		lines = append(lines, styles.MutedText.Render("No ranked players yet (w warms the cache)"))
	default:
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%-3s %-24s %-18s %7s %7s", "Pos", "Player", "Team", "Attack", "Defense")))
		start := windowStart(s.RankingsSelected, height-len(lines))
		for i := start; i < len(s.Rankings) && len(lines) < height; i++ {
			r := s.Rankings[i]
			line := fmt.Sprintf("%-3s %-24s %-18s %7s %7s",
				r.Role.String(), truncate(r.PlayerName, 24), truncate(r.TeamName, 18),
				score(r.AttackScore), score(r.DefenseScore))
			if i == s.RankingsSelected {
				line = styles.Selected.Render(line)
			}
			lines = append(lines, line)
		}
	}

	return styles.FocusPane.Width(max(m.width-2, 10)).Height(max(m.height-4, 1)).Render(strings.Join(lines, "\n"))
}

// windowStart returns the first row to draw so selected stays visible.
func windowStart(selected, rows int) int {
	if rows <= 0 || selected < rows {
		return 0
	}
	return selected - rows + 1
}

func shirt(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprint(n)
}

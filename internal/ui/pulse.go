package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pitchside/internal/state"
)

// paneSizes returns the outer sizes of the list and detail panes. In
// compact layouts the panes stack and share the height.
func (m Model) paneSizes() (listW, listH, detailW, detailH int) {
	height := max(m.height-2, 6)
	if m.width < LayoutCompactWidth {
		listH = height / 2
		return m.width, listH, m.width, height - listH
	}
	listW = m.width * 11 / 20
	return listW, height, m.width - listW, height
}

// resizeViewports fits the scrollable panes to the terminal.
func (m *Model) resizeViewports() {
	_, _, detailW, detailH := m.paneSizes()
	m.detail.Width = max(detailW-4, 10)
	m.detail.Height = max(detailH-2, 3)
	m.logView.Width = max(m.width-4, 10)
	m.logView.Height = max(m.height-4, 3)
}

// syncViewports refreshes the scrollable content from the store.
func (m *Model) syncViewports() {
	m.detail.SetContent(m.detailContent())

	follow := m.logView.AtBottom()
	m.logView.SetContent(m.logContent())
	if follow {
		m.logView.GotoBottom()
	}
}

func (m Model) detailContent() string {
	styles := m.theme.Styles()
	if m.view == ViewAnalysis && m.pane == panePlayer {
		return renderPlayer(m.store.Player, m.store.PlayerLoading, styles)
	}
	match, ok := m.store.SelectedMatch()
	if !ok {
		return styles.MutedText.Render("No match selected")
	}
	detail, hasDetail := m.store.Details[match.ID]
	pre := prematchInfo{locked: m.store.PrematchLocked[match.ID]}
	pre.win, pre.ok = m.store.PrematchWin[match.ID]
	return renderMatchDetail(match, detail, hasDetail, m.store.WinHistory[match.ID], pre, styles)
}

func (m Model) renderPulse() string {
	styles := m.theme.Styles()
	listW, listH, detailW, detailH := m.paneSizes()

	list := styles.FocusPane.
		Width(max(listW-2, 10)).
		Height(max(listH-2, 1)).
		Render(m.matchTable(max(listW-4, 10), max(listH-2, 1)))
	detail := styles.Pane.
		Width(max(detailW-2, 10)).
		Height(max(detailH-2, 1)).
		Render(m.detail.View())

	if m.width < LayoutCompactWidth {
		return lipgloss.JoinVertical(lipgloss.Left, list, detail)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// matchTable renders the visible matches, scrolled to keep the selection
// on screen.
func (m Model) matchTable(width, height int) string {
	styles := m.theme.Styles()
	matches := m.store.VisibleMatches()
	if len(matches) == 0 {
		return styles.MutedText.Render(fmt.Sprintf("No %s matches right now (p for a demo match)", m.store.League))
	}

	wide := m.width >= LayoutWideWidth
	start := 0
	if rows := height - 1; rows > 0 && m.store.Selected >= rows {
		start = m.store.Selected - rows + 1
	}

	lines := []string{styles.FaintText.Render(matchHeader(wide))}
	for i := start; i < len(matches) && len(lines) < height; i++ {
		line := padRight(truncate(matchRow(matches[i], wide), width), width)
		switch {
		case i == m.store.Selected:
			line = styles.Selected.Render(line)
		case matches[i].Live:
			line = styles.Text.Render(line)
		default:
			line = styles.MutedText.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func matchHeader(wide bool) string {
	h := fmt.Sprintf("%-4s %-5s %-5s %-5s  %4s %4s %4s", "Min", "Home", "Score", "Away", "H", "D", "A")
	if wide {
		h += fmt.Sprintf("  %5s  %-5s %s", "Δ", "Model", "League")
	}
	return h
}

func matchRow(m state.Match, wide bool) string {
	row := fmt.Sprintf("%-4s %-5s %2d-%-2d %-5s  %s %s %s",
		minuteLabel(m), truncate(m.Home, 5), m.ScoreHome, m.ScoreAway, truncate(m.Away, 5),
		pct(m.Win.Home), pct(m.Win.Draw), pct(m.Win.Away))
	if wide {
		row += fmt.Sprintf("  %5s  %-5s %s", signedPct(m.Win.DeltaHome), m.Win.Quality, m.LeagueName)
	}
	return row
}

// prematchInfo is the pre-kickoff estimate of one match.
type prematchInfo struct {
	win    state.WinProb
	ok     bool
	locked bool
}

func (p prematchInfo) line(match state.Match, styles Styles) string {
	switch {
	case p.ok && (p.locked || match.Started()):
		return styles.MutedText.Render(fmt.Sprintf("Pre-match  Home %s  Draw %s  Away %s  conf %d",
			pct(p.win.Home), pct(p.win.Draw), pct(p.win.Away), p.win.Confidence))
	case match.Started():
		return styles.FaintText.Render("Pre-match snapshot not captured")
	default:
		return styles.FaintText.Render("Pre-match preview, locks at kickoff")
	}
}

// renderMatchDetail renders everything known about one match. A commentary
// error is shown as reported, above whatever commentary was decoded.
func renderMatchDetail(match state.Match, detail state.MatchDetail, hasDetail bool, history []float64, pre prematchInfo, styles Styles) string {
	var b strings.Builder

	home, away := match.Home, match.Away
	if detail.HomeTeam != "" {
		home = detail.HomeTeam
	}
	if detail.AwayTeam != "" {
		away = detail.AwayTeam
	}
	b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("%s %d-%d %s", home, match.ScoreHome, match.ScoreAway, away)))
	b.WriteString("  ")
	b.WriteString(styles.AccentText.Render(minuteLabel(match)))
	b.WriteString("  ")
	b.WriteString(styles.Badge(match.Win.Quality.String()).Render(match.Win.Quality.String()))
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  conf %d", match.Win.Confidence)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Home %s  Draw %s  Away %s  Δ %s\n",
		pct(match.Win.Home), pct(match.Win.Draw), pct(match.Win.Away), signedPct(match.Win.DeltaHome)))
	if match.ID != state.PlaceholderMatchID {
		b.WriteString(pre.line(match, styles) + "\n")
	}
	if len(history) > 0 {
		b.WriteString(styles.MutedText.Render("History ") + styles.SuccessText.Render(sparkline(history)) + "\n")
	}

	if !hasDetail {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Loading details..."))
		return b.String()
	}

	if detail.CommentaryError != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("Commentary error: " + detail.CommentaryError))
		b.WriteString("\n")
	}

	if len(detail.Events) > 0 {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render("Events") + "\n")
		for _, e := range detail.Events {
			label := e.Kind.String()
			line := fmt.Sprintf("%3d' %s %s %s", e.Minute, styles.Badge(label).Render(label), e.Team, e.Player)
			if e.Description != "" {
				line += styles.FaintText.Render("  " + e.Description)
			}
			b.WriteString(strings.TrimRight(line, " ") + "\n")
		}
	}

	if len(detail.Stats) > 0 {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render("Stats") + "\n")
		for _, st := range detail.Stats {
			b.WriteString(fmt.Sprintf("%6s  %-24s %s\n", st.Home, truncate(st.Name, 24), st.Away))
		}
	}

	if detail.Lineups != nil && len(detail.Lineups.Sides) > 0 {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render("Lineups") + "\n")
		for _, side := range detail.Lineups.Sides {
			b.WriteString(styles.Text.Bold(true).Render(side.Team))
			if side.Formation != "" {
				b.WriteString(styles.FaintText.Render(" (" + side.Formation + ")"))
			}
			b.WriteString("\n")
			b.WriteString(formatSlots(side.Starting) + "\n")
			if len(side.Subs) > 0 {
				b.WriteString(styles.FaintText.Render("Subs: "+formatSlots(side.Subs)) + "\n")
			}
		}
	}

	b.WriteString("\n" + styles.AccentText.Bold(true).Render("Commentary") + "\n")
	if len(detail.Commentary) == 0 {
		b.WriteString(styles.MutedText.Render("No commentary yet"))
		return b.String()
	}
	for i, e := range detail.Commentary {
		if i == commentaryLimit {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("... %d more", len(detail.Commentary)-commentaryLimit)))
			break
		}
		line := styles.AccentText.Render(padRight(commentaryMinute(e), 6)) + e.Text
		if e.Team != "" {
			line += styles.FaintText.Render(" [" + e.Team + "]")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSlots(slots []state.PlayerSlot) string {
	names := make([]string, 0, len(slots))
	for _, p := range slots {
		if p.Number > 0 {
			names = append(names, fmt.Sprintf("%d %s", p.Number, p.Name))
		} else {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

const logo = "PITCHSIDE"

// renderMain renders the full UI: header, command bar and the active view.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewUpcoming:
		return m.renderUpcoming()
	case ViewAnalysis:
		return m.renderAnalysis()
	case ViewRankings:
		return m.renderRankings()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderPulse()
	}
}

// renderHeader renders the logo, league, view tabs and background job
// status on one line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	s := m.store

	parts := []string{
		bg.Render(logo, styles.Logo),
		bg.Render(s.League.String(), styles.AccentText.Bold(true)),
	}
	for v := ViewPulse; v < viewCount; v++ {
		style := styles.MutedText
		if v == m.view {
			style = styles.Text.Bold(true).Underline(true)
		}
		parts = append(parts, bg.Render(v.String(), style))
	}
	parts = append(parts, bg.Render("sort:"+s.Sort.String(), styles.FaintText))
	if s.PlaceholderEnabled {
		parts = append(parts, bg.Render("demo", styles.WarningText))
	}

	if status := m.jobStatus(); status != "" {
		parts = append(parts, bg.Render(status, styles.InfoText))
	}

	return bg.FillLine(" "+bg.Join(parts, "  "), m.width)
}

// jobStatus summarizes background work the user started.
func (m Model) jobStatus() string {
	s := m.store
	var out []string
	if s.AnalysisLoading {
		out = append(out, "loading analysis")
	}
	if s.RankingsLoading {
		p := s.RankingsProgress
		out = append(out, fmt.Sprintf("warming %d/%d", p.Current, p.Total))
	}
	if s.Export.Active {
		p := s.Export.Progress
		out = append(out, fmt.Sprintf("export %d/%d", p.Current, p.Total))
	}
	if s.SquadLoading || s.PlayerLoading {
		out = append(out, "fetching")
	}
	return strings.Join(out, " · ")
}

// renderCommandBar renders the short key reference.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bindings := m.keys.ShortHelp()
	switch m.view {
	case ViewPulse:
		bindings = append([]key.Binding{m.keys.Details, m.keys.Refresh}, bindings...)
	case ViewAnalysis, ViewRankings:
		bindings = append([]key.Binding{m.keys.Open, m.keys.WarmCache, m.keys.Export}, bindings...)
	}
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, styles.WarningText.Render(h.Key)+" "+styles.MutedText.Render(h.Desc))
	}
	return " " + strings.Join(hints, "  ")
}

package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pitchside/internal/state"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	now := m.now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.Tab):
		m.view = (m.view + 1) % viewCount

	case key.Matches(msg, m.keys.ShiftTab):
		m.view = (m.view + viewCount - 1) % viewCount

	case key.Matches(msg, m.keys.Logs):
		m.view = ViewLogs

	case key.Matches(msg, m.keys.Escape):
		m.back()

	case key.Matches(msg, m.keys.Placeholder):
		m.store.TogglePlaceholder()
		m.savePrefs()

	case key.Matches(msg, m.keys.League):
		m.switchLeague()

	case key.Matches(msg, m.keys.Sort):
		m.store.CycleSort()

	case key.Matches(msg, m.keys.Details):
		m.requestSelectedDetail(now, true)

	case key.Matches(msg, m.keys.Refresh):
		m.refresh(now)

	case key.Matches(msg, m.keys.WarmCache):
		m.warmFromKey(true)

	case key.Matches(msg, m.keys.WarmAll):
		m.warmFromKey(false)

	case key.Matches(msg, m.keys.ClearCache):
		m.store.ClearRankingsCache()
		m.store.PushLog("[INFO] Rankings cache cleared")

	case key.Matches(msg, m.keys.Export):
		m.exportAnalysis(now)

	case key.Matches(msg, m.keys.Open):
		m.open()

	case key.Matches(msg, m.keys.HalfPageDown):
		m.scroll(true)

	case key.Matches(msg, m.keys.HalfPageUp):
		m.scroll(false)

	case key.Matches(msg, m.keys.Up):
		m.move(-1)

	case key.Matches(msg, m.keys.Down):
		m.move(1)

	case key.Matches(msg, m.keys.Top):
		m.move(-1 << 20)

	case key.Matches(msg, m.keys.Bottom):
		m.move(1 << 20)
	}

	m.syncViewports()
	return m, nil
}

func (m *Model) back() {
	switch {
	case m.view == ViewAnalysis && m.pane == panePlayer && m.store.SquadTeamID != 0:
		m.pane = paneSquad
	case m.view == ViewAnalysis && m.pane != paneTeams:
		m.pane = paneTeams
	default:
		m.view = ViewPulse
	}
}

func (m *Model) refresh(now time.Time) {
	switch m.view {
	case ViewUpcoming:
		m.requestUpcoming(now, true)
	case ViewAnalysis, ViewRankings:
		m.requestAnalysis(now, true)
	default:
		if match, ok := m.store.SelectedMatch(); ok {
			m.send(state.FetchMatchDetailsBasic{ID: match.ID})
		}
	}
}

func (m *Model) warmFromKey(missingOnly bool) {
	if len(m.store.Analysis) == 0 {
		m.store.PushLog("[WARN] Load analysis before warming the rankings cache")
		m.requestAnalysis(m.now(), false)
		return
	}
	m.warm(missingOnly)
}

// open drills into the highlighted team, squad member or ranking row.
func (m *Model) open() {
	s := m.store
	switch m.view {
	case ViewAnalysis:
		switch m.pane {
		case paneTeams:
			if m.teamSelected < len(s.Analysis) {
				m.openSquad(s.Analysis[m.teamSelected])
			}
		case paneSquad:
			if m.squadSelected < len(s.Squad) {
				p := s.Squad[m.squadSelected]
				m.openPlayer(p.ID, p.Name)
			}
		}
	case ViewRankings:
		if s.RankingsSelected < len(s.Rankings) {
			r := s.Rankings[s.RankingsSelected]
			m.openPlayer(r.PlayerID, r.PlayerName)
		}
	}
}

func (m *Model) move(delta int) {
	s := m.store
	switch m.view {
	case ViewPulse:
		s.MoveSelection(delta)
	case ViewUpcoming:
		m.upcomingSelected = clampIndex(m.upcomingSelected+delta, len(s.VisibleUpcoming()))
	case ViewAnalysis:
		switch m.pane {
		case paneTeams:
			m.teamSelected = clampIndex(m.teamSelected+delta, len(s.Analysis))
		case paneSquad:
			m.squadSelected = clampIndex(m.squadSelected+delta, len(s.Squad))
		case panePlayer:
			m.scrollBy(delta)
		}
	case ViewRankings:
		s.RankingsSelected = clampIndex(s.RankingsSelected+delta, len(s.Rankings))
	case ViewLogs:
		if delta < 0 {
			m.logView.ScrollUp(-delta)
		} else {
			m.logView.ScrollDown(delta)
		}
	}
}

func (m *Model) scroll(down bool) {
	vp := &m.detail
	if m.view == ViewLogs {
		vp = &m.logView
	}
	if down {
		vp.HalfPageDown()
	} else {
		vp.HalfPageUp()
	}
}

func (m *Model) scrollBy(delta int) {
	if delta < 0 {
		m.detail.ScrollUp(-delta)
	} else {
		m.detail.ScrollDown(delta)
	}
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

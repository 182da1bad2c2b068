package ui

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/five82/pitchside/internal/config"
	"github.com/five82/pitchside/internal/prefs"
	"github.com/five82/pitchside/internal/state"
)

// consume drains every pending delta, applies them in emission order and
// then runs the re-derivations and request checks that depend on them.
func (m *Model) consume(now time.Time) {
	analysisArrived := false
	for _, d := range m.deltas.Drain() {
		state.Apply(m.store, d)
		if a, ok := d.(state.SetAnalysis); ok && a.Mode == m.store.League {
			analysisArrived = true
		}
	}

	if m.store.RankingsDirty {
		m.store.RecomputeRankings(now)
	}
	if analysisArrived {
		m.maybeAutoWarm()
	}
	if len(m.store.PrefetchPending) > 0 {
		m.prefetchSquad()
	}

	m.requestSelectedDetail(now, false)
	switch m.view {
	case ViewUpcoming:
		m.requestUpcoming(now, false)
	case ViewAnalysis, ViewRankings:
		m.requestAnalysis(now, false)
	}
}

func (m *Model) send(c state.Command) {
	m.commands.Push(c)
}

// requestSelectedDetail asks for the highlighted match's detail. Requests
// for the same id are throttled; finished matches with a fresh cached detail
// are not refetched unless forced. The placeholder is only requested
// explicitly, and the worker answers it locally.
func (m *Model) requestSelectedDetail(now time.Time, force bool) {
	match, ok := m.store.SelectedMatch()
	if !ok {
		return
	}
	if match.ID == state.PlaceholderMatchID && !force {
		return
	}
	if last, ok := m.sent.detail[match.ID]; ok && now.Sub(last) < DetailThrottle {
		return
	}
	if !force && !match.Live {
		_, cached := m.store.Details[match.ID]
		fetched := m.store.DetailFetchedAt[match.ID]
		if cached && !fetched.IsZero() && now.Sub(fetched) < m.detailTTL {
			return
		}
	}
	m.sent.detail[match.ID] = now
	m.send(state.FetchMatchDetails{ID: match.ID})
}

func (m *Model) requestUpcoming(now time.Time, force bool) {
	if !force {
		if at := m.store.UpcomingFetchedAt; !at.IsZero() && now.Sub(at) < UpcomingFresh {
			return
		}
		if !m.sent.upcoming.IsZero() && now.Sub(m.sent.upcoming) < UpcomingFresh {
			return
		}
	}
	m.sent.upcoming = now
	m.send(state.FetchUpcoming{})
}

// requestAnalysis asks for the current league's team list unless a load is
// running, a list is already cached, or the league was asked recently.
func (m *Model) requestAnalysis(now time.Time, force bool) {
	mode := m.store.League
	if m.store.AnalysisLoading {
		return
	}
	if len(m.store.Analysis) > 0 && !force {
		return
	}
	if last, ok := m.sent.analysis[mode]; ok && now.Sub(last) < AnalysisThrottle {
		return
	}
	m.sent.analysis[mode] = now
	m.store.AnalysisLoading = true
	m.send(state.FetchAnalysis{Mode: mode})
}

// maybeAutoWarm warms the rankings cache once per league per session.
func (m *Model) maybeAutoWarm() {
	if m.autoWarm == config.AutoWarmOff || len(m.store.Analysis) == 0 {
		return
	}
	if m.sent.warmed[m.store.League] {
		return
	}
	m.sent.warmed[m.store.League] = true
	m.warm(m.autoWarm == config.AutoWarmMissing)
}

// warm sends a WarmRankCache with copies of the cached squads and players.
func (m *Model) warm(missingOnly bool) {
	s := m.store
	if s.RankingsLoading {
		s.PushLog("[INFO] Rankings cache warm already running")
		return
	}
	s.RankingsLoading = true
	s.RankingsProgress = state.Progress{Message: "Warming cache..."}
	m.send(state.WarmRankCache{
		Mode:          s.League,
		MissingOnly:   missingOnly,
		Teams:         slices.Clone(s.Analysis),
		CachedSquads:  maps.Clone(s.Squads),
		CachedPlayers: slices.Sorted(maps.Keys(s.Players)),
	})
}

// prefetchSquad requests the players of a freshly opened squad that are
// not cached yet.
func (m *Model) prefetchSquad() {
	s := m.store
	var ids []int
	for _, id := range s.PrefetchPending {
		if _, ok := s.Players[id]; !ok {
			ids = append(ids, id)
		}
	}
	s.PrefetchPending = nil
	if len(ids) > 0 {
		m.send(state.PrefetchPlayers{Mode: s.League, PlayerIDs: ids})
	}
}

func (m *Model) openSquad(t state.TeamAnalysis) {
	s := m.store
	s.Squad = nil
	s.SquadTeamID = t.ID
	s.SquadTeam = t.Name
	s.SquadLoading = true
	m.squadSelected = 0
	m.pane = paneSquad
	m.send(state.FetchSquad{Mode: s.League, TeamID: t.ID, TeamName: t.Name})
}

func (m *Model) openPlayer(id int, name string) {
	s := m.store
	if cached, ok := s.Players[id]; ok {
		detail := cached
		s.Player = &detail
	} else {
		s.Player = &state.PlayerDetail{ID: id, Name: name}
	}
	s.PlayerLoading = true
	m.view = ViewAnalysis
	m.pane = panePlayer
	m.send(state.FetchPlayer{Mode: s.League, PlayerID: id, PlayerName: name})
}

// switchLeague persists the outgoing league's cache, resets the store for
// the next league and loads whatever was cached for it.
func (m *Model) switchLeague() {
	s := m.store
	if m.cache != nil {
		if err := m.cache.SaveFrom(s); err != nil {
			m.logger.Warn("cache save failed", "league", s.League.Slug(), "error", err)
		}
	}
	s.CycleLeague()
	m.pane = paneTeams
	m.teamSelected = 0
	m.squadSelected = 0
	m.upcomingSelected = 0
	if m.cache != nil {
		loaded, err := m.cache.LoadInto(s)
		if err != nil {
			m.logger.Warn("cache load failed", "league", s.League.Slug(), "error", err)
		}
		if loaded {
			s.PushLog(fmt.Sprintf("[INFO] Loaded cached analysis for %s", s.League))
		}
	}
	s.PushLog(fmt.Sprintf("[INFO] League: %s", s.League))
	m.requestAnalysis(m.now(), true)
	m.savePrefs()
}

func (m *Model) exportAnalysis(now time.Time) {
	s := m.store
	if s.Export.Active {
		s.PushLog("[INFO] Export already running")
		return
	}
	if len(s.Analysis) == 0 {
		s.PushLog("[WARN] Nothing to export yet (no analysis loaded)")
		return
	}
	name := fmt.Sprintf("pitchside-%s-%s.yaml", s.League.Slug(), now.Format("20060102-150405"))
	m.send(state.ExportAnalysis{
		Path:     filepath.Join(m.exportDir, name),
		Mode:     s.League,
		Teams:    slices.Clone(s.Analysis),
		Rankings: slices.Clone(s.Rankings),
	})
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.Prefs()); err != nil {
		m.logger.Warn("prefs save failed", "path", m.prefsPath, "error", err)
	}
}

package state

import (
	"slices"
	"strings"
)

// LeagueMode selects which competition the dashboard focuses on.
type LeagueMode int

const (
	LeaguePremierLeague LeagueMode = iota
	LeagueLaLiga
	LeagueBundesliga
	LeagueSerieA
	LeagueLigue1
	LeagueChampionsLeague
	LeagueWorldCup
)

type leagueInfo struct {
	slug     string
	name     string
	ids      []int
	keywords []string
}

var leagues = []leagueInfo{
	LeaguePremierLeague:   {"premier-league", "Premier League", []int{47}, []string{"premier league", "premier", "epl"}},
	LeagueLaLiga:          {"la-liga", "La Liga", []int{87}, []string{"la liga", "laliga", "primera division"}},
	LeagueBundesliga:      {"bundesliga", "Bundesliga", []int{54}, []string{"bundesliga", "1. bundesliga"}},
	LeagueSerieA:          {"serie-a", "Serie A", []int{55}, []string{"serie a", "seria a"}},
	LeagueLigue1:          {"ligue-1", "Ligue 1", []int{53}, []string{"ligue 1", "ligue1"}},
	LeagueChampionsLeague: {"champions-league", "Champions League", []int{42}, []string{"champions league", "uefa champions league", "ucl"}},
	LeagueWorldCup:        {"world-cup", "World Cup", []int{77}, []string{"world cup", "worldcup"}},
}

// AllLeagues returns every mode in cycle order.
func AllLeagues() []LeagueMode {
	out := make([]LeagueMode, len(leagues))
	for i := range leagues {
		out[i] = LeagueMode(i)
	}
	return out
}

func (m LeagueMode) info() leagueInfo {
	if m < 0 || int(m) >= len(leagues) {
		return leagues[LeaguePremierLeague]
	}
	return leagues[m]
}

// String returns the display name.
func (m LeagueMode) String() string { return m.info().name }

// Slug returns the stable key used in config files and caches.
func (m LeagueMode) Slug() string { return m.info().slug }

// DefaultIDs returns the provider league ids for the mode.
func (m LeagueMode) DefaultIDs() []int { return slices.Clone(m.info().ids) }

// Next returns the following mode, wrapping at the end.
func (m LeagueMode) Next() LeagueMode {
	return LeagueMode((int(m) + 1) % len(leagues))
}

// ParseLeague resolves a slug or display name, case-insensitively.
func ParseLeague(raw string) (LeagueMode, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for i, l := range leagues {
		if needle == l.slug || needle == strings.ToLower(l.name) {
			return LeagueMode(i), true
		}
	}
	return LeaguePremierLeague, false
}

// LeagueFilter decides which matches belong to a mode. IDs overrides the
// built-in provider ids when non-empty.
type LeagueFilter struct {
	Mode LeagueMode
	IDs  []int
}

func (f LeagueFilter) ids() []int {
	if len(f.IDs) > 0 {
		return f.IDs
	}
	return f.Mode.info().ids
}

// Contains matches by league id when the row has one, else by name keywords.
func (f LeagueFilter) Contains(leagueID int, leagueName string) bool {
	ids := f.ids()
	if leagueID != 0 && len(ids) > 0 {
		return slices.Contains(ids, leagueID)
	}
	if leagueName != "" {
		name := strings.ToLower(leagueName)
		for _, kw := range f.Mode.info().keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
		return false
	}
	return len(ids) == 0
}

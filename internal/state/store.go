package state

import (
	"cmp"
	"math"
	"slices"
	"time"
)

const (
	maxLogLines      = 200
	maxHistoryPoints = 40
)

// SortMode orders the live match list.
type SortMode int

const (
	SortHot SortMode = iota
	SortTime
	SortClose
	SortUpset
)

func (m SortMode) String() string {
	switch m {
	case SortTime:
		return "Time"
	case SortClose:
		return "Close"
	case SortUpset:
		return "Upset"
	default:
		return "Hot"
	}
}

// Next cycles to the following sort mode.
func (m SortMode) Next() SortMode { return (m + 1) % 4 }

// Progress reports a long-running background job.
type Progress struct {
	Current int
	Total   int
	Message string
}

// ExportStatus tracks the most recent analysis export.
type ExportStatus struct {
	Active     bool
	Path       string
	Progress   Progress
	Err        string
	FinishedAt time.Time
}

// Store is the authoritative application state. It has exactly one owner,
// the presentation consumer, and is mutated only through Apply and the
// user-action methods below. It is not safe for concurrent use.
type Store struct {
	League    LeagueMode
	LeagueIDs map[LeagueMode][]int // overrides for LeagueFilter
	Sort      SortMode

	Matches         []Match
	Selected        int // index into VisibleMatches
	Details         map[string]MatchDetail
	DetailFetchedAt map[string]time.Time
	WinHistory      map[string][]float64
	// PrematchWin is the pre-kickoff estimate per match. It follows the
	// match until kickoff and is frozen once the id is in PrematchLocked.
	PrematchWin    map[string]WinProb
	PrematchLocked map[string]bool

	Upcoming          []UpcomingMatch
	UpcomingFetchedAt time.Time

	Analysis          []TeamAnalysis
	AnalysisLoading   bool
	AnalysisFetchedAt time.Time

	// Rankings cache inputs, keyed by team id and player id.
	Squads  map[int][]SquadPlayer
	Players map[int]PlayerDetail

	Rankings         []RankingRow
	RankingsSelected int
	RankingsDirty    bool
	RankingsLoading  bool
	RankingsProgress Progress
	RankingsUpdated  time.Time

	Squad           []SquadPlayer
	SquadTeamID     int
	SquadTeam       string
	SquadLoading    bool
	Player          *PlayerDetail
	PlayerLoading   bool
	PrefetchPending []int

	Export ExportStatus

	PlaceholderEnabled bool

	Logs []string
}

// NewStore returns an empty store focused on mode.
func NewStore(mode LeagueMode) *Store {
	return &Store{
		League:          mode,
		LeagueIDs:       make(map[LeagueMode][]int),
		Details:         make(map[string]MatchDetail),
		DetailFetchedAt: make(map[string]time.Time),
		WinHistory:      make(map[string][]float64),
		PrematchWin:     make(map[string]WinProb),
		PrematchLocked:  make(map[string]bool),
		Squads:          make(map[int][]SquadPlayer),
		Players:         make(map[int]PlayerDetail),
	}
}

// Filter returns the league filter for the current mode.
func (s *Store) Filter() LeagueFilter {
	return LeagueFilter{Mode: s.League, IDs: s.LeagueIDs[s.League]}
}

// VisibleMatches returns matches in the current league, in sort order.
func (s *Store) VisibleMatches() []Match {
	filter := s.Filter()
	out := make([]Match, 0, len(s.Matches))
	for _, m := range s.Matches {
		if m.ID == PlaceholderMatchID || filter.Contains(m.LeagueID, m.LeagueName) {
			out = append(out, m)
		}
	}
	return out
}

// VisibleUpcoming returns upcoming fixtures in the current league.
func (s *Store) VisibleUpcoming() []UpcomingMatch {
	filter := s.Filter()
	out := make([]UpcomingMatch, 0, len(s.Upcoming))
	for _, u := range s.Upcoming {
		if filter.Contains(u.LeagueID, u.LeagueName) {
			out = append(out, u)
		}
	}
	return out
}

// SelectedMatch returns the highlighted match, if any.
func (s *Store) SelectedMatch() (Match, bool) {
	visible := s.VisibleMatches()
	if s.Selected < 0 || s.Selected >= len(visible) {
		return Match{}, false
	}
	return visible[s.Selected], true
}

// MoveSelection shifts the highlighted match by delta, clamped to the list.
func (s *Store) MoveSelection(delta int) {
	s.Selected += delta
	s.clampSelection()
}

func (s *Store) clampSelection() {
	n := len(s.VisibleMatches())
	s.Selected = max(0, min(s.Selected, n-1))
}

func (s *Store) selectByID(id string) {
	if id != "" {
		for i, m := range s.VisibleMatches() {
			if m.ID == id {
				s.Selected = i
				return
			}
		}
	}
	s.clampSelection()
}

func (s *Store) selectedID() string {
	if m, ok := s.SelectedMatch(); ok {
		return m.ID
	}
	return ""
}

// CycleSort advances the sort mode, keeping the selection on the same match.
func (s *Store) CycleSort() {
	id := s.selectedID()
	s.Sort = s.Sort.Next()
	s.sortMatches()
	s.selectByID(id)
}

func (s *Store) sortMatches() {
	switch s.Sort {
	case SortTime:
		slices.SortStableFunc(s.Matches, func(a, b Match) int {
			if a.Live != b.Live {
				if a.Live {
					return -1
				}
				return 1
			}
			return cmp.Compare(a.Minute, b.Minute)
		})
	case SortClose:
		slices.SortStableFunc(s.Matches, func(a, b Match) int {
			return cmp.Compare(b.Win.Draw, a.Win.Draw)
		})
	case SortUpset:
		slices.SortStableFunc(s.Matches, func(a, b Match) int {
			return cmp.Compare(min(b.Win.Home, b.Win.Away), min(a.Win.Home, a.Win.Away))
		})
	default:
		slices.SortStableFunc(s.Matches, func(a, b Match) int {
			return cmp.Compare(math.Abs(b.Win.DeltaHome), math.Abs(a.Win.DeltaHome))
		})
	}
}

// PushLog appends a line to the in-app log, keeping the newest lines.
func (s *Store) PushLog(line string) {
	s.Logs = append(s.Logs, line)
	if over := len(s.Logs) - maxLogLines; over > 0 {
		s.Logs = slices.Delete(s.Logs, 0, over)
	}
}

// trackPrematch updates the pre-match snapshot for m given the previous
// version of the same match, if any. The snapshot follows the match until
// kickoff and is locked the first time it is seen started.
func (s *Store) trackPrematch(prev *Match, m Match) {
	if m.ID == PlaceholderMatchID || s.PrematchLocked[m.ID] {
		return
	}
	if !m.Started() {
		s.PrematchWin[m.ID] = m.Win
		return
	}
	if _, ok := s.PrematchWin[m.ID]; !ok {
		switch {
		case prev != nil && !prev.Started():
			s.PrematchWin[m.ID] = prev.Win
		case m.Kickoff != nil:
			s.PrematchWin[m.ID] = *m.Kickoff
		}
	}
	s.PrematchLocked[m.ID] = true
}

// previewPrematch refreshes the preview of a known match that has not
// kicked off.
func (s *Store) previewPrematch(id string) {
	if s.PrematchLocked[id] {
		return
	}
	if i := slices.IndexFunc(s.Matches, func(m Match) bool { return m.ID == id }); i >= 0 && !s.Matches[i].Started() {
		s.PrematchWin[id] = s.Matches[i].Win
	}
}

func (s *Store) pushHistory(id string, p float64) {
	h := append(s.WinHistory[id], p)
	if over := len(h) - maxHistoryPoints; over > 0 {
		h = slices.Delete(h, 0, over)
	}
	s.WinHistory[id] = h
}

// TogglePlaceholder flips the demo match on or off.
func (s *Store) TogglePlaceholder() {
	if s.PlaceholderEnabled {
		s.DisablePlaceholder()
		return
	}
	s.EnablePlaceholder()
}

// EnablePlaceholder inserts the demo match, its pinned detail and a seeded
// probability history.
func (s *Store) EnablePlaceholder() {
	id := s.selectedID()
	s.Matches = slices.DeleteFunc(s.Matches, func(m Match) bool { return m.ID == PlaceholderMatchID })
	s.Matches = append(s.Matches, PlaceholderMatch(s.League))
	s.Details[PlaceholderMatchID] = PlaceholderDetail()
	s.WinHistory[PlaceholderMatchID] = slices.Clone(placeholderHistory)
	s.PlaceholderEnabled = true
	s.sortMatches()
	s.selectByID(id)
}

// DisablePlaceholder removes every trace of the demo match.
func (s *Store) DisablePlaceholder() {
	id := s.selectedID()
	s.Matches = slices.DeleteFunc(s.Matches, func(m Match) bool { return m.ID == PlaceholderMatchID })
	delete(s.Details, PlaceholderMatchID)
	delete(s.DetailFetchedAt, PlaceholderMatchID)
	delete(s.WinHistory, PlaceholderMatchID)
	s.PlaceholderEnabled = false
	s.sortMatches()
	s.selectByID(id)
}

// CycleLeague switches to the next league and drops all league-scoped
// state. Rankings are left clean; loading a cache or receiving analysis for
// the new league marks them dirty again.
func (s *Store) CycleLeague() {
	s.SetLeague(s.League.Next())
}

// SetLeague switches to mode with the same reset rules as CycleLeague.
func (s *Store) SetLeague(mode LeagueMode) {
	s.League = mode
	s.Selected = 0
	s.UpcomingFetchedAt = time.Time{}

	s.Analysis = nil
	s.AnalysisLoading = false
	s.AnalysisFetchedAt = time.Time{}

	s.Squads = make(map[int][]SquadPlayer)
	s.Players = make(map[int]PlayerDetail)
	s.Rankings = nil
	s.RankingsSelected = 0
	s.RankingsDirty = false
	s.RankingsLoading = false
	s.RankingsProgress = Progress{}
	s.RankingsUpdated = time.Time{}

	s.Squad = nil
	s.SquadTeamID = 0
	s.SquadTeam = ""
	s.SquadLoading = false
	s.Player = nil
	s.PlayerLoading = false
	s.PrefetchPending = nil

	s.PlaceholderEnabled = false
	s.Matches = nil
	s.Details = make(map[string]MatchDetail)
	s.DetailFetchedAt = make(map[string]time.Time)
	s.WinHistory = make(map[string][]float64)
	s.PrematchWin = make(map[string]WinProb)
	s.PrematchLocked = make(map[string]bool)
}

// ClearRankingsCache drops cached squads, players and rankings and marks
// rankings dirty so they rebuild once data returns.
func (s *Store) ClearRankingsCache() {
	s.Squads = make(map[int][]SquadPlayer)
	s.Players = make(map[int]PlayerDetail)
	s.Rankings = nil
	s.RankingsSelected = 0
	s.RankingsDirty = true
	s.RankingsProgress = Progress{Message: "Cache cleared"}
	s.RankingsUpdated = time.Time{}
}

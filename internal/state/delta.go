package state

import (
	"fmt"
	"slices"
	"time"
)

// Delta is one immutable state change emitted by the worker. The set of
// implementations is closed; Apply handles every one of them.
type Delta interface {
	isDelta()
}

// SetMatches replaces all real matches.
type SetMatches struct {
	Matches []Match
}

// UpsertMatch replaces or inserts one match by id.
type UpsertMatch struct {
	Match Match
}

// SetMatchDetails replaces the detail for a match with a full fetch result.
type SetMatchDetails struct {
	ID        string
	Detail    MatchDetail
	FetchedAt time.Time
}

// SetMatchDetailsBasic merges a partial detail fetch into the existing one.
type SetMatchDetailsBasic struct {
	ID        string
	Detail    MatchDetail
	FetchedAt time.Time
}

// AddEvent appends one event to a match timeline.
type AddEvent struct {
	ID    string
	Event Event
}

// SetUpcoming replaces the upcoming fixture list.
type SetUpcoming struct {
	Matches   []UpcomingMatch
	FetchedAt time.Time
}

// SetAnalysis replaces the analysis cache for a league. An empty team list
// only ends the pending load; the previous list is kept.
type SetAnalysis struct {
	Mode      LeagueMode
	Teams     []TeamAnalysis
	FetchedAt time.Time
}

// SetRankingsDirty forces a rankings recompute.
type SetRankingsDirty struct{}

// CacheSquad stores a squad for rankings.
type CacheSquad struct {
	Mode    LeagueMode
	TeamID  int
	Players []SquadPlayer
}

// CachePlayerDetail stores a player for rankings.
type CachePlayerDetail struct {
	Mode   LeagueMode
	Detail PlayerDetail
}

// SetSquad delivers the squad the user asked to view.
type SetSquad struct {
	Mode     LeagueMode
	TeamID   int
	TeamName string
	Players  []SquadPlayer
}

// SetPlayerDetail delivers the player the user asked to view.
type SetPlayerDetail struct {
	Mode   LeagueMode
	Detail PlayerDetail
}

// RankCacheProgress reports cache warm progress.
type RankCacheProgress struct {
	Mode     LeagueMode
	Progress Progress
}

// RankCacheFinished ends a cache warm job.
type RankCacheFinished struct {
	Mode   LeagueMode
	Errors []string
}

// ExportStarted begins an analysis export.
type ExportStarted struct {
	Path  string
	Total int
}

// ExportProgress reports export progress.
type ExportProgress struct {
	Progress Progress
}

// ExportFinished ends an export. Err is empty on success.
type ExportFinished struct {
	Path string
	Err  string
	At   time.Time
}

// Log appends one line to the in-app log.
type Log struct {
	Message string
}

func (SetMatches) isDelta()           {}
func (UpsertMatch) isDelta()          {}
func (SetMatchDetails) isDelta()      {}
func (SetMatchDetailsBasic) isDelta() {}
func (AddEvent) isDelta()             {}
func (SetUpcoming) isDelta()          {}
func (SetAnalysis) isDelta()          {}
func (SetRankingsDirty) isDelta()     {}
func (CacheSquad) isDelta()           {}
func (CachePlayerDetail) isDelta()    {}
func (SetSquad) isDelta()             {}
func (SetPlayerDetail) isDelta()      {}
func (RankCacheProgress) isDelta()    {}
func (RankCacheFinished) isDelta()    {}
func (ExportStarted) isDelta()        {}
func (ExportProgress) isDelta()       {}
func (ExportFinished) isDelta()       {}
func (Log) isDelta()                  {}

// Apply folds one delta into the store. It never blocks, performs no I/O
// and accepts every delta for every store shape; deltas that no longer
// apply (stale league, pinned placeholder) are dropped.
func Apply(s *Store, d Delta) {
	switch d := d.(type) {
	case SetMatches:
		applySetMatches(s, d)
	case UpsertMatch:
		applyUpsert(s, d.Match)
	case SetMatchDetails:
		if d.ID == PlaceholderMatchID {
			return
		}
		s.Details[d.ID] = d.Detail
		s.DetailFetchedAt[d.ID] = d.FetchedAt
		s.detailArrived(d.ID)
	case SetMatchDetailsBasic:
		if d.ID == PlaceholderMatchID {
			return
		}
		s.Details[d.ID] = mergeBasic(s.Details[d.ID], d.Detail)
		s.DetailFetchedAt[d.ID] = d.FetchedAt
		s.detailArrived(d.ID)
	case AddEvent:
		if d.ID == PlaceholderMatchID {
			return
		}
		detail := s.Details[d.ID]
		detail.Events = append(slices.Clip(detail.Events), d.Event)
		s.Details[d.ID] = detail
	case SetUpcoming:
		s.Upcoming = d.Matches
		s.UpcomingFetchedAt = d.FetchedAt
		for _, u := range d.Matches {
			if !s.PrematchLocked[u.ID] && u.Win != (WinProb{}) {
				s.PrematchWin[u.ID] = u.Win
			}
		}
	case SetAnalysis:
		if d.Mode != s.League {
			return
		}
		if len(d.Teams) > 0 {
			s.Analysis = d.Teams
		}
		s.AnalysisLoading = false
		s.AnalysisFetchedAt = d.FetchedAt
		s.RankingsDirty = true
	case SetRankingsDirty:
		s.RankingsDirty = true
	case CacheSquad:
		if d.Mode != s.League || len(d.Players) == 0 {
			return
		}
		s.Squads[d.TeamID] = d.Players
		s.RankingsDirty = true
	case CachePlayerDetail:
		if d.Mode != s.League {
			return
		}
		s.Players[d.Detail.ID] = d.Detail
		s.RankingsDirty = true
	case SetSquad:
		applySetSquad(s, d)
	case SetPlayerDetail:
		applySetPlayer(s, d)
	case RankCacheProgress:
		if d.Mode != s.League {
			return
		}
		s.RankingsLoading = true
		s.RankingsProgress = d.Progress
	case RankCacheFinished:
		if d.Mode != s.League {
			return
		}
		s.RankingsLoading = false
		s.RankingsProgress.Current = max(s.RankingsProgress.Current, s.RankingsProgress.Total)
		s.RankingsProgress.Message = fmt.Sprintf("Cache warm done (%d errors)", len(d.Errors))
		for _, e := range d.Errors {
			s.PushLog("[WARN] Rankings cache: " + e)
		}
	case ExportStarted:
		s.Export = ExportStatus{Active: true, Path: d.Path, Progress: Progress{Total: d.Total, Message: "Starting export"}}
	case ExportProgress:
		s.Export.Progress = d.Progress
	case ExportFinished:
		s.Export.Active = false
		s.Export.Path = d.Path
		s.Export.Err = d.Err
		s.Export.FinishedAt = d.At
		if d.Err != "" {
			s.Export.Progress.Message = "Export failed"
			s.PushLog("[WARN] Export failed: " + d.Err)
		} else {
			s.Export.Progress.Message = "Export done"
			s.PushLog("[INFO] Exported analysis to " + d.Path)
		}
	case Log:
		s.PushLog(d.Message)
	}
}

func applySetMatches(s *Store, d SetMatches) {
	id := s.selectedID()

	var pinned *Match
	for i := range s.Matches {
		if s.Matches[i].ID == PlaceholderMatchID {
			m := s.Matches[i]
			pinned = &m
			break
		}
	}

	previous := make(map[string]Match, len(s.Matches))
	for _, m := range s.Matches {
		previous[m.ID] = m
	}

	matches := make([]Match, 0, len(d.Matches)+1)
	for _, m := range d.Matches {
		if m.ID == PlaceholderMatchID {
			continue
		}
		if prev, ok := previous[m.ID]; ok {
			s.trackPrematch(&prev, m)
		} else {
			s.trackPrematch(nil, m)
		}
		matches = append(matches, m)
	}
	if s.PlaceholderEnabled {
		if pinned == nil {
			m := PlaceholderMatch(s.League)
			pinned = &m
		}
		matches = append(matches, *pinned)
		if _, ok := s.Details[PlaceholderMatchID]; !ok {
			s.Details[PlaceholderMatchID] = PlaceholderDetail()
		}
	}

	s.Matches = matches
	s.sortMatches()
	s.selectByID(id)
}

func applyUpsert(s *Store, m Match) {
	if m.ID == PlaceholderMatchID {
		return
	}
	id := s.selectedID()
	if i := slices.IndexFunc(s.Matches, func(x Match) bool { return x.ID == m.ID }); i >= 0 {
		prev := s.Matches[i]
		s.trackPrematch(&prev, m)
		m.Win.DeltaHome = m.Win.Home - prev.Win.Home
		s.Matches[i] = m
	} else {
		s.trackPrematch(nil, m)
		m.Win.DeltaHome = 0
		s.Matches = append(s.Matches, m)
	}
	s.pushHistory(m.ID, m.Win.Home)
	s.sortMatches()
	s.selectByID(id)
}

// mergeBasic keeps the richer existing fields wherever a partial fetch came
// back empty.
func mergeBasic(existing, incoming MatchDetail) MatchDetail {
	out := incoming
	if len(out.Commentary) == 0 && len(existing.Commentary) > 0 {
		out.Commentary = existing.Commentary
		if out.CommentaryError == "" {
			out.CommentaryError = existing.CommentaryError
		}
	}
	if out.HomeTeam == "" {
		out.HomeTeam = existing.HomeTeam
	}
	if out.AwayTeam == "" {
		out.AwayTeam = existing.AwayTeam
	}
	if len(out.Events) == 0 {
		out.Events = existing.Events
	}
	if len(out.Stats) == 0 {
		out.Stats = existing.Stats
	}
	if out.Lineups == nil {
		out.Lineups = existing.Lineups
	}
	if len(out.Commentary) == 0 && out.CommentaryError == "" {
		out.CommentaryError = existing.CommentaryError
	}
	return out
}

func applySetSquad(s *Store, d SetSquad) {
	if d.Mode != s.League {
		return
	}
	if len(d.Players) > 0 {
		s.Squads[d.TeamID] = d.Players
		s.RankingsDirty = true
	}
	if s.SquadTeamID != 0 && s.SquadTeamID != d.TeamID {
		return
	}
	s.Squad = d.Players
	s.SquadLoading = false
	s.SquadTeam = d.TeamName
	s.SquadTeamID = d.TeamID
	s.PrefetchPending = nil
	for _, p := range d.Players {
		s.PrefetchPending = append(s.PrefetchPending, p.ID)
	}
}

func applySetPlayer(s *Store, d SetPlayerDetail) {
	if d.Mode != s.League {
		return
	}
	if !d.Detail.IsStub() {
		s.Players[d.Detail.ID] = d.Detail
		s.RankingsDirty = true
	}
	keep := s.Player != nil && s.Player.ID == d.Detail.ID && !s.Player.IsStub() && d.Detail.IsStub()
	if !keep {
		detail := d.Detail
		s.Player = &detail
	}
	s.PlayerLoading = false
}

// detailArrived extends the probability history of a known match and
// refreshes its pre-match preview.
func (s *Store) detailArrived(id string) {
	i := slices.IndexFunc(s.Matches, func(m Match) bool { return m.ID == id })
	if i < 0 {
		return
	}
	s.pushHistory(id, s.Matches[i].Win.Home)
	s.previewPrematch(id)
}

package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/five82/pitchside/internal/config"
	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/queue"
	"github.com/five82/pitchside/internal/state"
)

var t0 = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type fixture struct {
	m        Model
	store    *state.Store
	commands *queue.Queue[state.Command]
	deltas   *queue.Queue[state.Delta]
	now      time.Time
}

func newFixture(t *testing.T, tweak func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		store:    state.NewStore(state.LeaguePremierLeague),
		commands: queue.New[state.Command](),
		deltas:   queue.New[state.Delta](),
		now:      t0,
	}
	opts := Options{
		Store:     f.store,
		Commands:  f.commands,
		Deltas:    f.deltas,
		Logger:    logging.NewNop(),
		ExportDir: t.TempDir(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Now:       func() time.Time { return f.now },
	}
	if tweak != nil {
		tweak(&opts)
	}
	f.m = New(opts)
	return f
}

func (f *fixture) tick(d ...state.Delta) {
	for _, delta := range d {
		f.deltas.Push(delta)
	}
	f.m.consume(f.now)
}

func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := f.m.Update(msg)
		f.m = next.(Model)
	}
}

func commandsOf[T state.Command](cmds []state.Command) []T {
	var out []T
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestConsume_RecomputesOnceAnalysisArrives(t *testing.T) {
	f := newFixture(t, nil)

	f.tick(state.SetRankingsDirty{})
	require.True(t, f.store.RankingsDirty, "recompute without teams must keep dirty set")
	require.True(t, f.store.RankingsUpdated.IsZero())

	f.now = t0.Add(time.Second)
	f.tick(state.SetAnalysis{Mode: state.LeaguePremierLeague, Teams: []state.TeamAnalysis{{ID: 1, Name: "Arsenal"}}, FetchedAt: f.now})
	require.False(t, f.store.RankingsDirty)
	require.Equal(t, f.now, f.store.RankingsUpdated)
}

func TestConsume_LeagueSwitchThenAnalysis(t *testing.T) {
	f := newFixture(t, nil)

	f.press("L")
	require.Equal(t, state.LeagueLaLiga, f.store.League)
	require.False(t, f.store.RankingsDirty)

	fetches := commandsOf[state.FetchAnalysis](f.commands.Drain())
	require.Equal(t, []state.FetchAnalysis{{Mode: state.LeagueLaLiga}}, fetches)
	require.True(t, f.store.AnalysisLoading)

	// A late answer for the old league is stale and must not count.
	f.tick(state.SetAnalysis{Mode: state.LeaguePremierLeague, Teams: []state.TeamAnalysis{{ID: 9}}})
	require.Empty(t, f.store.Analysis)

	f.tick(state.SetAnalysis{Mode: state.LeagueLaLiga, Teams: []state.TeamAnalysis{{ID: 8633, Name: "Real Madrid"}}, FetchedAt: f.now})
	require.False(t, f.store.RankingsDirty)
	require.False(t, f.store.AnalysisLoading)
	require.Equal(t, f.now, f.store.RankingsUpdated)
}

func TestConsume_DetailRequestsAreThrottled(t *testing.T) {
	f := newFixture(t, nil)
	state.Apply(f.store, state.SetMatches{Matches: []state.Match{{ID: "100", LeagueID: 47, Live: true, Minute: 20}}})

	f.tick()
	require.Equal(t, []state.FetchMatchDetails{{ID: "100"}}, commandsOf[state.FetchMatchDetails](f.commands.Drain()))

	f.now = t0.Add(2 * time.Second)
	f.tick()
	require.Empty(t, f.commands.Drain())

	f.now = t0.Add(DetailThrottle + time.Second)
	f.tick()
	require.Len(t, commandsOf[state.FetchMatchDetails](f.commands.Drain()), 1)
}

func TestConsume_FreshFinishedDetailNotRefetched(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.DetailTTL = time.Minute })
	state.Apply(f.store, state.SetMatches{Matches: []state.Match{{ID: "7", LeagueID: 47, Minute: 90}}})
	state.Apply(f.store, state.SetMatchDetails{ID: "7", Detail: state.MatchDetail{HomeTeam: "Arsenal"}, FetchedAt: t0})

	f.tick()
	require.Empty(t, f.commands.Drain())

	f.now = t0.Add(2 * time.Minute)
	f.tick()
	require.Equal(t, []state.FetchMatchDetails{{ID: "7"}}, commandsOf[state.FetchMatchDetails](f.commands.Drain()))
}

func TestPlaceholderKey(t *testing.T) {
	f := newFixture(t, nil)

	f.press("p")
	require.True(t, f.store.PlaceholderEnabled)
	match, ok := f.store.SelectedMatch()
	require.True(t, ok)
	require.Equal(t, state.PlaceholderMatchID, match.ID)
	require.Len(t, f.store.WinHistory[state.PlaceholderMatchID], 8)

	f.tick()
	require.Empty(t, f.commands.Drain(), "placeholder detail is never requested automatically")

	f.press("d")
	require.Equal(t, []state.FetchMatchDetails{{ID: state.PlaceholderMatchID}}, commandsOf[state.FetchMatchDetails](f.commands.Drain()))

	f.press("p")
	require.False(t, f.store.PlaceholderEnabled)
	require.NotContains(t, f.store.Details, state.PlaceholderMatchID)
}

func TestConsume_AutoWarmOnce(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AutoWarm = config.AutoWarmMissing })
	f.store.Squads[1] = []state.SquadPlayer{{ID: 11, Name: "Saka"}}
	f.store.Players[11] = state.PlayerDetail{ID: 11, Name: "Saka"}
	teams := []state.TeamAnalysis{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Chelsea"}}

	f.tick(state.SetAnalysis{Mode: state.LeaguePremierLeague, Teams: teams})
	warms := commandsOf[state.WarmRankCache](f.commands.Drain())
	require.Len(t, warms, 1)
	require.True(t, warms[0].MissingOnly)
	require.Equal(t, teams, warms[0].Teams)
	require.Equal(t, []int{11}, warms[0].CachedPlayers)

	f.store.Squads[2] = []state.SquadPlayer{{ID: 21}}
	require.NotContains(t, warms[0].CachedSquads, 2, "command must hold a copy of the cache")

	f.tick(state.RankCacheFinished{Mode: state.LeaguePremierLeague}, state.SetAnalysis{Mode: state.LeaguePremierLeague, Teams: teams})
	require.Empty(t, commandsOf[state.WarmRankCache](f.commands.Drain()))
}

func TestConsume_AnalysisThrottle(t *testing.T) {
	f := newFixture(t, nil)
	f.press("tab", "tab")
	require.Equal(t, ViewAnalysis, f.m.view)

	f.tick()
	require.Len(t, commandsOf[state.FetchAnalysis](f.commands.Drain()), 1)

	f.now = t0.Add(time.Second)
	f.tick()
	require.Empty(t, f.commands.Drain(), "no second request while loading")

	f.tick(state.SetAnalysis{Mode: state.LeaguePremierLeague})
	require.False(t, f.store.AnalysisLoading)
	require.Empty(t, f.commands.Drain(), "failed load is retried only after the throttle")

	f.now = t0.Add(AnalysisThrottle + time.Second)
	f.tick()
	require.Len(t, commandsOf[state.FetchAnalysis](f.commands.Drain()), 1)
}

func TestConsume_PrefetchesOpenedSquad(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Players[2] = state.PlayerDetail{ID: 2, Stats: []state.PlayerStat{{Title: "Goals", Total: "3"}}}

	f.tick(state.SetSquad{Mode: state.LeaguePremierLeague, TeamID: 5, TeamName: "Arsenal", Players: []state.SquadPlayer{{ID: 1}, {ID: 2}}})
	prefetch := commandsOf[state.PrefetchPlayers](f.commands.Drain())
	require.Equal(t, []state.PrefetchPlayers{{Mode: state.LeaguePremierLeague, PlayerIDs: []int{1}}}, prefetch)
	require.Empty(t, f.store.PrefetchPending)
}

func TestAnalysisDrillDown(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Analysis = []state.TeamAnalysis{{ID: 9, Name: "Arsenal"}}
	f.m.view = ViewAnalysis

	f.press("enter")
	require.Equal(t, []state.FetchSquad{{Mode: state.LeaguePremierLeague, TeamID: 9, TeamName: "Arsenal"}}, commandsOf[state.FetchSquad](f.commands.Drain()))
	require.True(t, f.store.SquadLoading)
	require.Equal(t, paneSquad, f.m.pane)

	f.tick(state.SetSquad{Mode: state.LeaguePremierLeague, TeamID: 9, TeamName: "Arsenal", Players: []state.SquadPlayer{{ID: 7, Name: "Saka"}}})
	f.commands.Drain()

	f.press("enter")
	require.Equal(t, []state.FetchPlayer{{Mode: state.LeaguePremierLeague, PlayerID: 7, PlayerName: "Saka"}}, commandsOf[state.FetchPlayer](f.commands.Drain()))
	require.Equal(t, panePlayer, f.m.pane)

	f.m.back()
	require.Equal(t, paneSquad, f.m.pane)
}

func TestExportKey(t *testing.T) {
	var dir string
	f := newFixture(t, func(o *Options) { dir = o.ExportDir })

	f.press("x")
	require.Empty(t, f.commands.Drain(), "nothing to export without analysis")

	f.store.Analysis = []state.TeamAnalysis{{ID: 1, Name: "Arsenal"}}
	f.press("x")
	exports := commandsOf[state.ExportAnalysis](f.commands.Drain())
	require.Len(t, exports, 1)
	require.Equal(t, filepath.Join(dir, "pitchside-premier-league-20260314-150000.yaml"), exports[0].Path)
	require.Equal(t, f.store.Analysis, exports[0].Teams)
}

func TestRenderMatchDetail_ShowsCommentaryErrorWithEntries(t *testing.T) {
	minute := 12
	detail := state.MatchDetail{
		Commentary:      []state.CommentaryEntry{{Minute: &minute, Text: "Corner to Arsenal"}},
		CommentaryError: "decode commentary entry 3: unexpected end of JSON input",
	}
	out := renderMatchDetail(state.Match{ID: "1", Home: "ARS", Away: "CHE"}, detail, true, nil, prematchInfo{}, GetTheme("Pitch").Styles())

	require.Contains(t, out, "Commentary error: decode commentary entry 3: unexpected end of JSON input")
	require.Contains(t, out, "Corner to Arsenal")
	require.Less(t, strings.Index(out, "Commentary error"), strings.Index(out, "Corner to Arsenal"))
}

func TestDeltasWakeConsumer(t *testing.T) {
	f := newFixture(t, nil)
	f.deltas.Push(state.Log{Message: "[INFO] Upcoming throttled (60s)"})

	msg := waitDeltas(f.deltas)()
	require.IsType(t, deltasMsg{}, msg)

	next, cmd := f.m.Update(msg)
	require.NotNil(t, cmd, "consumer must keep waiting for the next push")
	require.Contains(t, next.(Model).store.Logs, "[INFO] Upcoming throttled (60s)")
	require.Empty(t, f.deltas.Drain())
}

func TestRenderMatchDetail_PrematchSnapshot(t *testing.T) {
	styles := GetTheme("Pitch").Styles()
	live := state.Match{ID: "1", Home: "LIV", Away: "MCI", Live: true, Minute: 30}
	pre := prematchInfo{win: state.WinProb{Home: 0.12, Draw: 0.34, Away: 0.54, Confidence: 84}, ok: true, locked: true}

	out := renderMatchDetail(live, state.MatchDetail{}, false, nil, pre, styles)
	require.Contains(t, out, "Pre-match  Home "+pct(0.12))

	out = renderMatchDetail(live, state.MatchDetail{}, false, nil, prematchInfo{locked: true}, styles)
	require.Contains(t, out, "Pre-match snapshot not captured")

	out = renderMatchDetail(state.Match{ID: "2", Home: "LEE", Away: "EVE"}, state.MatchDetail{}, false, nil, prematchInfo{win: pre.win, ok: true}, styles)
	require.Contains(t, out, "Pre-match preview, locks at kickoff")
}

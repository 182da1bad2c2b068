package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/provider"
	"github.com/five82/pitchside/internal/queue"
	"github.com/five82/pitchside/internal/state"
)

const (
	tickInterval   = 900 * time.Millisecond
	minuteInterval = time.Minute
	finalMinute    = 90
)

// Config tunes the worker schedules and fan-out.
type Config struct {
	LivePoll           time.Duration
	UpcomingPoll       time.Duration
	UpcomingWindowDays int
	DetailsInflightMax int
	FetchParallelism   int
	// LiveDate pins the live list to one day (YYYYMMDD). Empty means today.
	LiveDate string
	// LeagueIDs overrides the provider ids of a league.
	LeagueIDs map[state.LeagueMode][]int
	WinProb   WinProbParams
}

// Options wires a Worker.
type Options struct {
	Config   Config
	Fetcher  provider.Fetcher
	Commands *queue.Queue[state.Command]
	Deltas   *queue.Queue[state.Delta]
	Logger   *logging.Logger
	Now      func() time.Time
	Rand     *rand.Rand
}

// Worker owns every network call and timer. It reads Commands and emits
// Deltas; it never sees the consumer's store.
type Worker struct {
	cfg      Config
	fetcher  provider.Fetcher
	commands *queue.Queue[state.Command]
	deltas   *queue.Queue[state.Delta]
	logger   *logging.Logger
	now      func() time.Time
	rng      *rand.Rand

	// details runs detail fetches; jobs tracks every background task.
	details *ants.Pool
	jobs    sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}

	// Owned by the Run goroutine.
	matches      []state.Match
	lastLive     time.Time
	lastMinute   time.Time
	lastUpcoming time.Time
}

// New builds a Worker. Zero config values select defaults.
func New(opts Options) (*Worker, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("feed: fetcher is required")
	}
	if opts.Commands == nil || opts.Deltas == nil {
		return nil, errors.New("feed: command and delta queues are required")
	}
	cfg := opts.Config.withDefaults()

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "feed")

	pool, err := ants.NewPool(cfg.DetailsInflightMax, ants.WithPanicHandler(func(p any) {
		logger.Error("detail job panicked", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create detail pool")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &Worker{
		cfg:        cfg,
		fetcher:    opts.Fetcher,
		commands:   opts.Commands,
		deltas:     opts.Deltas,
		logger:     logger,
		now:        now,
		rng:        rng,
		details:    pool,
		inflight:   make(map[string]struct{}),
		lastMinute: now(),
	}, nil
}

func (c Config) withDefaults() Config {
	if c.LivePoll <= 0 {
		c.LivePoll = 15 * time.Second
	}
	if c.UpcomingPoll <= 0 {
		c.UpcomingPoll = time.Minute
	}
	if c.UpcomingWindowDays <= 0 {
		c.UpcomingWindowDays = 7
	}
	if c.DetailsInflightMax <= 0 {
		c.DetailsInflightMax = 8
	}
	if c.FetchParallelism <= 0 {
		c.FetchParallelism = 6
	}
	if c.WinProb == (WinProbParams{}) {
		c.WinProb = DefaultWinProbParams()
	}
	return c
}

// leagueID returns the provider id used to fetch a league's analysis.
func (c Config) leagueID(mode state.LeagueMode) int {
	if ids := c.LeagueIDs[mode]; len(ids) > 0 {
		return ids[0]
	}
	return mode.DefaultIDs()[0]
}

// allowedLeagues returns every configured league id.
func (c Config) allowedLeagues() map[int]bool {
	out := make(map[int]bool)
	for _, mode := range state.AllLeagues() {
		ids := c.LeagueIDs[mode]
		if len(ids) == 0 {
			ids = mode.DefaultIDs()
		}
		for _, id := range ids {
			out[id] = true
		}
	}
	return out
}

// Run drives the worker until ctx is cancelled. Background jobs are waited
// for before it returns.
func (w *Worker) Run(ctx context.Context) error {
	defer w.close()

	w.logger.Info("worker started",
		"live_poll", w.cfg.LivePoll.String(),
		"upcoming_poll", w.cfg.UpcomingPoll.String(),
		"details_inflight_max", w.cfg.DetailsInflightMax,
	)
	w.step(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return nil
		case <-w.commands.Ready():
			for _, cmd := range w.commands.Drain() {
				w.handle(ctx, cmd)
			}
		case <-ticker.C:
			w.step(ctx)
		}
	}
}

func (w *Worker) close() {
	w.jobs.Wait()
	w.details.Release()
}

// wait blocks until every background job has finished.
func (w *Worker) wait() {
	w.jobs.Wait()
}

// step runs one tick: pending commands, then the live, minute and jitter
// schedules.
func (w *Worker) step(ctx context.Context) {
	for _, cmd := range w.commands.Drain() {
		w.handle(ctx, cmd)
	}

	now := w.now()
	if w.lastLive.IsZero() || now.Sub(w.lastLive) >= w.cfg.LivePoll {
		w.refreshLive(ctx)
		w.lastLive = now
	}

	if now.Sub(w.lastMinute) >= minuteInterval {
		w.tickMinutes()
		w.lastMinute = now
	} else if len(w.matches) > 0 {
		w.jitterOne()
	}
}

func (w *Worker) emit(d state.Delta) {
	w.deltas.Push(d)
}

func (w *Worker) info(format string, args ...any) {
	w.emit(state.Log{Message: "[INFO] " + fmt.Sprintf(format, args...)})
}

// warn reports a recoverable failure to the in-app log and the process log.
func (w *Worker) warn(what string, err error, kv ...any) {
	w.emit(state.Log{Message: fmt.Sprintf("[WARN] %s: %v", what, err)})
	w.logger.Warn(what, append(kv, "error", err)...)
}

func (w *Worker) handle(ctx context.Context, cmd state.Command) {
	switch c := cmd.(type) {
	case state.FetchMatchDetails:
		w.fetchDetails(ctx, c.ID, false)
	case state.FetchMatchDetailsBasic:
		w.fetchDetails(ctx, c.ID, true)
	case state.FetchUpcoming:
		w.fetchUpcoming(ctx)
	case state.FetchAnalysis:
		w.jobs.Go(func() { w.fetchAnalysis(ctx, c.Mode) })
	case state.FetchSquad:
		w.jobs.Go(func() { w.fetchSquad(ctx, c) })
	case state.FetchPlayer:
		w.jobs.Go(func() { w.fetchPlayer(ctx, c) })
	case state.PrefetchPlayers:
		w.jobs.Go(func() { w.prefetchPlayers(ctx, c) })
	case state.WarmRankCache:
		w.jobs.Go(func() { w.warmRankCache(ctx, c) })
	case state.ExportAnalysis:
		w.jobs.Go(func() { w.exportAnalysis(c) })
	default:
		w.logger.Warn("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

// refreshLive fetches the live list and emits the merged snapshot.
func (w *Worker) refreshLive(ctx context.Context) {
	rows, err := w.fetcher.FetchMatches(ctx, w.cfg.LiveDate)
	if err != nil {
		w.warn("Live fetch error", err)
		return
	}
	w.matches = w.merge(rows)
	w.emit(state.SetMatches{Matches: slices.Clone(w.matches)})
}

// merge folds fresh rows into the previous snapshot by match id. A score
// change emits a goal event and reseeds the estimate.
func (w *Worker) merge(rows []provider.MatchRow) []state.Match {
	previous := make(map[string]state.Match, len(w.matches))
	for _, m := range w.matches {
		previous[m.ID] = m
	}

	out := make([]state.Match, 0, len(rows))
	for _, row := range rows {
		prev, known := previous[row.ID]
		live := row.Started && !row.Finished && !row.Cancelled

		minute := 0
		switch {
		case live && row.HasMinute:
			minute = row.Minute
		case live && known:
			minute = prev.Minute
		case live:
			minute = 1
		case row.Finished:
			minute = finalMinute
		}

		win := w.cfg.WinProb.Seed(row.ScoreHome, row.ScoreAway, live, row.Finished)
		var kickoff *state.WinProb
		switch {
		case known:
			kickoff = prev.Kickoff
		case live || minute > 0:
			pre := w.cfg.WinProb.Prematch()
			kickoff = &pre
		}
		if known {
			win = prev.Win
			if row.ScoreHome != prev.ScoreHome || row.ScoreAway != prev.ScoreAway {
				scorer := row.Away
				if row.ScoreHome > prev.ScoreHome {
					scorer = row.Home
				}
				w.emit(state.AddEvent{ID: row.ID, Event: state.Event{
					Minute:      minute,
					Kind:        state.EventGoal,
					Team:        scorer,
					Description: "Goal",
				}})
				w.emit(state.Log{Message: fmt.Sprintf("[ALERT] Goal: %s %d-%d %s", scorer, row.ScoreHome, row.ScoreAway, row.Away)})
				w.logger.Info("goal", "match_id", row.ID, "team", scorer, "score", fmt.Sprintf("%d-%d", row.ScoreHome, row.ScoreAway))
				win = w.cfg.WinProb.Seed(row.ScoreHome, row.ScoreAway, live, row.Finished)
			}
			win.DeltaHome = win.Home - prev.Win.Home
		}
		win.Quality = state.QualityBasic
		if live {
			win.Quality = state.QualityEvent
		}

		out = append(out, state.Match{
			ID:         row.ID,
			LeagueID:   row.LeagueID,
			LeagueName: row.LeagueName,
			Home:       provider.AbbreviateTeam(row.Home),
			Away:       provider.AbbreviateTeam(row.Away),
			ScoreHome:  row.ScoreHome,
			ScoreAway:  row.ScoreAway,
			Minute:     minute,
			Live:       live,
			Win:        win,
			Kickoff:    kickoff,
		})
	}
	return out
}

// tickMinutes advances the clock of every live match still in play.
func (w *Worker) tickMinutes() {
	for i := range w.matches {
		m := &w.matches[i]
		if !m.Live || m.Minute >= finalMinute || m.ID == state.PlaceholderMatchID {
			continue
		}
		m.Minute++
		w.emit(state.UpsertMatch{Match: *m})
	}
}

// jitterOne perturbs the estimate of one randomly chosen match when it is
// live.
func (w *Worker) jitterOne() {
	m := &w.matches[w.rng.IntN(len(w.matches))]
	if !m.Live || m.ID == state.PlaceholderMatchID {
		return
	}
	m.Win = w.cfg.WinProb.Jitter(m.Win, w.rng)
	w.emit(state.UpsertMatch{Match: *m})
}

// fetchDetails schedules one detail fetch. Duplicate ids and requests over
// the in-flight limit are dropped; the consumer asks again later.
func (w *Worker) fetchDetails(ctx context.Context, id string, basic bool) {
	if id == state.PlaceholderMatchID {
		w.info("Placeholder details ready (skipping fetch)")
		return
	}
	if !w.claim(id) {
		w.logger.Debug("detail fetch dropped", "match_id", id, "basic", basic)
		return
	}

	w.jobs.Add(1)
	err := w.details.Submit(func() {
		defer w.jobs.Done()
		defer w.release(id)
		w.runDetails(ctx, id, basic)
	})
	if err != nil {
		w.jobs.Done()
		w.release(id)
		w.warn("Match details error", errors.Wrap(err, "schedule fetch"), "match_id", id)
	}
}

func (w *Worker) claim(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inflight[id]; busy || len(w.inflight) >= w.cfg.DetailsInflightMax {
		return false
	}
	w.inflight[id] = struct{}{}
	return true
}

func (w *Worker) release(id string) {
	w.mu.Lock()
	delete(w.inflight, id)
	w.mu.Unlock()
}

func (w *Worker) runDetails(ctx context.Context, id string, basic bool) {
	var (
		detail state.MatchDetail
		err    error
	)
	if basic {
		detail, err = w.fetcher.FetchMatchDetailsBasic(ctx, id)
	} else {
		detail, err = w.fetcher.FetchMatchDetails(ctx, id)
	}
	if err != nil {
		w.warn("Match details error", err, "match_id", id)
		// Keep what the consumer already has and surface the failure.
		w.emit(state.SetMatchDetailsBasic{ID: id, Detail: state.MatchDetail{CommentaryError: err.Error()}})
		return
	}
	if detail.CommentaryError != "" {
		w.logger.Warn("commentary decode failed", "match_id", id, "entries", len(detail.Commentary), "error", detail.CommentaryError)
	}
	if basic {
		w.emit(state.SetMatchDetailsBasic{ID: id, Detail: detail, FetchedAt: w.now()})
		return
	}
	w.emit(state.SetMatchDetails{ID: id, Detail: detail, FetchedAt: w.now()})
}

// fetchUpcoming fetches the upcoming window, at most once per poll interval.
func (w *Worker) fetchUpcoming(ctx context.Context) {
	now := w.now()
	if !w.lastUpcoming.IsZero() && now.Sub(w.lastUpcoming) < w.cfg.UpcomingPoll {
		w.info("Upcoming throttled (%ds)", int(w.cfg.UpcomingPoll.Seconds()))
		return
	}
	w.lastUpcoming = now

	allowed := w.cfg.allowedLeagues()
	seen := make(map[string]bool)
	var items []state.UpcomingMatch
	for day := range w.cfg.UpcomingWindowDays {
		date := now.AddDate(0, 0, day).Format("20060102")
		rows, err := w.fetcher.FetchUpcoming(ctx, date)
		if err != nil {
			w.warn("Upcoming fetch error", err, "date", date)
			return
		}
		for _, m := range rows {
			if m.LeagueID != 0 && len(allowed) > 0 && !allowed[m.LeagueID] {
				continue
			}
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			m.Win = w.cfg.WinProb.Prematch()
			items = append(items, m)
		}
	}
	if len(items) == 0 {
		w.emit(state.Log{Message: "[WARN] Upcoming returned no items for configured leagues"})
	}
	w.emit(state.SetUpcoming{Matches: items, FetchedAt: now})
}

func (w *Worker) fetchAnalysis(ctx context.Context, mode state.LeagueMode) {
	teams, err := w.fetcher.FetchLeagueTeams(ctx, w.cfg.leagueID(mode))
	if err != nil {
		w.warn("Analysis fetch", err, "league", mode.Slug())
	}
	w.emit(state.SetAnalysis{Mode: mode, Teams: teams, FetchedAt: w.now()})
}

func (w *Worker) fetchSquad(ctx context.Context, c state.FetchSquad) {
	squad, err := w.fetcher.FetchSquad(ctx, c.TeamID)
	if err != nil {
		w.warn("Squad fetch failed", err, "team_id", c.TeamID)
		w.emit(state.SetSquad{Mode: c.Mode, TeamID: c.TeamID, TeamName: c.TeamName})
		return
	}
	name := squad.TeamName
	if name == "" {
		name = c.TeamName
	}
	w.emit(state.SetSquad{Mode: c.Mode, TeamID: c.TeamID, TeamName: name, Players: squad.Players})
}

func (w *Worker) fetchPlayer(ctx context.Context, c state.FetchPlayer) {
	detail, err := w.fetcher.FetchPlayer(ctx, c.PlayerID)
	if err != nil {
		w.warn("Player fetch failed", err, "player_id", c.PlayerID)
		detail = state.PlayerDetail{ID: c.PlayerID, Name: c.PlayerName}
	}
	w.emit(state.SetPlayerDetail{Mode: c.Mode, Detail: detail})
}

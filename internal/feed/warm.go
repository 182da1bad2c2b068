package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/five82/pitchside/internal/export"
	"github.com/five82/pitchside/internal/provider"
	"github.com/five82/pitchside/internal/state"
)

type squadResult struct {
	team  state.TeamAnalysis
	squad provider.Squad
	err   error
}

type playerJob struct {
	id   int
	name string
	team string
}

// warmProgress emits RankCacheProgress from any goroutine. Reports are
// serialized so Current never goes backwards in emission order.
type warmProgress struct {
	w    *Worker
	mode state.LeagueMode

	mu      sync.Mutex
	current int
	total   int
}

func (p *warmProgress) setTotal(n int) {
	p.mu.Lock()
	p.total = n
	p.mu.Unlock()
}

func (p *warmProgress) report(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitLocked(format, args...)
}

func (p *warmProgress) step(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.emitLocked(format, args...)
}

func (p *warmProgress) emitLocked(format string, args ...any) {
	p.w.emit(state.RankCacheProgress{Mode: p.mode, Progress: state.Progress{
		Current: p.current,
		Total:   p.total,
		Message: fmt.Sprintf(format, args...),
	}})
}

// errorList collects per-item failures from concurrent fetches.
type errorList struct {
	mu   sync.Mutex
	msgs []string
}

func (e *errorList) add(format string, args ...any) {
	e.mu.Lock()
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *errorList) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.msgs...)
}

// warmRankCache fetches every squad and then every squad member so rankings
// can be computed from cache. With MissingOnly, cached squads and players
// are reused instead of refetched.
func (w *Worker) warmRankCache(ctx context.Context, c state.WarmRankCache) {
	errs := &errorList{}
	teams := c.Teams
	if len(teams) == 0 {
		fetched, err := w.fetcher.FetchLeagueTeams(ctx, w.cfg.leagueID(c.Mode))
		if err != nil {
			errs.add("teams: %v", err)
		}
		teams = fetched
	}

	var cachedPlayers map[int]bool
	var ready []squadResult
	var missing []state.TeamAnalysis
	if c.MissingOnly {
		cachedPlayers = make(map[int]bool, len(c.CachedPlayers))
		for _, id := range c.CachedPlayers {
			cachedPlayers[id] = true
		}
	}
	for _, t := range teams {
		if players := c.CachedSquads[t.ID]; c.MissingOnly && len(players) > 0 {
			ready = append(ready, squadResult{team: t, squad: provider.Squad{TeamName: t.Name, Players: players}})
			continue
		}
		missing = append(missing, t)
	}

	progress := &warmProgress{w: w, mode: c.Mode}
	initial := len(missing) + len(playerJobs(ready, cachedPlayers, nil))
	if initial == 0 {
		w.finishWarm(c.Mode, errs.list())
		return
	}
	progress.setTotal(initial)
	progress.report("Warming cache (%d teams)", len(teams))

	squads := pool.NewWithResults[squadResult]().WithMaxGoroutines(w.cfg.FetchParallelism)
	for _, t := range missing {
		squads.Go(func() squadResult {
			squad, err := w.fetcher.FetchSquad(ctx, t.ID)
			if err != nil {
				errs.add("squad %s (%d): %v", t.Name, t.ID, err)
				progress.step("Squad failed: %s", t.Name)
				return squadResult{team: t, err: err}
			}
			w.emit(state.CacheSquad{Mode: c.Mode, TeamID: t.ID, Players: squad.Players})
			progress.step("Squad loaded: %s (%d players)", t.Name, len(squad.Players))
			return squadResult{team: t, squad: squad}
		})
	}
	fetched := squads.Wait()

	seen := make(map[int]bool)
	jobs := playerJobs(ready, cachedPlayers, seen)
	jobs = append(jobs, playerJobs(fetched, cachedPlayers, seen)...)
	progress.setTotal(len(missing) + len(jobs))

	w.fetchPlayers(ctx, jobs, func(job playerJob, detail state.PlayerDetail, err error) {
		if err != nil {
			errs.add("player detail %s (%d): %v", job.name, job.id, err)
		} else {
			w.emit(state.CachePlayerDetail{Mode: c.Mode, Detail: detail})
		}
		progress.step("Player: %s (%s)", job.name, job.team)
	})

	failures := errs.list()
	w.logger.Info("rank cache warmed", "league", c.Mode.Slug(), "teams", len(teams), "players", len(jobs), "errors", len(failures))
	w.finishWarm(c.Mode, failures)
}

// finishWarm ends a warm job. After failures the rankings are forced dirty
// so they are rebuilt from whatever did arrive, even when no cache delta
// was emitted.
func (w *Worker) finishWarm(mode state.LeagueMode, failures []string) {
	if len(failures) > 0 {
		w.emit(state.SetRankingsDirty{})
	}
	w.emit(state.RankCacheFinished{Mode: mode, Errors: failures})
}

// playerJobs lists squad members that still need a fetch, skipping cached
// ids and ids already in seen. A nil seen map disables de-duplication
// across calls.
func playerJobs(squads []squadResult, cached map[int]bool, seen map[int]bool) []playerJob {
	if seen == nil {
		seen = make(map[int]bool)
	}
	var out []playerJob
	for _, r := range squads {
		if r.err != nil {
			continue
		}
		for _, p := range r.squad.Players {
			if cached[p.ID] || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, playerJob{id: p.ID, name: p.Name, team: r.team.Name})
		}
	}
	return out
}

// fetchPlayers fetches jobs on a bounded pool and calls done for each.
func (w *Worker) fetchPlayers(ctx context.Context, jobs []playerJob, done func(playerJob, state.PlayerDetail, error)) {
	if len(jobs) == 0 {
		return
	}
	players, err := ants.NewPool(w.cfg.FetchParallelism)
	if err != nil {
		for _, job := range jobs {
			done(job, state.PlayerDetail{}, err)
		}
		return
	}
	defer players.Release()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		if err := players.Submit(func() {
			defer wg.Done()
			detail, err := w.fetcher.FetchPlayer(ctx, job.id)
			if err == nil && detail.ID == 0 {
				detail.ID = job.id
			}
			done(job, detail, err)
		}); err != nil {
			wg.Done()
			done(job, state.PlayerDetail{}, err)
		}
	}
	wg.Wait()
}

func (w *Worker) prefetchPlayers(ctx context.Context, c state.PrefetchPlayers) {
	jobs := make([]playerJob, 0, len(c.PlayerIDs))
	for _, id := range c.PlayerIDs {
		jobs = append(jobs, playerJob{id: id})
	}
	var failed atomic.Int64
	w.fetchPlayers(ctx, jobs, func(job playerJob, detail state.PlayerDetail, err error) {
		if err != nil {
			failed.Add(1)
			w.logger.Debug("player prefetch failed", "player_id", job.id, "error", err)
			return
		}
		w.emit(state.CachePlayerDetail{Mode: c.Mode, Detail: detail})
	})
	if n := failed.Load(); n > 0 {
		w.emit(state.Log{Message: fmt.Sprintf("[WARN] Player prefetch: %d errors", n)})
	}
}

func (w *Worker) exportAnalysis(c state.ExportAnalysis) {
	w.emit(state.ExportStarted{Path: c.Path, Total: 3})
	doc := export.NewDocument(c.Mode, c.Teams, c.Rankings, w.now())
	sum, err := export.Write(c.Path, doc, func(p state.Progress) {
		w.emit(state.ExportProgress{Progress: p})
	})
	if err != nil {
		w.logger.Warn("analysis export failed", "path", c.Path, "error", err)
		w.emit(state.ExportFinished{Path: c.Path, Err: err.Error(), At: w.now()})
		return
	}
	w.logger.Info("analysis exported", "path", c.Path, "teams", sum.Teams, "rankings", sum.Rankings)
	w.emit(state.ExportFinished{Path: c.Path, At: w.now()})
}

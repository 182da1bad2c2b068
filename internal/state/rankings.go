package state

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type canonStat int

const (
	statAppearances canonStat = iota
	statMinutes
	statGoals
	statAssists
	statXG
	statXA
	statShots
	statShotsOnTarget
	statKeyPasses
	statChancesCreated
	statDribbles
	statTackles
	statInterceptions
	statClearances
	statBlocks
	statRecoveries
	statDuelsWon
	statAerialsWon
	statSaves
	statSavePct
	statCleanSheets
	statGoalsConceded
	statRating
)

type statMatcher struct {
	stat     canonStat
	needles  []string
	excludes []string
	percent  bool
}

var statMatchers = []statMatcher{
	{stat: statAppearances, needles: []string{"appearances", "matches played", "apps"}},
	{stat: statMinutes, needles: []string{"minutes played", "minutes"}},
	{stat: statRating, needles: []string{"rating"}},
	{stat: statGoals, needles: []string{"goals"}, excludes: []string{"goals conceded", "expected"}},
	{stat: statAssists, needles: []string{"assists"}, excludes: []string{"expected"}},
	{stat: statXG, needles: []string{"expected goals", "xg"}},
	{stat: statXA, needles: []string{"expected assists", "xa"}},
	{stat: statShotsOnTarget, needles: []string{"shots on target"}},
	{stat: statShots, needles: []string{"shots"}, excludes: []string{"shots on target"}},
	{stat: statKeyPasses, needles: []string{"key passes"}},
	{stat: statChancesCreated, needles: []string{"chances created"}},
	{stat: statDribbles, needles: []string{"dribbles"}},
	{stat: statTackles, needles: []string{"tackles"}},
	{stat: statInterceptions, needles: []string{"interceptions"}},
	{stat: statClearances, needles: []string{"clearances"}},
	{stat: statBlocks, needles: []string{"blocks"}},
	{stat: statRecoveries, needles: []string{"recoveries"}},
	{stat: statDuelsWon, needles: []string{"duels won"}, excludes: []string{"aerial"}},
	{stat: statAerialsWon, needles: []string{"aerial duels won", "aerial won", "aerials won"}},
	{stat: statSaves, needles: []string{"saves"}},
	{stat: statSavePct, needles: []string{"save%", "save %", "save percentage"}, percent: true},
	{stat: statCleanSheets, needles: []string{"clean sheets"}},
	{stat: statGoalsConceded, needles: []string{"goals conceded"}},
}

type scoredStat struct {
	stat        canonStat
	lowerBetter bool
}

var attackStats = []scoredStat{
	{stat: statGoals}, {stat: statAssists}, {stat: statXG}, {stat: statXA},
	{stat: statShotsOnTarget}, {stat: statShots}, {stat: statKeyPasses},
	{stat: statChancesCreated}, {stat: statDribbles}, {stat: statRating},
}

var defenseStats = []scoredStat{
	{stat: statTackles}, {stat: statInterceptions}, {stat: statClearances},
	{stat: statBlocks}, {stat: statRecoveries}, {stat: statDuelsWon},
	{stat: statAerialsWon}, {stat: statSaves}, {stat: statSavePct},
	{stat: statCleanSheets}, {stat: statGoalsConceded, lowerBetter: true},
	{stat: statRating},
}

const (
	fullMinutes         = 900.0
	fullAppearances     = 10.0
	participationWeight = 1.5
)

type playerFeatures struct {
	role       RoleCategory
	playerID   int
	playerName string
	teamID     int
	teamName   string
	club       string
	stats      map[canonStat]float64
}

type distKey struct {
	role RoleCategory
	stat canonStat
}

type dist struct {
	mean, std float64
}

// ComputeRankings builds role rankings from cached squads and player
// details. Teams without a cached squad and players without usable stats are
// skipped. The output is sorted by role, attack score descending and player
// id, so equal inputs always produce equal rows.
func ComputeRankings(teams []TeamAnalysis, squads map[int][]SquadPlayer, players map[int]PlayerDetail) []RankingRow {
	var features []playerFeatures
	for _, team := range teams {
		for _, sp := range squads[team.ID] {
			detail, ok := players[sp.ID]
			if !ok || detail.IsStub() {
				continue
			}
			role, ok := RoleFromText(sp.Role)
			if !ok {
				continue
			}
			features = append(features, playerFeatures{
				role:       role,
				playerID:   sp.ID,
				playerName: sp.Name,
				teamID:     team.ID,
				teamName:   team.Name,
				club:       sp.Club,
				stats:      collectStats(detail),
			})
		}
	}

	attackDist := buildDists(features, attackStats)
	defenseDist := buildDists(features, defenseStats)

	rows := make([]RankingRow, 0, len(features))
	for _, f := range features {
		row := RankingRow{
			Role:         f.role,
			PlayerID:     f.playerID,
			PlayerName:   f.playerName,
			TeamID:       f.teamID,
			TeamName:     f.teamName,
			Club:         f.club,
			AttackScore:  compositeScore(f, attackStats, attackDist),
			DefenseScore: compositeScore(f, defenseStats, defenseDist),
		}
		if r, ok := f.stats[statRating]; ok {
			row.Rating = r
			row.HasRating = true
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b RankingRow) int {
		if c := cmp.Compare(a.Role, b.Role); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AttackScore, a.AttackScore); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return rows
}

// RecomputeRankings rebuilds rankings from the cache. When the analysis team
// list is empty it does nothing and returns false, leaving RankingsDirty set
// so a later call retries once data arrives. The selection follows the
// previously selected player when it is still present.
func (s *Store) RecomputeRankings(now time.Time) bool {
	if len(s.Analysis) == 0 {
		return false
	}

	prevID := 0
	if s.RankingsSelected >= 0 && s.RankingsSelected < len(s.Rankings) {
		prevID = s.Rankings[s.RankingsSelected].PlayerID
	}

	rows := ComputeRankings(s.Analysis, s.Squads, s.Players)
	if len(rows) == 0 {
		s.RankingsProgress.Message = "No cached player data yet (warming cache...)"
	} else {
		s.RankingsProgress.Message = fmt.Sprintf("Rankings ready (cached: %d)", len(rows))
	}
	s.Rankings = rows
	s.RankingsUpdated = now

	if i := slices.IndexFunc(rows, func(r RankingRow) bool { return r.PlayerID == prevID }); prevID != 0 && i >= 0 {
		s.RankingsSelected = i
	} else {
		s.RankingsSelected = max(0, min(s.RankingsSelected, len(rows)-1))
	}

	s.RankingsDirty = false
	return true
}

func collectStats(detail PlayerDetail) map[canonStat]float64 {
	out := make(map[canonStat]float64)
	for _, m := range statMatchers {
		if v, ok := findStat(detail, m); ok {
			out[m.stat] = v
		}
	}
	return out
}

func findStat(detail PlayerDetail, m statMatcher) (float64, bool) {
	for _, st := range detail.Stats {
		title := strings.ToLower(st.Title)
		if !containsAny(title, m.needles) || containsAny(title, m.excludes) {
			continue
		}
		for _, raw := range []string{st.Per90, st.Total} {
			if m.percent {
				raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
			}
			if v, ok := parseNumber(raw); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, false
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func directed(v float64, lowerBetter bool) float64 {
	if lowerBetter {
		return -v
	}
	return v
}

func buildDists(features []playerFeatures, specs []scoredStat) map[distKey]dist {
	out := make(map[distKey]dist)
	for _, role := range []RoleCategory{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleAttacker} {
		for _, metric := range specs {
			var values []float64
			for _, f := range features {
				if f.role != role {
					continue
				}
				if v, ok := f.stats[metric.stat]; ok {
					values = append(values, directed(v, metric.lowerBetter))
				}
			}
			if len(values) < 2 {
				continue
			}
			var sum float64
			for _, v := range values {
				sum += v
			}
			mean := sum / float64(len(values))
			var variance float64
			for _, v := range values {
				variance += (v - mean) * (v - mean)
			}
			std := math.Sqrt(variance / float64(len(values)))
			if std <= 1e-9 {
				continue
			}
			out[distKey{role, metric.stat}] = dist{mean: mean, std: std}
		}
	}
	return out
}

func compositeScore(f playerFeatures, specs []scoredStat, dists map[distKey]dist) float64 {
	var sum float64
	n := 0
	for _, metric := range specs {
		v, ok := f.stats[metric.stat]
		if !ok {
			continue
		}
		d, ok := dists[distKey{f.role, metric.stat}]
		if !ok {
			continue
		}
		z := (directed(v, metric.lowerBetter) - d.mean) / d.std
		if !math.IsInf(z, 0) && !math.IsNaN(z) {
			sum += z
			n++
		}
	}
	if n == 0 {
		return math.Inf(-1)
	}
	return participationAdjust(f, sum/float64(n))
}

// participationAdjust shrinks scores toward zero and penalizes players with
// few minutes so one good match cannot top a list.
func participationAdjust(f playerFeatures, base float64) float64 {
	var rel float64
	if minutes := f.stats[statMinutes]; minutes > 0 {
		rel = math.Sqrt(min(1, minutes/fullMinutes))
	} else if apps := f.stats[statAppearances]; apps > 0 {
		rel = math.Sqrt(min(1, apps/fullAppearances))
	}
	return base*rel - (1-rel)*participationWeight
}

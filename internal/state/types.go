package state

import "strings"

// ModelQuality describes how much data backed a win-probability estimate.
type ModelQuality int

const (
	QualityBasic ModelQuality = iota
	QualityEvent
	QualityTrack
)

func (q ModelQuality) String() string {
	switch q {
	case QualityEvent:
		return "EVENT"
	case QualityTrack:
		return "TRACK"
	default:
		return "BASIC"
	}
}

// EventKind classifies a match event.
type EventKind int

const (
	EventShot EventKind = iota
	EventCard
	EventSub
	EventGoal
)

func (k EventKind) String() string {
	switch k {
	case EventCard:
		return "CARD"
	case EventSub:
		return "SUB"
	case EventGoal:
		return "GOAL"
	default:
		return "SHOT"
	}
}

// WinProb is a home/draw/away probability triple. Each value is in [0,1]
// and the three sum to 1 within floating point tolerance.
type WinProb struct {
	Home       float64
	Draw       float64
	Away       float64
	DeltaHome  float64 // change in Home since the previous snapshot of the same match
	Quality    ModelQuality
	Confidence int
}

// Match is one fixture row in the live list.
type Match struct {
	ID         string
	LeagueID   int // zero when the source did not report one
	LeagueName string
	Home       string
	Away       string
	ScoreHome  int
	ScoreAway  int
	Minute     int
	Live       bool
	Win        WinProb
	// Kickoff is a 0-0 estimate the worker attaches to a match it first
	// sees after kickoff, used as its pre-match snapshot.
	Kickoff *WinProb
}

// Started reports whether the match has kicked off.
func (m Match) Started() bool {
	return m.Live || m.Minute > 0
}

// Event is one entry in a match timeline.
type Event struct {
	Minute      int
	Kind        EventKind
	Team        string
	Player      string
	Description string
}

// StatRow is one home/away statistic line.
type StatRow struct {
	Group string
	Name  string
	Home  string
	Away  string
}

// PlayerSlot is one player in a lineup.
type PlayerSlot struct {
	ID       int
	Name     string
	Number   int
	Position string
	Starter  bool
}

// LineupSide is the roster for one team.
type LineupSide struct {
	Team      string
	TeamAbbr  string
	Formation string
	Starting  []PlayerSlot
	Subs      []PlayerSlot
}

// Lineups holds both sides, home first.
type Lineups struct {
	Sides []LineupSide
}

// CommentaryEntry is one normalized ticker line. Minute is nil when the
// source reported no fixed minute.
type CommentaryEntry struct {
	Minute     *int
	MinutePlus *int
	Team       string
	Text       string
}

// MatchDetail holds everything fetched for a single match beyond the summary.
//
// CommentaryError and Commentary may both be set: a partially decoded ticker
// keeps the entries read before the failure and reports the failure here.
type MatchDetail struct {
	HomeTeam        string
	AwayTeam        string
	Events          []Event
	Stats           []StatRow
	Lineups         *Lineups
	Commentary      []CommentaryEntry
	CommentaryError string
}

// UpcomingMatch is a fixture that has not kicked off.
type UpcomingMatch struct {
	ID         string
	LeagueID   int
	LeagueName string
	Round      string
	Kickoff    string // UTC, "2006-01-02T15:04"
	Home       string
	Away       string
	Win        WinProb // pre-match estimate; zero when unknown
}

// TeamAnalysis is one team in a league's analysis cache.
type TeamAnalysis struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Rank   int    `json:"rank,omitempty" yaml:"rank,omitempty"`
	Points int    `json:"points,omitempty" yaml:"points,omitempty"`
}

// SquadPlayer is one member of a team's squad.
type SquadPlayer struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Role        string `json:"role" yaml:"role"`
	Club        string `json:"club" yaml:"club"`
	Age         int    `json:"age,omitempty" yaml:"age,omitempty"`
	ShirtNumber int    `json:"shirt_number,omitempty" yaml:"shirt_number,omitempty"`
}

// PlayerStat is one season statistic. Per90 is empty when the source only
// reports totals.
type PlayerStat struct {
	Title string `json:"title" yaml:"title"`
	Total string `json:"total" yaml:"total"`
	Per90 string `json:"per90,omitempty" yaml:"per90,omitempty"`
}

// PlayerDetail is the per-player data used by rankings.
type PlayerDetail struct {
	ID       int          `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Team     string       `json:"team,omitempty" yaml:"team,omitempty"`
	Position string       `json:"position,omitempty" yaml:"position,omitempty"`
	Stats    []PlayerStat `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// IsStub reports whether the detail carries no usable statistics, as
// produced for players whose fetch failed.
func (p PlayerDetail) IsStub() bool {
	return len(p.Stats) == 0
}

// RoleCategory groups squad positions for rankings.
type RoleCategory int

const (
	RoleGoalkeeper RoleCategory = iota
	RoleDefender
	RoleMidfielder
	RoleAttacker
)

func (r RoleCategory) String() string {
	switch r {
	case RoleGoalkeeper:
		return "GK"
	case RoleDefender:
		return "DF"
	case RoleMidfielder:
		return "MF"
	default:
		return "FW"
	}
}

// RoleFromText maps free-form squad role text onto a category.
func RoleFromText(raw string) (RoleCategory, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "gk" || strings.Contains(s, "keeper"):
		return RoleGoalkeeper, true
	case s == "df" || strings.Contains(s, "defender") || strings.Contains(s, "back"):
		return RoleDefender, true
	case s == "mf" || strings.Contains(s, "midfield"):
		return RoleMidfielder, true
	case s == "fw" || strings.Contains(s, "attacker") || strings.Contains(s, "forward") ||
		strings.Contains(s, "striker") || strings.Contains(s, "wing"):
		return RoleAttacker, true
	}
	return 0, false
}

// RankingRow is one ranked player.
type RankingRow struct {
	Role         RoleCategory `json:"role" yaml:"role"`
	PlayerID     int          `json:"player_id" yaml:"player_id"`
	PlayerName   string       `json:"player_name" yaml:"player_name"`
	TeamID       int          `json:"team_id" yaml:"team_id"`
	TeamName     string       `json:"team_name" yaml:"team_name"`
	Club         string       `json:"club" yaml:"club"`
	AttackScore  float64      `json:"attack_score" yaml:"attack_score"`
	DefenseScore float64      `json:"defense_score" yaml:"defense_score"`
	Rating       float64      `json:"rating,omitempty" yaml:"rating,omitempty"`
	HasRating    bool         `json:"has_rating,omitempty" yaml:"has_rating,omitempty"`
}

package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/state"
)

const maxLiveMinute = 130

// MatchRow is one fixture from the matches endpoint, before any
// probabilities are attached.
type MatchRow struct {
	ID         string
	LeagueID   int
	LeagueName string
	Home       string
	Away       string
	ScoreHome  int
	ScoreAway  int
	UTCTime    string
	Minute     int
	HasMinute  bool
	Started    bool
	Finished   bool
	Cancelled  bool
}

type matchesPayload struct {
	Leagues []leaguePayload `json:"leagues"`
}

type leaguePayload struct {
	ID        int            `json:"id"`
	PrimaryID *int           `json:"primaryId"`
	Name      string         `json:"name"`
	Matches   []matchPayload `json:"matches"`
}

type matchPayload struct {
	ID              flexString    `json:"id"`
	TournamentStage flexString    `json:"tournamentStage"`
	Time            string        `json:"time"`
	Home            teamPayload   `json:"home"`
	Away            teamPayload   `json:"away"`
	Status          statusPayload `json:"status"`
}

type teamPayload struct {
	Name      string  `json:"name"`
	ShortName string  `json:"shortName"`
	Score     flexInt `json:"score"`
}

func (t teamPayload) display() string {
	if s := strings.TrimSpace(t.ShortName); s != "" {
		return s
	}
	return strings.TrimSpace(t.Name)
}

type statusPayload struct {
	UTCTime   string           `json:"utcTime"`
	Started   bool             `json:"started"`
	Cancelled bool             `json:"cancelled"`
	Finished  bool             `json:"finished"`
	Ongoing   bool             `json:"ongoing"`
	LiveTime  *liveTimePayload `json:"liveTime"`
}

type liveTimePayload struct {
	Short      string  `json:"short"`
	Long       string  `json:"long"`
	BasePeriod flexInt `json:"basePeriod"`
}

// FetchMatches returns every fixture for date (YYYYMMDD), or today when date
// is empty.
func (c *Client) FetchMatches(ctx context.Context, date string) ([]MatchRow, error) {
	payload, err := c.fetchMatchesPayload(ctx, "fetch matches", date)
	if err != nil {
		return nil, err
	}
	return buildMatchRows(payload), nil
}

// FetchUpcoming returns fixtures on date that have not started.
func (c *Client) FetchUpcoming(ctx context.Context, date string) ([]state.UpcomingMatch, error) {
	payload, err := c.fetchMatchesPayload(ctx, "fetch upcoming", date)
	if err != nil {
		return nil, err
	}
	return buildUpcoming(payload), nil
}

func (c *Client) fetchMatchesPayload(ctx context.Context, op, date string) (matchesPayload, error) {
	values := url.Values{}
	target := "today"
	if d := strings.TrimSpace(date); d != "" {
		values.Set("date", d)
		target = "date=" + d
	}
	var payload matchesPayload
	if _, _, err := c.getJSON(ctx, op, target, apiURL("/api/data/matches", values), nil, &payload); err != nil {
		return matchesPayload{}, err
	}
	return payload, nil
}

// ParseMatches decodes a matches payload. An empty body yields no rows.
func ParseMatches(raw []byte) ([]MatchRow, error) {
	payload, err := parseMatchesPayload(raw)
	if err != nil {
		return nil, err
	}
	return buildMatchRows(payload), nil
}

// ParseUpcoming decodes a matches payload into not-yet-started fixtures.
func ParseUpcoming(raw []byte) ([]state.UpcomingMatch, error) {
	payload, err := parseMatchesPayload(raw)
	if err != nil {
		return nil, err
	}
	return buildUpcoming(payload), nil
}

func parseMatchesPayload(raw []byte) (matchesPayload, error) {
	var payload matchesPayload
	if isEmptyBody(raw) {
		return payload, nil
	}
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return payload, errors.Wrap(err, "invalid matches json")
	}
	return payload, nil
}

func (l leaguePayload) leagueID() int {
	if l.PrimaryID != nil {
		return *l.PrimaryID
	}
	return l.ID
}

func buildMatchRows(payload matchesPayload) []MatchRow {
	var rows []MatchRow
	for _, league := range payload.Leagues {
		for _, m := range league.Matches {
			if m.ID == "" {
				continue
			}
			minute, hasMinute := liveMinute(m.Status.LiveTime)
			rows = append(rows, MatchRow{
				ID:         string(m.ID),
				LeagueID:   league.leagueID(),
				LeagueName: league.Name,
				Home:       m.Home.display(),
				Away:       m.Away.display(),
				ScoreHome:  m.Home.Score.Value,
				ScoreAway:  m.Away.Score.Value,
				UTCTime:    m.Status.UTCTime,
				Minute:     minute,
				HasMinute:  hasMinute,
				Started:    m.Status.Started || m.Status.Ongoing || m.Status.LiveTime != nil,
				Finished:   m.Status.Finished,
				Cancelled:  m.Status.Cancelled,
			})
		}
	}
	return rows
}

func buildUpcoming(payload matchesPayload) []state.UpcomingMatch {
	var out []state.UpcomingMatch
	for _, league := range payload.Leagues {
		for _, m := range league.Matches {
			if m.ID == "" || m.Status.Started || m.Status.Finished || m.Status.Cancelled {
				continue
			}
			kickoff := normalizeUTCTime(m.Status.UTCTime)
			if kickoff == "" {
				kickoff = normalizeLocalTime(m.Time)
			}
			out = append(out, state.UpcomingMatch{
				ID:         string(m.ID),
				LeagueID:   league.leagueID(),
				LeagueName: league.Name,
				Round:      string(m.TournamentStage),
				Kickoff:    kickoff,
				Home:       m.Home.display(),
				Away:       m.Away.display(),
			})
		}
	}
	return out
}

// liveMinute reads the elapsed minute from the liveTime block. "HT" maps to
// the base period; "mm:ss" rounds partial minutes up.
func liveMinute(lt *liveTimePayload) (int, bool) {
	if lt == nil {
		return 0, false
	}
	base := 45
	if lt.BasePeriod.OK {
		base = lt.BasePeriod.Value
	}
	if strings.EqualFold(strings.TrimSpace(lt.Short), "HT") {
		return base, true
	}
	long := strings.TrimSpace(lt.Long)
	if strings.EqualFold(long, "half-time") || strings.EqualFold(long, "half time") {
		return base, true
	}
	if mm, ss, ok := strings.Cut(long, ":"); ok {
		m, errM := strconv.Atoi(strings.TrimSpace(mm))
		sec, errS := strconv.Atoi(strings.TrimSpace(ss))
		if errM == nil && errS == nil && m >= 0 && sec >= 0 {
			if sec > 0 {
				m++
			}
			return min(m, maxLiveMinute), true
		}
	}
	if m, err := strconv.Atoi(long); err == nil && m >= 0 {
		return min(m, maxLiveMinute), true
	}
	if lt.BasePeriod.OK {
		return lt.BasePeriod.Value, true
	}
	return 0, false
}

// normalizeUTCTime trims "2026-06-01T18:30:00Z" to "2026-06-01T18:30".
func normalizeUTCTime(raw string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "Z")
	if trimmed == "" {
		return ""
	}
	trimmed = strings.Replace(trimmed, " ", "T", 1)
	if len(trimmed) >= 16 {
		return trimmed[:16]
	}
	return trimmed
}

func normalizeLocalTime(raw string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), " ", "T")
	if len(cleaned) >= 16 {
		return cleaned[:16]
	}
	return cleaned
}

package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/state"
)

// Squad is a team's roster without coaching staff.
type Squad struct {
	TeamName string
	Players  []state.SquadPlayer
}

type leagueTeamPayload struct {
	ID   flexInt    `json:"id"`
	Name flexString `json:"name"`
}

type tableRowPayload struct {
	ID   flexInt    `json:"id"`
	Name flexString `json:"name"`
	Idx  flexInt    `json:"idx"`
	Pts  flexInt    `json:"pts"`
}

type fixtureInfoPayload struct {
	FixtureInfo *struct {
		Teams []leagueTeamPayload `json:"teams"`
	} `json:"fixtureInfo"`
}

type leagueDataPayload struct {
	Table []struct {
		Data struct {
			Table struct {
				All []tableRowPayload `json:"all"`
			} `json:"table"`
		} `json:"data"`
	} `json:"table"`
	Overview *struct {
		Matches *fixtureInfoPayload `json:"matches"`
	} `json:"overview"`
	Fixtures *fixtureInfoPayload `json:"fixtures"`
	Stats    *struct {
		Teams []leagueTeamPayload `json:"teams"`
	} `json:"stats"`
}

// FetchLeagueTeams lists the teams of a league, with table rank and points
// when the league has a table.
func (c *Client) FetchLeagueTeams(ctx context.Context, leagueID int) ([]state.TeamAnalysis, error) {
	target := strconv.Itoa(leagueID)
	values := url.Values{}
	values.Set("id", target)
	var payload leagueDataPayload
	raw, empty, err := c.getJSON(ctx, "fetch league", target, apiURL("/api/leagues", values), nil, &payload)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, &FetchError{Op: "fetch league", Target: target, Cause: ErrEmptyPayload}
	}
	teams := buildLeagueTeams(payload)
	if len(teams) == 0 {
		return nil, fetchErr("fetch league", target, errors.Newf("no teams found for league %d", leagueID), raw)
	}
	return teams, nil
}

func buildLeagueTeams(p leagueDataPayload) []state.TeamAnalysis {
	var out []state.TeamAnalysis
	seen := make(map[int]bool)
	add := func(t state.TeamAnalysis) {
		if t.ID == 0 || seen[t.ID] {
			return
		}
		seen[t.ID] = true
		out = append(out, t)
	}

	for _, table := range p.Table {
		for _, row := range table.Data.Table.All {
			add(state.TeamAnalysis{ID: row.ID.Value, Name: string(row.Name), Rank: row.Idx.Value, Points: row.Pts.Value})
		}
	}
	if len(out) > 0 {
		return out
	}

	var lists [][]leagueTeamPayload
	if p.Overview != nil && p.Overview.Matches != nil && p.Overview.Matches.FixtureInfo != nil {
		lists = append(lists, p.Overview.Matches.FixtureInfo.Teams)
	}
	if p.Stats != nil {
		lists = append(lists, p.Stats.Teams)
	}
	if p.Fixtures != nil && p.Fixtures.FixtureInfo != nil {
		lists = append(lists, p.Fixtures.FixtureInfo.Teams)
	}
	for _, list := range lists {
		for _, t := range list {
			add(state.TeamAnalysis{ID: t.ID.Value, Name: string(t.Name)})
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

type squadPayload struct {
	Details struct {
		Name flexString `json:"name"`
	} `json:"details"`
	Squad struct {
		Squad []struct {
			Title   string `json:"title"`
			Members []struct {
				ID   flexInt    `json:"id"`
				Name flexString `json:"name"`
				Role *struct {
					Fallback string `json:"fallback"`
				} `json:"role"`
				CName       flexString `json:"cname"`
				Age         flexInt    `json:"age"`
				ShirtNumber flexInt    `json:"shirtNumber"`
			} `json:"members"`
		} `json:"squad"`
	} `json:"squad"`
}

// FetchSquad returns a team's players. The coach group is skipped and a
// member without a role takes the group title.
func (c *Client) FetchSquad(ctx context.Context, teamID int) (Squad, error) {
	target := strconv.Itoa(teamID)
	values := url.Values{}
	values.Set("id", target)
	var payload squadPayload
	_, empty, err := c.getJSON(ctx, "fetch squad", target, apiURL("/api/teams", values), nil, &payload)
	if err != nil {
		return Squad{}, err
	}
	if empty {
		return Squad{}, &FetchError{Op: "fetch squad", Target: target, Cause: ErrEmptyPayload}
	}
	return buildSquad(payload), nil
}

func buildSquad(p squadPayload) Squad {
	out := Squad{TeamName: string(p.Details.Name)}
	for _, group := range p.Squad.Squad {
		if strings.EqualFold(group.Title, "coach") {
			continue
		}
		for _, m := range group.Members {
			if !m.ID.OK {
				continue
			}
			role := group.Title
			if m.Role != nil && m.Role.Fallback != "" {
				role = m.Role.Fallback
			}
			club := string(m.CName)
			if club == "" {
				club = "-"
			}
			out.Players = append(out.Players, state.SquadPlayer{
				ID:          m.ID.Value,
				Name:        string(m.Name),
				Role:        role,
				Club:        club,
				Age:         m.Age.Value,
				ShirtNumber: m.ShirtNumber.Value,
			})
		}
	}
	return out
}

type playerStatPayload struct {
	Title      flexString `json:"title"`
	StatValue  flexValue  `json:"statValue"`
	Value      flexValue  `json:"value"`
	Per90      *flexValue `json:"per90"`
	StatFormat string     `json:"statFormat"`
}

type statsSectionPayload struct {
	Items []struct {
		Title flexString          `json:"title"`
		Items []playerStatPayload `json:"items"`
	} `json:"items"`
}

type playerPayload struct {
	ID          flexInt    `json:"id"`
	Name        flexString `json:"name"`
	PrimaryTeam *struct {
		TeamName flexString `json:"teamName"`
	} `json:"primaryTeam"`
	PositionDescription *struct {
		PrimaryPosition *struct {
			Label flexString `json:"label"`
		} `json:"primaryPosition"`
	} `json:"positionDescription"`
	StatsSection     *statsSectionPayload `json:"statsSection"`
	FirstSeasonStats *struct {
		StatsSection *statsSectionPayload `json:"statsSection"`
	} `json:"firstSeasonStats"`
	MainLeague *struct {
		Stats []playerStatPayload `json:"stats"`
	} `json:"mainLeague"`
}

var playerHeader = http.Header{"Accept-Language": []string{"en-GB,en;q=0.9"}}

// FetchPlayer returns a player's season statistics.
func (c *Client) FetchPlayer(ctx context.Context, playerID int) (state.PlayerDetail, error) {
	target := strconv.Itoa(playerID)
	values := url.Values{}
	values.Set("id", target)
	var payload playerPayload
	_, empty, err := c.getJSON(ctx, "fetch player", target, apiURL("/api/playerData", values), playerHeader, &payload)
	if err != nil {
		return state.PlayerDetail{}, err
	}
	if empty {
		return state.PlayerDetail{}, &FetchError{Op: "fetch player", Target: target, Cause: ErrEmptyPayload}
	}
	detail := buildPlayer(payload)
	if detail.ID == 0 {
		detail.ID = playerID
	}
	return detail, nil
}

// ParsePlayer decodes a playerData payload.
func ParsePlayer(raw []byte) (state.PlayerDetail, error) {
	if isEmptyBody(raw) {
		return state.PlayerDetail{}, ErrEmptyPayload
	}
	var payload playerPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return state.PlayerDetail{}, errors.Wrap(err, "invalid player json")
	}
	return buildPlayer(payload), nil
}

func buildPlayer(p playerPayload) state.PlayerDetail {
	out := state.PlayerDetail{ID: p.ID.Value, Name: string(p.Name)}
	if p.PrimaryTeam != nil {
		out.Team = string(p.PrimaryTeam.TeamName)
	}
	if p.PositionDescription != nil && p.PositionDescription.PrimaryPosition != nil {
		out.Position = string(p.PositionDescription.PrimaryPosition.Label)
	}

	section := p.StatsSection
	if (section == nil || len(section.Items) == 0) && p.FirstSeasonStats != nil {
		section = p.FirstSeasonStats.StatsSection
	}
	seen := make(map[string]bool)
	if section != nil {
		for _, group := range section.Items {
			for _, st := range group.Items {
				title := string(st.Title)
				if title == "" || seen[strings.ToLower(title)] {
					continue
				}
				seen[strings.ToLower(title)] = true
				out.Stats = append(out.Stats, state.PlayerStat{
					Title: title,
					Total: formatStatValue(string(st.StatValue), st.StatFormat),
					Per90: formatPer90(st.Per90, st.StatFormat),
				})
			}
		}
	}
	if p.MainLeague != nil {
		for _, st := range p.MainLeague.Stats {
			title := string(st.Title)
			if title == "" || seen[strings.ToLower(title)] {
				continue
			}
			seen[strings.ToLower(title)] = true
			out.Stats = append(out.Stats, state.PlayerStat{Title: title, Total: string(st.Value)})
		}
	}
	return out
}

func formatStatValue(v, format string) string {
	if v == "" {
		return "-"
	}
	if format == "percent" && !strings.HasSuffix(v, "%") {
		return v + "%"
	}
	return v
}

func formatPer90(v *flexValue, format string) string {
	if v == nil {
		return ""
	}
	f, err := strconv.ParseFloat(string(*v), 64)
	if err != nil {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	if format == "percent" {
		return s + "%"
	}
	return s
}

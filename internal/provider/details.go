package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/state"
)

const ltcSourceURL = "http://data.fotmob.com/webcl/ltc/gsm/%s_%s.json.gz"

type detailsPayload struct {
	General struct {
		HomeTeam flexString `json:"homeTeam"`
		AwayTeam flexString `json:"awayTeam"`
	} `json:"general"`
	Content struct {
		Lineup *struct {
			HomeTeam json.RawMessage `json:"homeTeam"`
			AwayTeam json.RawMessage `json:"awayTeam"`
		} `json:"lineup"`
		MatchFacts struct {
			Events struct {
				Events []json.RawMessage `json:"events"`
			} `json:"events"`
		} `json:"matchFacts"`
		Stats struct {
			Stats []statGroupPayload `json:"stats"`
		} `json:"stats"`
		Liveticker struct {
			Langs flexString   `json:"langs"`
			Teams []flexString `json:"teams"`
		} `json:"liveticker"`
	} `json:"content"`
}

type statGroupPayload struct {
	Title flexString        `json:"title"`
	Stats []json.RawMessage `json:"stats"`
}

type statPayload struct {
	Title     flexString `json:"title"`
	Name      flexString `json:"name"`
	HomeValue *flexValue `json:"homeValue"`
	AwayValue *flexValue `json:"awayValue"`
	Home      *flexValue `json:"home"`
	Away      *flexValue `json:"away"`
}

type eventPayload struct {
	Type   flexString `json:"type"`
	Time   flexInt    `json:"time"`
	IsHome *bool      `json:"isHome"`
	Player flexString `json:"player"`
}

type lineupSidePayload struct {
	Name        flexString        `json:"name"`
	Formation   flexString        `json:"formation"`
	Starters    []json.RawMessage `json:"starters"`
	Substitutes []json.RawMessage `json:"substitutes"`
	Bench       []json.RawMessage `json:"bench"`
	Subs        []json.RawMessage `json:"subs"`
}

type playerSlotPayload struct {
	ID           flexInt    `json:"id"`
	PlayerID     flexInt    `json:"playerId"`
	Name         flexString `json:"name"`
	PlayerName   flexString `json:"playerName"`
	FullName     flexString `json:"fullName"`
	ShirtNumber  flexInt    `json:"shirtNumber"`
	Number       flexInt    `json:"number"`
	Position     flexString `json:"position"`
	PositionShrt flexString `json:"positionShort"`
	Role         flexString `json:"role"`
}

// FetchMatchDetails fetches stats, events, lineups and the live ticker. A
// ticker failure is reported in CommentaryError; the rest of the detail is
// still returned.
func (c *Client) FetchMatchDetails(ctx context.Context, matchID string) (state.MatchDetail, error) {
	payload, err := c.fetchDetailsPayload(ctx, matchID)
	if err != nil {
		return state.MatchDetail{}, err
	}
	detail := buildMatchDetail(payload)

	langs := strings.TrimSpace(string(payload.Content.Liveticker.Langs))
	if langs == "" {
		return detail, nil
	}
	teams := tickerTeams(payload, detail)
	commentary, err := c.fetchCommentary(ctx, matchID, pickTickerLang(langs), teams)
	detail.Commentary = commentary
	if err != nil {
		detail.CommentaryError = err.Error()
	}
	return detail, nil
}

// FetchMatchDetailsBasic fetches stats, events and lineups only.
func (c *Client) FetchMatchDetailsBasic(ctx context.Context, matchID string) (state.MatchDetail, error) {
	payload, err := c.fetchDetailsPayload(ctx, matchID)
	if err != nil {
		return state.MatchDetail{}, err
	}
	return buildMatchDetail(payload), nil
}

func (c *Client) fetchDetailsPayload(ctx context.Context, matchID string) (detailsPayload, error) {
	values := url.Values{}
	values.Set("matchId", matchID)
	var payload detailsPayload
	_, _, err := c.getJSON(ctx, "fetch match details", matchID, apiURL("/api/data/matchDetails", values), nil, &payload)
	return payload, err
}

func (c *Client) fetchCommentary(ctx context.Context, matchID, lang string, teams []string) ([]state.CommentaryEntry, error) {
	teamsJSON, err := sonic.MarshalString(teams)
	if err != nil {
		teamsJSON = "[]"
	}
	values := url.Values{}
	values.Set("ltcUrl", fmt.Sprintf(ltcSourceURL, matchID, lang))
	values.Set("teams", teamsJSON)

	raw, err := c.get(ctx, "fetch commentary", matchID, apiURL("/api/data/ltc", values), nil)
	if err != nil {
		return nil, errors.Wrap(err, "ltc request failed")
	}
	return DecodeCommentary(raw, teams)
}

// ParseMatchDetails decodes a matchDetails payload without commentary. An
// empty body yields an empty detail.
func ParseMatchDetails(raw []byte) (state.MatchDetail, error) {
	if isEmptyBody(raw) {
		return state.MatchDetail{}, nil
	}
	var payload detailsPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return state.MatchDetail{}, errors.Wrap(err, "invalid matchDetails json")
	}
	return buildMatchDetail(payload), nil
}

func buildMatchDetail(p detailsPayload) state.MatchDetail {
	home := string(p.General.HomeTeam)
	away := string(p.General.AwayTeam)
	detail := state.MatchDetail{
		HomeTeam: home,
		AwayTeam: away,
		Events:   parseEvents(p.Content.MatchFacts.Events.Events, home, away),
		Stats:    parseStats(p.Content.Stats.Stats),
	}
	if p.Content.Lineup != nil {
		var sides []state.LineupSide
		for _, raw := range []json.RawMessage{p.Content.Lineup.HomeTeam, p.Content.Lineup.AwayTeam} {
			if side, ok := parseLineupSide(raw); ok {
				sides = append(sides, side)
			}
		}
		if len(sides) > 0 {
			detail.Lineups = &state.Lineups{Sides: sides}
		}
	}
	return detail
}

func tickerTeams(p detailsPayload, detail state.MatchDetail) []string {
	var teams []string
	for _, t := range p.Content.Liveticker.Teams {
		if s := string(t); s != "" {
			teams = append(teams, s)
		}
	}
	if len(teams) < 2 && detail.HomeTeam != "" && detail.AwayTeam != "" {
		teams = []string{detail.HomeTeam, detail.AwayTeam}
	}
	return teams
}

func pickTickerLang(langs string) string {
	var list []string
	for _, l := range strings.Split(langs, ",") {
		if l = strings.TrimSpace(l); l != "" {
			list = append(list, l)
		}
	}
	for _, preferred := range []string{"en", "en_gen"} {
		for _, l := range list {
			if l == preferred {
				return l
			}
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return "en"
}

func parseEvents(raws []json.RawMessage, home, away string) []state.Event {
	var out []state.Event
	for _, raw := range raws {
		var ev eventPayload
		if err := sonic.Unmarshal(raw, &ev); err != nil {
			continue
		}
		kind, ok := eventKind(string(ev.Type))
		if !ok {
			continue
		}
		team := home
		if ev.IsHome != nil && !*ev.IsHome {
			team = away
		}
		desc := string(ev.Type)
		if ev.Player != "" {
			desc += " " + string(ev.Player)
		}
		out = append(out, state.Event{
			Minute:      max(ev.Time.Value, 0),
			Kind:        kind,
			Team:        team,
			Player:      string(ev.Player),
			Description: desc,
		})
	}
	return out
}

func eventKind(raw string) (state.EventKind, bool) {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "goal"):
		return state.EventGoal, true
	case strings.Contains(lowered, "card"):
		return state.EventCard, true
	case strings.Contains(lowered, "sub"):
		return state.EventSub, true
	case strings.Contains(lowered, "shot"):
		return state.EventShot, true
	}
	return 0, false
}

func parseStats(groups []statGroupPayload) []state.StatRow {
	var rows []state.StatRow
	for _, g := range groups {
		for _, raw := range g.Stats {
			var st statPayload
			if err := sonic.Unmarshal(raw, &st); err != nil {
				continue
			}
			name := string(st.Title)
			if name == "" {
				name = string(st.Name)
			}
			if name == "" {
				continue
			}
			rows = append(rows, state.StatRow{
				Group: string(g.Title),
				Name:  name,
				Home:  statCell(st.HomeValue, st.Home),
				Away:  statCell(st.AwayValue, st.Away),
			})
		}
	}
	return rows
}

func statCell(primary, fallback *flexValue) string {
	if primary != nil {
		return string(*primary)
	}
	if fallback != nil {
		return string(*fallback)
	}
	return "-"
}

func parseLineupSide(raw json.RawMessage) (state.LineupSide, bool) {
	if len(raw) == 0 {
		return state.LineupSide{}, false
	}
	var p lineupSidePayload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return state.LineupSide{}, false
	}
	name := string(p.Name)
	if name == "" {
		return state.LineupSide{}, false
	}
	subs := p.Substitutes
	if len(subs) == 0 {
		subs = p.Bench
	}
	if len(subs) == 0 {
		subs = p.Subs
	}
	return state.LineupSide{
		Team:      name,
		TeamAbbr:  AbbreviateTeam(name),
		Formation: string(p.Formation),
		Starting:  parsePlayers(p.Starters, true),
		Subs:      parsePlayers(subs, false),
	}, true
}

func parsePlayers(raws []json.RawMessage, starter bool) []state.PlayerSlot {
	var out []state.PlayerSlot
	for _, raw := range raws {
		var p playerSlotPayload
		if err := sonic.Unmarshal(raw, &p); err != nil {
			continue
		}
		name := firstNonEmpty(string(p.Name), string(p.PlayerName), string(p.FullName))
		if name == "" {
			continue
		}
		id := p.ID
		if !id.OK {
			id = p.PlayerID
		}
		number := p.ShirtNumber
		if !number.OK {
			number = p.Number
		}
		out = append(out, state.PlayerSlot{
			ID:       id.Value,
			Name:     name,
			Number:   number.Value,
			Position: firstNonEmpty(string(p.Position), string(p.Role), string(p.PositionShrt)),
			Starter:  starter,
		})
	}
	return out
}

// AbbreviateTeam shortens a team name to at most three upper-case letters.
func AbbreviateTeam(name string) string {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) <= 3 {
		return strings.ToUpper(trimmed)
	}
	var abbr []rune
	for _, part := range strings.Fields(trimmed) {
		abbr = append(abbr, []rune(part)[0])
		if len(abbr) >= 3 {
			break
		}
	}
	if len(abbr) >= 2 {
		return strings.ToUpper(string(abbr))
	}
	return strings.ToUpper(string([]rune(trimmed)[:3]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

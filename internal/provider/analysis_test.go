package provider

import (
	"context"
	"net/http"
	"testing"
)

func TestClient_FetchLeagueTeamsFromTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leagues" || r.URL.Query().Get("id") != "47" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
		  "table": [{"data": {"table": {"all": [
		    {"id": 8456, "name": "Man City", "idx": 1, "pts": 89},
		    {"id": "9825", "name": "Arsenal", "idx": 2, "pts": "84"},
		    {"id": 8456, "name": "Duplicate", "idx": 3, "pts": 1}
		  ]}}}],
		  "stats": {"teams": [{"id": 1, "name": "ignored"}]}
		}`))
	})

	teams, err := c.FetchLeagueTeams(context.Background(), 47)
	if err != nil {
		t.Fatalf("FetchLeagueTeams error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("len(teams) = %d, want 2: %#v", len(teams), teams)
	}
	if teams[1].ID != 9825 || teams[1].Rank != 2 || teams[1].Points != 84 {
		t.Fatalf("teams[1] = %#v", teams[1])
	}
}

func TestBuildLeagueTeams_FallsBackToFixtureLists(t *testing.T) {
	payload := leagueDataPayload{}
	payload.Stats = &struct {
		Teams []leagueTeamPayload `json:"teams"`
	}{Teams: []leagueTeamPayload{{ID: flexInt{Value: 5, OK: true}, Name: "Fives"}, {Name: "no id"}}}

	teams := buildLeagueTeams(payload)
	if len(teams) != 1 || teams[0].ID != 5 || teams[0].Rank != 0 {
		t.Fatalf("teams = %#v", teams)
	}
}

func TestClient_FetchLeagueTeamsWithoutTeams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"table": []}`))
	})
	if _, err := c.FetchLeagueTeams(context.Background(), 99); err == nil {
		t.Fatalf("FetchLeagueTeams error = nil, want no teams error")
	}
}

func TestClient_FetchSquadSkipsCoach(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
		  "details": {"name": "Arsenal"},
		  "squad": {"squad": [
		    {"title": "Coach", "members": [{"id": 1, "name": "Arteta"}]},
		    {"title": "Keepers", "members": [
		      {"id": 2, "name": "Raya", "role": {"fallback": "Keeper"}, "cname": "Spain", "age": 30, "shirtNumber": 22},
		      {"id": 3, "name": "Neto"},
		      {"name": "No id"}
		    ]}
		  ]}
		}`))
	})

	squad, err := c.FetchSquad(context.Background(), 9825)
	if err != nil {
		t.Fatalf("FetchSquad error: %v", err)
	}
	if squad.TeamName != "Arsenal" {
		t.Fatalf("TeamName = %q, want Arsenal", squad.TeamName)
	}
	if len(squad.Players) != 2 {
		t.Fatalf("len(players) = %d, want 2", len(squad.Players))
	}
	if p := squad.Players[0]; p.Role != "Keeper" || p.Club != "Spain" || p.Age != 30 || p.ShirtNumber != 22 {
		t.Fatalf("players[0] = %#v", p)
	}
	if p := squad.Players[1]; p.Role != "Keepers" || p.Club != "-" {
		t.Fatalf("players[1] = %#v", p)
	}
}

func TestClient_FetchPlayerStats(t *testing.T) {
	var gotLang string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte(`{
		  "name": "Bukayo Saka",
		  "primaryTeam": {"teamName": "Arsenal"},
		  "positionDescription": {"primaryPosition": {"label": "Right Winger"}},
		  "firstSeasonStats": {"statsSection": {"items": [{"title": "Shooting", "items": [
		    {"title": "Goals", "statValue": 12, "per90": 0.4512},
		    {"title": "Shot accuracy", "statValue": "48", "statFormat": "percent", "per90": "n/a"},
		    {"title": "goals", "statValue": 99}
		  ]}]}},
		  "mainLeague": {"stats": [
		    {"title": "Rating", "value": "7.6"},
		    {"title": "Goals", "value": 1}
		  ]}
		}`))
	})

	detail, err := c.FetchPlayer(context.Background(), 961995)
	if err != nil {
		t.Fatalf("FetchPlayer error: %v", err)
	}
	if gotLang == "" {
		t.Fatalf("Accept-Language header missing")
	}
	if detail.ID != 961995 || detail.Team != "Arsenal" || detail.Position != "Right Winger" {
		t.Fatalf("detail = %#v", detail)
	}
	if len(detail.Stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3: %#v", len(detail.Stats), detail.Stats)
	}
	if s := detail.Stats[0]; s.Total != "12" || s.Per90 != "0.45" {
		t.Fatalf("stats[0] = %#v", s)
	}
	if s := detail.Stats[1]; s.Total != "48%" || s.Per90 != "" {
		t.Fatalf("stats[1] = %#v", s)
	}
	if s := detail.Stats[2]; s.Title != "Rating" || s.Total != "7.6" {
		t.Fatalf("stats[2] = %#v", s)
	}
	if detail.IsStub() {
		t.Fatalf("IsStub = true, want false")
	}
}

func TestParsePlayer_Empty(t *testing.T) {
	if _, err := ParsePlayer([]byte(" null ")); err == nil {
		t.Fatalf("ParsePlayer(null) error = nil")
	}
}

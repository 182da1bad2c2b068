package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

const detailsFixture = `{
  "general": {"homeTeam": {"name": "Arsenal", "id": 9825}, "awayTeam": {"name": "Chelsea", "id": 8455}},
  "content": {
    "matchFacts": {"events": {"events": [
      {"type": "Goal", "time": 12, "isHome": true, "player": {"name": "Saka"}},
      {"type": "Card", "time": 30, "isHome": false, "player": {"name": "Enzo"}},
      {"type": "Half", "time": 45},
      "garbage"
    ]}},
    "stats": {"stats": [
      {"title": "Top stats", "stats": [
        {"title": "Ball possession", "homeValue": 58, "awayValue": "42"},
        {"title": "Big chances", "home": true, "away": null},
        {"name": ""}
      ]}
    ]},
    "lineup": {
      "homeTeam": {"name": "Arsenal", "formation": "4-3-3", "starters": [{"id": 1, "name": "Raya", "shirtNumber": "22", "positionShort": "GK"}], "bench": [{"playerId": 2, "playerName": "Neto", "number": 32}]},
      "awayTeam": {"name": "Chelsea", "formation": "4-2-3-1", "starters": [{"name": "Sanchez"}]}
    },
    "liveticker": {"langs": "de,en_gen,en", "teams": ["Arsenal", "Chelsea"]}
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second, Breaker: DefaultBreakerConfig()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:8080/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchMatchDetailsWithCommentary(t *testing.T) {
	var gotUA, gotLTC, gotTeams string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/api/data/matchDetails":
			if r.URL.Query().Get("matchId") != "4242" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(detailsFixture))
		case "/api/data/ltc":
			gotLTC = r.URL.Query().Get("ltcUrl")
			gotTeams = r.URL.Query().Get("teams")
			_, _ = w.Write([]byte(`{"events":[{"text":"Goal!","teamEvent":"home","elapsed":12},{"text":"Sub","teamEvent":"away","elapsed":-1}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	detail, err := c.FetchMatchDetails(context.Background(), "4242")
	if err != nil {
		t.Fatalf("FetchMatchDetails error: %v", err)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUA, defaultUserAgent)
	}
	if gotLTC != "http://data.fotmob.com/webcl/ltc/gsm/4242_en.json.gz" {
		t.Fatalf("ltcUrl = %q", gotLTC)
	}
	if gotTeams != `["Arsenal","Chelsea"]` {
		t.Fatalf("teams = %q", gotTeams)
	}

	if detail.HomeTeam != "Arsenal" || detail.AwayTeam != "Chelsea" {
		t.Fatalf("teams = %q/%q", detail.HomeTeam, detail.AwayTeam)
	}
	if len(detail.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(detail.Events))
	}
	if ev := detail.Events[1]; ev.Team != "Chelsea" || ev.Description != "Card Enzo" || ev.Player != "Enzo" {
		t.Fatalf("events[1] = %#v", ev)
	}
	if len(detail.Stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(detail.Stats))
	}
	if s := detail.Stats[0]; s.Home != "58" || s.Away != "42" || s.Group != "Top stats" {
		t.Fatalf("stats[0] = %#v", s)
	}
	if s := detail.Stats[1]; s.Home != "yes" || s.Away != "-" {
		t.Fatalf("stats[1] = %#v", s)
	}
	if detail.Lineups == nil || len(detail.Lineups.Sides) != 2 {
		t.Fatalf("lineups = %#v", detail.Lineups)
	}
	home := detail.Lineups.Sides[0]
	if home.TeamAbbr != "ARS" || home.Starting[0].Number != 22 || home.Starting[0].Position != "GK" {
		t.Fatalf("home side = %#v", home)
	}
	if len(home.Subs) != 1 || home.Subs[0].ID != 2 || home.Subs[0].Number != 32 || home.Subs[0].Starter {
		t.Fatalf("home subs = %#v", home.Subs)
	}
	if len(detail.Commentary) != 2 || detail.CommentaryError != "" {
		t.Fatalf("commentary = %#v, error %q", detail.Commentary, detail.CommentaryError)
	}
	if detail.Commentary[1].Minute != nil || detail.Commentary[1].Team != "Chelsea" {
		t.Fatalf("commentary[1] = %#v", detail.Commentary[1])
	}
}

func TestClient_CommentaryFailureKeepsDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/data/matchDetails":
			_, _ = w.Write([]byte(detailsFixture))
		case "/api/data/ltc":
			_, _ = w.Write([]byte(`{"events":[{"text":"one","elapsed":1},{"text":`))
		}
	})

	detail, err := c.FetchMatchDetails(context.Background(), "1")
	if err != nil {
		t.Fatalf("FetchMatchDetails error: %v", err)
	}
	if len(detail.Commentary) != 1 {
		t.Fatalf("len(commentary) = %d, want 1", len(detail.Commentary))
	}
	if !strings.HasPrefix(detail.CommentaryError, "invalid ltc json") {
		t.Fatalf("CommentaryError = %q", detail.CommentaryError)
	}
	if len(detail.Stats) == 0 || detail.Lineups == nil {
		t.Fatalf("detail lost stats or lineups on commentary failure")
	}
}

func TestClient_BasicDetailsSkipTicker(t *testing.T) {
	var ltcCalls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/data/ltc" {
			ltcCalls.Add(1)
		}
		_, _ = w.Write([]byte(detailsFixture))
	})

	detail, err := c.FetchMatchDetailsBasic(context.Background(), "1")
	if err != nil {
		t.Fatalf("FetchMatchDetailsBasic error: %v", err)
	}
	if ltcCalls.Load() != 0 {
		t.Fatalf("ltc called %d times, want 0", ltcCalls.Load())
	}
	if len(detail.Commentary) != 0 || len(detail.Events) != 2 {
		t.Fatalf("detail = %#v", detail)
	}
}

func TestClient_StatusErrorCarriesPreview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("x", 300)))
	})

	_, err := c.FetchMatches(context.Background(), "20260820")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Op != "fetch matches" || fe.Target != "date=20260820" {
		t.Fatalf("FetchError = %#v", fe)
	}
	if len(fe.Preview) != previewLimit+3 || !strings.HasSuffix(fe.Preview, "...") {
		t.Fatalf("preview length = %d, want %d", len(fe.Preview), previewLimit+3)
	}
	if !strings.Contains(err.Error(), "returned status 404") || !strings.Contains(err.Error(), "(payload: ") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestAbbreviateBody_KeepsRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", previewLimit-1) + "é" + strings.Repeat("b", 20)

	got := abbreviateBody([]byte(body))
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got[len(got)-8:])
	}
	if want := strings.Repeat("a", previewLimit-1) + "..."; got != want {
		t.Fatalf("preview tail = %q, want %q", got[len(got)-8:], want[len(want)-8:])
	}
	if short := abbreviateBody([]byte("  ok  ")); short != "ok" {
		t.Fatalf("short preview = %q, want %q", short, "ok")
	}
}

func TestClient_DecodeErrorCarriesPreview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"leagues": "nope"}`))
	})

	_, err := c.FetchMatches(context.Background(), "")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Preview != `{"leagues": "nope"}` || fe.Target != "today" {
		t.Fatalf("FetchError = %#v", fe)
	}
}

func TestClient_BreakerOpensAfterServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL, Breaker: BreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	for range 2 {
		_, _ = c.FetchMatches(context.Background(), "")
	}
	_, err = c.FetchMatches(context.Background(), "")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("server calls = %d, want 2", calls.Load())
	}
}

func TestClient_EmptySquadIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	_, err := c.FetchSquad(context.Background(), 10)
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("error = %v, want ErrEmptyPayload", err)
	}
}

package provider

import "testing"

const matchesFixture = `{
  "leagues": [
    {
      "id": 47, "primaryId": 47, "name": "Premier League",
      "matches": [
        {"id": 1001, "home": {"name": "Arsenal", "shortName": "ARS", "score": 2}, "away": {"name": "Chelsea", "score": 1},
         "status": {"utcTime": "2026-08-20T19:00:00Z", "started": true, "ongoing": true, "liveTime": {"short": "63'", "long": "62:14"}}},
        {"id": 1002, "tournamentStage": "Round 2", "home": {"name": "Everton"}, "away": {"name": "Fulham"},
         "status": {"utcTime": "2026-08-21T14:00:00.000Z"}},
        {"id": 1003, "home": {"name": "Leeds", "score": "0"}, "away": {"name": "Wolves", "score": 0},
         "status": {"utcTime": "2026-08-20T12:30:00Z", "started": true, "finished": true}}
      ]
    },
    {
      "id": 900, "name": "Friendlies",
      "matches": [
        {"id": "abc", "home": {"name": "A"}, "away": {"name": "B"},
         "status": {"utcTime": "2026-08-20T18:00:00Z", "liveTime": {"short": "HT", "basePeriod": 45}}}
      ]
    }
  ]
}`

func TestParseMatches(t *testing.T) {
	rows, err := ParseMatches([]byte(matchesFixture))
	if err != nil {
		t.Fatalf("ParseMatches error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}

	live := rows[0]
	if live.ID != "1001" || live.Home != "ARS" || live.Away != "Chelsea" {
		t.Fatalf("live row = %#v", live)
	}
	if live.ScoreHome != 2 || live.ScoreAway != 1 {
		t.Fatalf("score = %d-%d, want 2-1", live.ScoreHome, live.ScoreAway)
	}
	if !live.Started || !live.HasMinute || live.Minute != 63 {
		t.Fatalf("live minute = %d (has=%v started=%v), want 63", live.Minute, live.HasMinute, live.Started)
	}
	if rows[1].Started || rows[1].HasMinute {
		t.Fatalf("scheduled row marked started: %#v", rows[1])
	}
	if !rows[2].Finished {
		t.Fatalf("finished row = %#v", rows[2])
	}
	ht := rows[3]
	if ht.ID != "abc" || ht.LeagueID != 900 || ht.Minute != 45 || !ht.Started {
		t.Fatalf("half-time row = %#v", ht)
	}
}

func TestParseUpcoming(t *testing.T) {
	upcoming, err := ParseUpcoming([]byte(matchesFixture))
	if err != nil {
		t.Fatalf("ParseUpcoming error: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("len(upcoming) = %d, want 2: %#v", len(upcoming), upcoming)
	}
	u := upcoming[0]
	if u.ID != "1002" || u.Round != "Round 2" || u.Kickoff != "2026-08-21T14:00" || u.LeagueID != 47 {
		t.Fatalf("upcoming[0] = %#v", u)
	}
}

func TestParseMatches_EmptyAndInvalid(t *testing.T) {
	rows, err := ParseMatches([]byte("null"))
	if err != nil || len(rows) != 0 {
		t.Fatalf("ParseMatches(null) = %v, %v; want empty, nil", rows, err)
	}
	if _, err := ParseMatches([]byte("{not json")); err == nil {
		t.Fatalf("ParseMatches(invalid) error = nil")
	}
}

func TestLiveMinute(t *testing.T) {
	base := func(v int) flexInt { return flexInt{Value: v, OK: true} }
	tests := []struct {
		name    string
		lt      *liveTimePayload
		want    int
		wantHas bool
	}{
		{"nil", nil, 0, false},
		{"half time short", &liveTimePayload{Short: "HT"}, 45, true},
		{"half time long", &liveTimePayload{Long: "Half-time", BasePeriod: base(46)}, 46, true},
		{"exact minute", &liveTimePayload{Long: "30:00"}, 30, true},
		{"rounds up", &liveTimePayload{Long: "30:01"}, 31, true},
		{"clamped", &liveTimePayload{Long: "140:00"}, 130, true},
		{"bare number", &liveTimePayload{Long: "77"}, 77, true},
		{"base period fallback", &liveTimePayload{Long: "??", BasePeriod: base(90)}, 90, true},
		{"nothing usable", &liveTimePayload{Long: "??"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, has := liveMinute(tt.lt)
			if got != tt.want || has != tt.wantHas {
				t.Fatalf("liveMinute = %d, %v; want %d, %v", got, has, tt.want, tt.wantHas)
			}
		})
	}
}

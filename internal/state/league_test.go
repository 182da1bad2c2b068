package state

import "testing"

func TestLeagueFilter_Contains(t *testing.T) {
	tests := []struct {
		name   string
		filter LeagueFilter
		id     int
		league string
		want   bool
	}{
		{"id match", LeagueFilter{Mode: LeaguePremierLeague}, 47, "", true},
		{"id mismatch ignores name", LeagueFilter{Mode: LeaguePremierLeague}, 48, "Premier League", false},
		{"keyword fallback", LeagueFilter{Mode: LeagueSerieA}, 0, "Italy Serie A", true},
		{"keyword miss", LeagueFilter{Mode: LeagueSerieA}, 0, "Serie B", false},
		{"override ids", LeagueFilter{Mode: LeagueWorldCup, IDs: []int{10, 77}}, 10, "", true},
		{"no id no name", LeagueFilter{Mode: LeagueLigue1}, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Contains(tt.id, tt.league); got != tt.want {
				t.Fatalf("Contains(%d, %q) = %v, want %v", tt.id, tt.league, got, tt.want)
			}
		})
	}
}

func TestLeagueMode_CycleAndParse(t *testing.T) {
	all := AllLeagues()
	if got := all[len(all)-1].Next(); got != LeaguePremierLeague {
		t.Fatalf("last.Next() = %v, want %v", got, LeaguePremierLeague)
	}
	for _, m := range all {
		got, ok := ParseLeague(m.Slug())
		if !ok || got != m {
			t.Fatalf("ParseLeague(%q) = %v, %v; want %v", m.Slug(), got, ok, m)
		}
	}
	if got, ok := ParseLeague("Champions League"); !ok || got != LeagueChampionsLeague {
		t.Fatalf("ParseLeague(display name) = %v, %v", got, ok)
	}
	if _, ok := ParseLeague("mls"); ok {
		t.Fatalf("ParseLeague(mls) ok = true, want false")
	}
}

func TestRoleFromText(t *testing.T) {
	tests := map[string]RoleCategory{
		"Keeper":      RoleGoalkeeper,
		"GK":          RoleGoalkeeper,
		"Centre-Back": RoleDefender,
		"Defenders":   RoleDefender,
		"Midfielder":  RoleMidfielder,
		"Left Winger": RoleAttacker,
		"Forwards":    RoleAttacker,
	}
	for raw, want := range tests {
		got, ok := RoleFromText(raw)
		if !ok || got != want {
			t.Fatalf("RoleFromText(%q) = %v, %v; want %v", raw, got, ok, want)
		}
	}
	if _, ok := RoleFromText("Coach"); ok {
		t.Fatalf("RoleFromText(Coach) ok = true, want false")
	}
}

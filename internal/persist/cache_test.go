package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/pitchside/internal/state"
)

func seededStore(mode state.LeagueMode) *state.Store {
	s := state.NewStore(mode)
	s.Analysis = []state.TeamAnalysis{{ID: 1, Name: "Reds", Rank: 1, Points: 70}}
	s.Squads[1] = []state.SquadPlayer{{ID: 10, Name: "Ten", Role: "FW", Club: "-"}}
	s.Players[10] = state.PlayerDetail{ID: 10, Name: "Ten", Stats: []state.PlayerStat{{Title: "Goals", Total: "4"}}}
	return s
}

func TestCache_SaveThenLoad(t *testing.T) {
	c := New(t.TempDir())
	if err := c.SaveFrom(seededStore(state.LeaguePremierLeague)); err != nil {
		t.Fatalf("SaveFrom returned error: %v", err)
	}

	s := state.NewStore(state.LeaguePremierLeague)
	ok, err := c.LoadInto(s)
	if err != nil || !ok {
		t.Fatalf("LoadInto = %v, %v; want true, nil", ok, err)
	}
	if !s.RankingsDirty {
		t.Fatalf("RankingsDirty = false after load")
	}
	if len(s.Analysis) != 1 || s.Analysis[0].Points != 70 {
		t.Fatalf("Analysis = %#v", s.Analysis)
	}
	if got := s.Squads[1]; len(got) != 1 || got[0].Name != "Ten" {
		t.Fatalf("Squads[1] = %#v", got)
	}
	if got := s.Players[10]; got.Stats[0].Total != "4" {
		t.Fatalf("Players[10] = %#v", got)
	}
}

func TestCache_SaveKeepsOtherLeagues(t *testing.T) {
	c := New(t.TempDir())
	if err := c.SaveFrom(seededStore(state.LeaguePremierLeague)); err != nil {
		t.Fatalf("SaveFrom(pl): %v", err)
	}
	if err := c.SaveFrom(seededStore(state.LeagueSerieA)); err != nil {
		t.Fatalf("SaveFrom(serie-a): %v", err)
	}

	s := state.NewStore(state.LeaguePremierLeague)
	if ok, _ := c.LoadInto(s); !ok {
		t.Fatalf("premier league cache lost after saving another league")
	}
}

func TestCache_LoadDegradesToEmpty(t *testing.T) {
	tests := map[string]string{
		"corrupt":        "{not json",
		"version":        `{"version": 2, "leagues": {"premier-league": {"analysis": [{"id": 1}]}}}`,
		"missing league": `{"version": 1, "leagues": {"la-liga": {"analysis": [{"id": 1}]}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, cacheFile), []byte(body), 0o644); err != nil {
				t.Fatalf("write cache: %v", err)
			}
			s := state.NewStore(state.LeaguePremierLeague)
			ok, err := New(dir).LoadInto(s)
			if ok || err != nil {
				t.Fatalf("LoadInto = %v, %v; want false, nil", ok, err)
			}
			if s.RankingsDirty || len(s.Analysis) != 0 {
				t.Fatalf("store changed on unusable cache")
			}
		})
	}

	s := state.NewStore(state.LeaguePremierLeague)
	if ok, err := New(t.TempDir()).LoadInto(s); ok || err != nil {
		t.Fatalf("LoadInto(no file) = %v, %v", ok, err)
	}
}

func TestCache_SaveOverwritesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cacheFile), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	c := New(dir)
	if err := c.SaveFrom(seededStore(state.LeaguePremierLeague)); err != nil {
		t.Fatalf("SaveFrom returned error: %v", err)
	}
	if ok, _ := c.LoadInto(state.NewStore(state.LeaguePremierLeague)); !ok {
		t.Fatalf("cache not readable after overwrite")
	}
}

func TestDefaultDir_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != filepath.Join("/tmp/xdg", "pitchside") {
		t.Fatalf("DefaultDir() = %q", got)
	}
}

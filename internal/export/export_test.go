package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/pitchside/internal/state"
)

func TestWrite_RoundTripsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pl.yaml")
	teams := []state.TeamAnalysis{{ID: 1, Name: "Reds", Rank: 1, Points: 80}}
	rows := []state.RankingRow{
		{Role: state.RoleAttacker, PlayerID: 9, PlayerName: "Nine", TeamName: "Reds", AttackScore: 1.23456, DefenseScore: math.Inf(-1)},
	}

	var steps []state.Progress
	sum, err := Write(path, NewDocument(state.LeaguePremierLeague, teams, rows, time.Unix(0, 0)), func(p state.Progress) {
		steps = append(steps, p)
	})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if sum.Teams != 1 || sum.Rankings != 1 {
		t.Fatalf("summary = %#v", sum)
	}
	if len(steps) != 3 || steps[2].Current != 2 {
		t.Fatalf("progress = %#v", steps)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var got Document
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if got.League != "premier-league" || len(got.Teams) != 1 || got.Teams[0].Points != 80 {
		t.Fatalf("document = %#v", got)
	}
	r := got.Rankings[0]
	if r.AttackScore == nil || *r.AttackScore != 1.235 {
		t.Fatalf("attack score = %v, want 1.235", r.AttackScore)
	}
	if r.DefenseScore != nil {
		t.Fatalf("defense score = %v, want omitted", *r.DefenseScore)
	}
	if r.Role != state.RoleAttacker.String() {
		t.Fatalf("role = %q", r.Role)
	}
}

func TestWrite_EmptyPath(t *testing.T) {
	if _, err := Write("", Document{}, nil); err == nil {
		t.Fatalf("Write(\"\") error = nil")
	}
}

// Package export writes a league's analysis and rankings to a YAML file.
package export

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/five82/pitchside/internal/state"
)

// Document is the on-disk export layout.
type Document struct {
	League     string               `yaml:"league"`
	ExportedAt time.Time            `yaml:"exported_at"`
	Teams      []state.TeamAnalysis `yaml:"teams"`
	Rankings   []Ranking            `yaml:"rankings,omitempty"`
}

// Ranking is one exported rankings row. Scores are omitted when the player
// had no usable statistics.
type Ranking struct {
	Role         string   `yaml:"role"`
	PlayerID     int      `yaml:"player_id"`
	Player       string   `yaml:"player"`
	Team         string   `yaml:"team"`
	Club         string   `yaml:"club,omitempty"`
	AttackScore  *float64 `yaml:"attack_score,omitempty"`
	DefenseScore *float64 `yaml:"defense_score,omitempty"`
}

// Summary reports what Write produced.
type Summary struct {
	Teams    int
	Rankings int
}

// NewDocument builds a Document for mode.
func NewDocument(mode state.LeagueMode, teams []state.TeamAnalysis, rows []state.RankingRow, at time.Time) Document {
	doc := Document{
		League:     mode.Slug(),
		ExportedAt: at.UTC(),
		Teams:      teams,
	}
	for _, r := range rows {
		doc.Rankings = append(doc.Rankings, Ranking{
			Role:         r.Role.String(),
			PlayerID:     r.PlayerID,
			Player:       r.PlayerName,
			Team:         r.TeamName,
			Club:         r.Club,
			AttackScore:  finite(r.AttackScore),
			DefenseScore: finite(r.DefenseScore),
		})
	}
	return doc
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	rounded := math.Round(v*1000) / 1000
	return &rounded
}

// Write encodes doc to path, replacing any existing file. progress, when
// non-nil, is called before each section is written.
func Write(path string, doc Document, progress func(state.Progress)) (Summary, error) {
	if path == "" {
		return Summary{}, errors.New("export path is empty")
	}
	report := func(current int, msg string) {
		if progress != nil {
			progress(state.Progress{Current: current, Total: 3, Message: msg})
		}
	}

	report(0, "Preparing export")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Summary{}, errors.Wrap(err, "create export directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.yaml")
	if err != nil {
		return Summary{}, errors.Wrap(err, "create export file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	report(1, "Writing teams and rankings")
	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return Summary{}, errors.Wrap(err, "encode export")
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return Summary{}, errors.Wrap(err, "flush export")
	}
	if err := tmp.Close(); err != nil {
		return Summary{}, errors.Wrap(err, "close export file")
	}

	report(2, "Finalizing")
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Summary{}, errors.Wrap(err, "replace export file")
	}
	return Summary{Teams: len(doc.Teams), Rankings: len(doc.Rankings)}, nil
}

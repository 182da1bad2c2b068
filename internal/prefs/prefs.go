// Package prefs persists the UI choices a user makes between sessions.
// Preferences live in ~/.config/pitchside/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/pitchside/internal/state"
)

// Prefs holds the remembered UI state.
type Prefs struct {
	Theme       string `toml:"theme"`
	League      string `toml:"league,omitempty"`
	Sort        string `toml:"sort,omitempty"`
	Placeholder bool   `toml:"placeholder"`
}

const (
	defaultPrefsPath = "~/.config/pitchside/prefs.toml"
	defaultTheme     = "Pitch"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Any problem reading or decoding the
// file yields defaults; prefs never block startup.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}
	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(raw, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}
	}
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs
}

// LeagueMode returns the remembered league, if it names a known one.
func (p Prefs) LeagueMode() (state.LeagueMode, bool) {
	if strings.TrimSpace(p.League) == "" {
		return state.LeaguePremierLeague, false
	}
	return state.ParseLeague(p.League)
}

// SortMode returns the remembered sort order, defaulting to Hot.
func (p Prefs) SortMode() state.SortMode {
	for m := state.SortHot; m <= state.SortUpset; m++ {
		if strings.EqualFold(m.String(), strings.TrimSpace(p.Sort)) {
			return m
		}
	}
	return state.SortHot
}

// Capture records the parts of s worth remembering.
func (p Prefs) Capture(s *state.Store) Prefs {
	p.League = s.League.Slug()
	p.Sort = strings.ToLower(s.Sort.String())
	p.Placeholder = s.PlaceholderEnabled
	return p
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

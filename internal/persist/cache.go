// Package persist keeps a best-effort on-disk copy of each league's
// analysis, squads and players so rankings are available before the network
// answers.
package persist

import (
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/state"
)

const (
	cacheVersion = 1
	cacheFile    = "cache.json"
)

type fileFormat struct {
	Version int                     `json:"version"`
	Leagues map[string]*leagueCache `json:"leagues"`
}

type leagueCache struct {
	Analysis []state.TeamAnalysis        `json:"analysis"`
	Squads   map[int][]state.SquadPlayer `json:"squads"`
	Players  map[int]state.PlayerDetail  `json:"players"`
}

// Cache reads and writes the cache file in a directory.
type Cache struct {
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/pitchside, falling back to
// ~/.cache/pitchside.
func DefaultDir() string {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, "pitchside")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pitchside")
	}
	return filepath.Join(home, ".cache", "pitchside")
}

// New returns a Cache rooted at dir, or DefaultDir when dir is empty.
func New(dir string) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Cache{dir: dir}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, cacheFile)
}

// LoadInto copies the cached data for the store's current league into s and
// marks rankings dirty. A missing file, a version mismatch or a decode error
// leaves s untouched; only unexpected read errors are returned.
func (c *Cache) LoadInto(s *state.Store) (bool, error) {
	file, err := c.read()
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, errUnusable) {
			return false, nil
		}
		return false, err
	}
	league := file.Leagues[s.League.Slug()]
	if league == nil {
		return false, nil
	}

	if len(league.Analysis) > 0 {
		s.Analysis = league.Analysis
		s.AnalysisLoading = false
	}
	s.Squads = league.Squads
	if s.Squads == nil {
		s.Squads = make(map[int][]state.SquadPlayer)
	}
	s.Players = league.Players
	if s.Players == nil {
		s.Players = make(map[int]state.PlayerDetail)
	}
	s.RankingsDirty = true
	return true, nil
}

// SaveFrom writes the store's current league into the cache file, keeping
// the other leagues already on disk. The file is replaced atomically.
func (c *Cache) SaveFrom(s *state.Store) error {
	file, err := c.read()
	if err != nil {
		file = &fileFormat{}
	}
	file.Version = cacheVersion
	if file.Leagues == nil {
		file.Leagues = make(map[string]*leagueCache)
	}
	file.Leagues[s.League.Slug()] = &leagueCache{
		Analysis: s.Analysis,
		Squads:   s.Squads,
		Players:  s.Players,
	}

	data, err := sonic.Marshal(file)
	if err != nil {
		return errors.Wrap(err, "encode cache")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Wrap(err, "create cache directory")
	}
	tmp, err := os.CreateTemp(c.dir, ".cache-*.json")
	if err != nil {
		return errors.Wrap(err, "create cache file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write cache file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cache file")
	}
	if err := os.Rename(tmp.Name(), c.Path()); err != nil {
		return errors.Wrap(err, "replace cache file")
	}
	return nil
}

var errUnusable = errors.New("cache file unusable")

func (c *Cache) read() (*fileFormat, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		return nil, err
	}
	var file fileFormat
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode cache"), errUnusable)
	}
	if file.Version != cacheVersion {
		return nil, errors.Mark(errors.Newf("cache version %d", file.Version), errUnusable)
	}
	return &file, nil
}

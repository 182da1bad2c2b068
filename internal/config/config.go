package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/pitchside/internal/feed"
	"github.com/five82/pitchside/internal/provider"
	"github.com/five82/pitchside/internal/state"
)

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL            string        `validate:"required,url"`
	UserAgent          string        `validate:"required"`
	RequestTimeout     time.Duration `validate:"gte=1s"`
	League             state.LeagueMode
	LivePoll           time.Duration `validate:"gte=5s"`
	UpcomingPoll       time.Duration `validate:"gte=10s"`
	UpcomingWindowDays int           `validate:"gte=1,lte=14"`
	DetailsInflightMax int           `validate:"gte=1,lte=64"`
	FetchParallelism   int           `validate:"gte=2,lte=32"`
	DetailCacheTTL     time.Duration `validate:"gte=0"`
	AutoWarm           AutoWarm      `validate:"oneof=off missing full"`
	CacheDir           string        `validate:"required"`
	LogPath            string        `validate:"required"`
	LogLevel           string        `validate:"oneof=debug info warn error"`
	LeagueIDs          map[state.LeagueMode][]int
}

// AutoWarm selects whether the rankings cache is warmed after analysis
// arrives.
type AutoWarm string

const (
	AutoWarmOff     AutoWarm = "off"
	AutoWarmMissing AutoWarm = "missing"
	AutoWarmFull    AutoWarm = "full"
)

const (
	defaultConfigPath    = "~/.config/pitchside/config.toml"
	defaultBaseURL       = "https://www.fotmob.com"
	defaultUserAgent     = "pitchside/0.1"
	defaultTimeoutSecs   = 5
	defaultLiveSecs      = 15
	minLiveSecs          = 5
	defaultUpcomingSecs  = 60
	minUpcomingSecs      = 10
	defaultWindowDays    = 7
	defaultInflightMax   = 8
	defaultParallelism   = 6
	defaultDetailTTLSecs = 300
	defaultLogPath       = "~/.local/state/pitchside/pitchside.log"
	defaultLogLevel      = "info"
)

// Environment variables that override the file.
const (
	EnvLivePoll     = "PULSE_POLL_SECS"
	EnvUpcomingPoll = "UPCOMING_POLL_SECS"
	EnvWindowDays   = "UPCOMING_WINDOW_DAYS"
	EnvInflightMax  = "DETAILS_INFLIGHT_MAX"
	EnvAutoWarm     = "AUTO_WARM_CACHE"
	EnvBaseURL      = "PITCHSIDE_BASE_URL"
)

type fileConfig struct {
	BaseURL               string           `toml:"base_url"`
	RequestTimeoutSeconds *int             `toml:"request_timeout_seconds"`
	UserAgent             string           `toml:"user_agent"`
	League                string           `toml:"league"`
	LivePollSeconds       *int             `toml:"live_poll_seconds"`
	UpcomingPollSeconds   *int             `toml:"upcoming_poll_seconds"`
	UpcomingWindowDays    *int             `toml:"upcoming_window_days"`
	DetailsInflightMax    *int             `toml:"details_inflight_max"`
	FetchParallelism      *int             `toml:"fetch_parallelism"`
	DetailCacheTTLSeconds *int             `toml:"detail_cache_ttl_seconds"`
	AutoWarm              string           `toml:"auto_warm"`
	CacheDir              string           `toml:"cache_dir"`
	LogPath               string           `toml:"log_path"`
	LogLevel              string           `toml:"log_level"`
	LeagueIDs             map[string][]int `toml:"league_ids"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:            defaultBaseURL,
		UserAgent:          defaultUserAgent,
		RequestTimeout:     defaultTimeoutSecs * time.Second,
		League:             state.LeaguePremierLeague,
		LivePoll:           defaultLiveSecs * time.Second,
		UpcomingPoll:       defaultUpcomingSecs * time.Second,
		UpcomingWindowDays: defaultWindowDays,
		DetailsInflightMax: defaultInflightMax,
		FetchParallelism:   defaultParallelism,
		DetailCacheTTL:     defaultDetailTTLSecs * time.Second,
		AutoWarm:           AutoWarmOff,
		CacheDir:           defaultCacheDir(),
		LogPath:            mustExpand(defaultLogPath),
		LogLevel:           defaultLogLevel,
		LeagueIDs:          make(map[state.LeagueMode][]int),
	}
}

// Load reads the TOML config at path (or the default location), applies
// environment overrides, clamps intervals and validates the result. A
// missing file means defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	var raw fileConfig

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.applyFile(raw); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.clamp()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw fileConfig) error {
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(raw.League); v != "" {
		mode, ok := state.ParseLeague(v)
		if !ok {
			return fmt.Errorf("parse config: unknown league %q", v)
		}
		c.League = mode
	}
	setSeconds(&c.RequestTimeout, raw.RequestTimeoutSeconds)
	setSeconds(&c.LivePoll, raw.LivePollSeconds)
	setSeconds(&c.UpcomingPoll, raw.UpcomingPollSeconds)
	setSeconds(&c.DetailCacheTTL, raw.DetailCacheTTLSeconds)
	setInt(&c.UpcomingWindowDays, raw.UpcomingWindowDays)
	setInt(&c.DetailsInflightMax, raw.DetailsInflightMax)
	setInt(&c.FetchParallelism, raw.FetchParallelism)
	if v := strings.TrimSpace(raw.AutoWarm); v != "" {
		c.AutoWarm = AutoWarm(strings.ToLower(v))
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		c.CacheDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		c.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	for slug, ids := range raw.LeagueIDs {
		mode, ok := state.ParseLeague(slug)
		if !ok {
			return fmt.Errorf("parse config: unknown league %q in league_ids", slug)
		}
		c.LeagueIDs[mode] = ids
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoWarm)); v != "" {
		c.AutoWarm = parseAutoWarm(v)
	}
	for _, o := range []struct {
		key  string
		dur  *time.Duration
		dest *int
	}{
		{key: EnvLivePoll, dur: &c.LivePoll},
		{key: EnvUpcomingPoll, dur: &c.UpcomingPoll},
		{key: EnvWindowDays, dest: &c.UpcomingWindowDays},
		{key: EnvInflightMax, dest: &c.DetailsInflightMax},
	} {
		raw := strings.TrimSpace(os.Getenv(o.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", o.key, err)
		}
		if o.dur != nil {
			*o.dur = time.Duration(n) * time.Second
		} else {
			*o.dest = n
		}
	}
	return nil
}

// parseAutoWarm accepts the mode names plus the boolean spellings the env
// variable has historically used.
func parseAutoWarm(raw string) AutoWarm {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on", "full":
		return AutoWarmFull
	case "missing":
		return AutoWarmMissing
	case "0", "false", "no", "off":
		return AutoWarmOff
	}
	return AutoWarm(strings.ToLower(raw))
}

func (c *Config) clamp() {
	c.LivePoll = max(c.LivePoll, minLiveSecs*time.Second)
	c.UpcomingPoll = max(c.UpcomingPoll, minUpcomingSecs*time.Second)
	c.UpcomingWindowDays = min(max(c.UpcomingWindowDays, 1), 14)
	c.DetailsInflightMax = min(max(c.DetailsInflightMax, 1), 64)
	c.FetchParallelism = min(max(c.FetchParallelism, 2), 32)
	if c.RequestTimeout < time.Second {
		c.RequestTimeout = defaultTimeoutSecs * time.Second
	}
	if !strings.Contains(c.BaseURL, "://") {
		c.BaseURL = "https://" + c.BaseURL
	}
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FeedConfig returns the worker schedule derived from c.
func (c Config) FeedConfig() feed.Config {
	ids := make(map[state.LeagueMode][]int, len(c.LeagueIDs))
	for mode, v := range c.LeagueIDs {
		ids[mode] = append([]int(nil), v...)
	}
	return feed.Config{
		LivePoll:           c.LivePoll,
		UpcomingPoll:       c.UpcomingPoll,
		UpcomingWindowDays: c.UpcomingWindowDays,
		DetailsInflightMax: c.DetailsInflightMax,
		FetchParallelism:   c.FetchParallelism,
		LeagueIDs:          ids,
	}
}

// ProviderConfig returns the HTTP client settings derived from c.
func (c Config) ProviderConfig() provider.Config {
	return provider.Config{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.RequestTimeout,
		Breaker:   provider.DefaultBreakerConfig(),
	}
}

func setSeconds(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Second
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func defaultCacheDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); base != "" {
		return filepath.Join(base, "pitchside")
	}
	return mustExpand("~/.cache/pitchside")
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/five82/pitchside/internal/config"
	"github.com/five82/pitchside/internal/feed"
	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/persist"
	"github.com/five82/pitchside/internal/prefs"
	"github.com/five82/pitchside/internal/provider"
	"github.com/five82/pitchside/internal/queue"
	"github.com/five82/pitchside/internal/state"
	"github.com/five82/pitchside/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/pitchside/prefs.toml
	PollEvery  int    // live poll in seconds; zero keeps the configured value
	League     string // league slug; empty uses prefs, then config
	ExportDir  string // empty uses the working directory
}

// Run boots the worker and the TUI and blocks until the user quits or ctx
// is cancelled. The analysis cache and preferences are saved on the way out.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	userPrefs := prefs.Load(opts.PrefsPath)

	logger, err := logging.NewFile(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer func() { _ = logger.Close() }()
	logging.SetDefault(logger)

	pcfg := cfg.ProviderConfig()
	pcfg.Logger = logger
	client, err := provider.NewClient(pcfg)
	if err != nil {
		return errors.Wrap(err, "init provider client")
	}

	league, err := startLeague(opts.League, userPrefs, cfg)
	if err != nil {
		return err
	}
	store := newStore(league, cfg, userPrefs)

	cache := persist.New(cfg.CacheDir)
	if loaded, err := cache.LoadInto(store); err != nil {
		logger.Warn("analysis cache unreadable", "path", cache.Path(), "error", err)
	} else if loaded {
		store.PushLog(fmt.Sprintf("[INFO] Loaded cached analysis for %s", store.League))
	}

	commands := queue.New[state.Command]()
	deltas := queue.New[state.Delta]()
	worker, err := feed.New(feed.Options{
		Config:   cfg.FeedConfig(),
		Fetcher:  client,
		Commands: commands,
		Deltas:   deltas,
		Logger:   logger,
	})
	if err != nil {
		return errors.Wrap(err, "init worker")
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	var final ui.Model
	g.Go(func() error {
		defer cancel()
		m, err := ui.Run(ui.Options{
			Context:   gctx,
			Store:     store,
			Commands:  commands,
			Deltas:    deltas,
			Cache:     cache,
			Logger:    logger,
			AutoWarm:  cfg.AutoWarm,
			DetailTTL: cfg.DetailCacheTTL,
			ExportDir: exportDir,
			Prefs:     userPrefs,
			PrefsPath: opts.PrefsPath,
		})
		final = m
		if err != nil && errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})

	runErr := g.Wait()
	commands.Close()
	deltas.Close()

	if err := cache.SaveFrom(store); err != nil {
		logger.Warn("save analysis cache", "path", cache.Path(), "error", err)
	}
	if err := prefs.Save(prefsPath(opts.PrefsPath), final.Prefs()); err != nil {
		logger.Warn("save prefs", "error", err)
	}
	logger.Info("pitchside stopped", "error", runErr)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return errors.Wrap(runErr, "run")
	}
	return nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}
	if opts.PollEvery > 0 {
		cfg.LivePoll = max(time.Duration(opts.PollEvery)*time.Second, 5*time.Second)
	}
	return cfg, nil
}

// startLeague picks the league to open with: the flag, then the remembered
// league, then the configured default.
func startLeague(flag string, p prefs.Prefs, cfg config.Config) (state.LeagueMode, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		mode, ok := state.ParseLeague(flag)
		if !ok {
			return 0, errors.Newf("unknown league %q", flag)
		}
		return mode, nil
	}
	if mode, ok := p.LeagueMode(); ok {
		return mode, nil
	}
	return cfg.League, nil
}

func newStore(league state.LeagueMode, cfg config.Config, p prefs.Prefs) *state.Store {
	store := state.NewStore(league)
	for mode, ids := range cfg.LeagueIDs {
		store.LeagueIDs[mode] = ids
	}
	store.Sort = p.SortMode()
	if p.Placeholder {
		store.EnablePlaceholder()
	}
	return store
}

func prefsPath(path string) string {
	if path == "" {
		return prefs.DefaultPath()
	}
	return path
}

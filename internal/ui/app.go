package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pitchside/internal/config"
	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/persist"
	"github.com/five82/pitchside/internal/prefs"
	"github.com/five82/pitchside/internal/queue"
	"github.com/five82/pitchside/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewPulse View = iota
	ViewUpcoming
	ViewAnalysis
	ViewRankings
	ViewLogs
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewUpcoming:
		return "Upcoming"
	case ViewAnalysis:
		return "Analysis"
	case ViewRankings:
		return "Rankings"
	case ViewLogs:
		return "Logs"
	default:
		return "Pulse"
	}
}

// analysisPane is the drill-down level inside the analysis view.
type analysisPane int

const (
	paneTeams analysisPane = iota
	paneSquad
	panePlayer
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Store    *state.Store
	Commands *queue.Queue[state.Command]
	Deltas   *queue.Queue[state.Delta]
	// Cache, when set, is consulted on league switches.
	Cache  *persist.Cache
	Logger *logging.Logger

	AutoWarm  config.AutoWarm
	DetailTTL time.Duration
	ExportDir string

	Prefs     prefs.Prefs
	PrefsPath string

	Tick time.Duration
	Now  func() time.Time
}

// throttles remembers when requests were last sent. It is shared by every
// copy of the Model.
type throttles struct {
	detail   map[string]time.Time
	analysis map[state.LeagueMode]time.Time
	warmed   map[state.LeagueMode]bool
	upcoming time.Time
}

// Model is the presentation consumer. It is the only writer of the store:
// every tick it drains the delta queue, applies each delta in order and
// re-derives rankings when they are dirty.
type Model struct {
	store    *state.Store
	commands *queue.Queue[state.Command]
	deltas   *queue.Queue[state.Delta]
	cache    *persist.Cache
	logger   *logging.Logger

	autoWarm  config.AutoWarm
	detailTTL time.Duration
	exportDir string
	prefs     prefs.Prefs
	prefsPath string
	tick      time.Duration
	now       func() time.Time

	keys     keyMap
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool

	pane             analysisPane
	teamSelected     int
	squadSelected    int
	upcomingSelected int

	detail  viewport.Model
	logView viewport.Model

	sent *throttles
}

// New creates the consumer model.
func New(opts Options) Model {
	store := opts.Store
	if store == nil {
		store = state.NewStore(state.LeaguePremierLeague)
	}
	commands := opts.Commands
	if commands == nil {
		commands = queue.New[state.Command]()
	}
	deltas := opts.Deltas
	if deltas == nil {
		deltas = queue.New[state.Delta]()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	detailTTL := opts.DetailTTL
	if detailTTL <= 0 {
		detailTTL = 5 * time.Minute
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	autoWarm := opts.AutoWarm
	if autoWarm == "" {
		autoWarm = config.AutoWarmOff
	}

	return Model{
		store:     store,
		commands:  commands,
		deltas:    deltas,
		cache:     opts.Cache,
		logger:    logger.With("component", "ui"),
		autoWarm:  autoWarm,
		detailTTL: detailTTL,
		exportDir: opts.ExportDir,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		tick:      tick,
		now:       now,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		view:      ViewPulse,
		detail:    viewport.New(0, 0),
		logView:   viewport.New(0, 0),
		sent: &throttles{
			detail:   make(map[string]time.Time),
			analysis: make(map[state.LeagueMode]time.Time),
			warmed:   make(map[state.LeagueMode]bool),
		},
	}
}

// Store returns the store the model owns. Only call it after the program
// has exited.
func (m Model) Store() *state.Store {
	return m.store
}

// Prefs returns the preferences as they stand now.
func (m Model) Prefs() prefs.Prefs {
	p := m.prefs.Capture(m.store)
	p.Theme = m.theme.Name
	return p
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd(m.tick), waitDeltas(m.deltas))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewports()
		m.syncViewports()
		return m, nil

	case tickMsg:
		m.consume(m.now())
		m.syncViewports()
		return m, tickCmd(m.tick)

	case deltasMsg:
		m.consume(m.now())
		m.syncViewports()
		return m, waitDeltas(m.deltas)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

type tickMsg time.Time

// deltasMsg wakes the consumer as soon as the worker pushes a delta, so
// results do not wait for the next tick.
type deltasMsg struct{}

func waitDeltas(q *queue.Queue[state.Delta]) tea.Cmd {
	return func() tea.Msg {
		<-q.Ready()
		return deltasMsg{}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and returns the final model.
func Run(opts Options) (Model, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		return m, err
	}
	return New(opts), err
}

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Main content panels
	SurfaceAlt string // Secondary surfaces

	// Table colors
	SelectionBg   string
	SelectionText string

	// Border colors
	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Badge colors keyed by quality tier or event kind ("EVENT", "GOAL", ...).
	BadgeColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		FocusPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 1),

		badgeColors: t.BadgeColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header    lipgloss.Style
	Logo      lipgloss.Style
	Selected  lipgloss.Style
	Pane      lipgloss.Style
	FocusPane lipgloss.Style

	badgeColors map[string]string
	background  string
	muted       string
}

// Badge returns a filled style for a quality tier or event kind label.
func (s Styles) Badge(label string) lipgloss.Style {
	color := s.badgeColors[label]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Pitch": pitchTheme(),
	"Night": nightTheme(),
	"Slate": slateTheme(),
}

var themeOrder = []string{"Pitch", "Night", "Slate"}

// GetTheme returns a theme by name, falling back to Pitch.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return pitchTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func pitchTheme() Theme {
	return Theme{
		Name: "Pitch",

		Background: "#0b1a12",
		Surface:    "#10261a",
		SurfaceAlt: "#173423",

		SelectionBg:   "#1f5135",
		SelectionText: "#f0f7f2",

		Border:      "#2c5a40",
		BorderFocus: "#7bd88f",

		Text:    "#e6f2ea",
		Muted:   "#9bb8a5",
		Faint:   "#6a8a75",
		Accent:  "#7bd88f",
		Success: "#a6e22e",
		Warning: "#f4d35e",
		Danger:  "#ee6352",
		Info:    "#5bc0eb",

		BadgeColors: map[string]string{
			"BASIC": "#6a8a75",
			"EVENT": "#5bc0eb",
			"TRACK": "#7bd88f",
			"GOAL":  "#a6e22e",
			"CARD":  "#f4d35e",
			"SUB":   "#9bb8a5",
			"SHOT":  "#5bc0eb",
		},
	}
}

func nightTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Night",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf",
		Muted:   "#738091",
		Faint:   "#71839b",
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",
		Info:    "#63cdcf",

		BadgeColors: map[string]string{
			"BASIC": "#738091",
			"EVENT": "#63cdcf",
			"TRACK": "#9d79d6",
			"GOAL":  "#81b29a",
			"CARD":  "#dbc074",
			"SUB":   "#71839b",
			"SHOT":  "#719cd6",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		BadgeColors: map[string]string{
			"BASIC": "#64748b",
			"EVENT": "#06b6d4",
			"TRACK": "#0ea5e9",
			"GOAL":  "#22c55e",
			"CARD":  "#f59e0b",
			"SUB":   "#94a3b8",
			"SHOT":  "#38bdf8",
		},
	}
}

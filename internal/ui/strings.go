package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/five82/pitchside/internal/state"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// pct renders a probability as a whole percentage.
func pct(p float64) string {
	return fmt.Sprintf("%3.0f%%", p*100)
}

// signedPct renders a probability change in percentage points.
func signedPct(d float64) string {
	if math.Abs(d) < 0.0005 {
		return "  ·  "
	}
	return fmt.Sprintf("%+.1f", d*100)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline maps values in [0,1] onto block characters.
func sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		v = min(max(v, 0), 1)
		b.WriteRune(sparkRunes[int(math.Round(v*float64(len(sparkRunes)-1)))])
	}
	return b.String()
}

// minuteLabel renders the clock column of a match row.
func minuteLabel(m state.Match) string {
	switch {
	case m.Live:
		return fmt.Sprintf("%d'", m.Minute)
	case m.Minute >= 90:
		return "FT"
	default:
		return "--"
	}
}

// commentaryMinute renders the minute of a ticker line, or blanks when the
// entry has none.
func commentaryMinute(e state.CommentaryEntry) string {
	if e.Minute == nil {
		return "   "
	}
	if e.MinutePlus != nil && *e.MinutePlus > 0 {
		return fmt.Sprintf("%d+%d'", *e.Minute, *e.MinutePlus)
	}
	return fmt.Sprintf("%d'", *e.Minute)
}

// score renders a ranking score, with "-" for players that have none.
func score(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "    -"
	}
	return fmt.Sprintf("%+5.2f", v)
}

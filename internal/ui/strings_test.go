package ui

import (
	"math"
	"testing"

	"github.com/five82/pitchside/internal/state"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Arsenal", 10, "Arsenal"},
		{"Borussia Monchengladbach", 10, "Borussi..."},
		{"Borussia Monchengladbach", 11, "Borussia..."},
		{"  padded  ", 0, "padded"},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{0, 0.5, 1, 2, -1}); got != "▁▅██▁" {
		t.Fatalf("sparkline = %q", got)
	}
}

func TestMinuteLabels(t *testing.T) {
	if got := minuteLabel(state.Match{Live: true, Minute: 67}); got != "67'" {
		t.Fatalf("minuteLabel(live) = %q", got)
	}
	if got := minuteLabel(state.Match{Minute: 90}); got != "FT" {
		t.Fatalf("minuteLabel(finished) = %q", got)
	}
	if got := minuteLabel(state.Match{}); got != "--" {
		t.Fatalf("minuteLabel(not started) = %q", got)
	}

	minute, plus := 45, 2
	if got := commentaryMinute(state.CommentaryEntry{Minute: &minute, MinutePlus: &plus}); got != "45+2'" {
		t.Fatalf("commentaryMinute = %q", got)
	}
	if got := commentaryMinute(state.CommentaryEntry{}); got != "   " {
		t.Fatalf("commentaryMinute(no minute) = %q", got)
	}
}

func TestScore(t *testing.T) {
	if got := score(math.Inf(-1)); got != "    -" {
		t.Fatalf("score(-Inf) = %q", got)
	}
	if got := score(1.234); got != "+1.23" {
		t.Fatalf("score(1.234) = %q", got)
	}
}

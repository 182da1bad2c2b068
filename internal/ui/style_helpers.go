package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders segments on one background color. Applying the color to
// every word and every gap keeps ANSI resets between segments from punching
// holes in the bar. See https://github.com/charmbracelet/lipgloss/discussions/78
type BgStyle struct {
	bg    lipgloss.Color
	space string
}

// NewBgStyle creates a background helper for the given color.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render renders text with style on the background, spaces included.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = wordStyle.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Join joins parts with a styled separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads rendered content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders text segments on one background color. lipgloss resets
// between styled segments leave gaps, so every word and space is painted.
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

// Render paints text with style on the background, spaces included.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	out := make([]string, len(words))
	for i, w := range words {
		if w != "" {
			out[i] = wordStyle.Render(w)
		}
	}
	return strings.Join(out, b.space)
}

// Space returns a single painted space.
func (b BgStyle) Space() string {
	return b.space
}

// FillLine pads a single rendered line to width with the background color.
// Overflow is cut rather than wrapped.
func (b BgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).MaxHeight(1).Render(content)
}

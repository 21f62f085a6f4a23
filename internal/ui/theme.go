package ui

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leadconsole/internal/lead"
)

// Theme defines colors for the console.
type Theme struct {
	Name string

	Background string // outermost background
	Surface    string // header and command bar
	SurfaceAlt string // unfocused panes
	FocusBg    string // focused pane

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors is keyed by lowercased lead status.
	StatusColors map[string]string
}

// Styles contains pre-built lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	statusColors map[string]string
	background   string
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		InfoText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		statusColors: t.StatusColors,
		background:   t.Background,
	}
}

// StatusStyle returns a badge style for a lead status.
func (s Styles) StatusStyle(status lead.Status) lipgloss.Style {
	color := s.statusColors[strings.ToLower(string(status))]
	if color == "" {
		color = "#6272A4"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// StatusColor returns the foreground color used for a status in list rows.
func (t Theme) StatusColor(status lead.Status) string {
	if color, ok := t.StatusColors[strings.ToLower(string(status))]; ok {
		return color
	}
	return t.Text
}

// HuhTheme returns a form theme matching the console palette.
func (t Theme) HuhTheme() *huh.Theme {
	h := huh.ThemeBase()

	h.Focused.Title = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true)
	h.Focused.SelectSelector = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	h.Focused.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success))
	h.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	h.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Background)).
		Background(lipgloss.Color(t.Accent)).
		Padding(0, 1)
	h.Focused.BlurredButton = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Padding(0, 1)
	h.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	h.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	h.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	h.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Focused.Description = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger))
	h.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger))

	h.Blurred.Title = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	h.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))

	return h
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name, falling back to Dracula.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
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

// ThemeNames returns the available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21",
		Surface:    "#282A36",
		SurfaceAlt: "#21222C",
		FocusBg:    "#343746",

		SelectionBg:   "#44475A",
		SelectionText: "#F8F8F2",

		Border:      "#44475A",
		BorderFocus: "#BD93F9",

		Text:    "#F8F8F2",
		Muted:   "#6272A4",
		Faint:   "#44475A",
		Accent:  "#BD93F9",
		Success: "#50FA7B",
		Warning: "#FFB86C",
		Danger:  "#FF5555",
		Info:    "#8BE9FD",

		StatusColors: map[string]string{
			"new":         "#8BE9FD", // cyan
			"contacted":   "#BD93F9", // purple
			"qualified":   "#50FA7B", // green
			"unqualified": "#FF5555", // red
			"converted":   "#FFB86C", // orange
		},
	}
}

func slateTheme() Theme {
	// Tailwind slate/sky palette
	return Theme{
		Name: "Slate",

		Background: "#020617",
		Surface:    "#0f172a",
		SurfaceAlt: "#1e293b",
		FocusBg:    "#283548",

		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",

		Border:      "#334155",
		BorderFocus: "#38bdf8",

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		StatusColors: map[string]string{
			"new":         "#38bdf8", // sky-400
			"contacted":   "#8b5cf6", // violet-500
			"qualified":   "#22c55e", // green-500
			"unqualified": "#dc2626", // red-600
			"converted":   "#f59e0b", // amber-500
		},
	}
}

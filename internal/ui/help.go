package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Navigation", "Movement", "Leads", "Activity", "General"}

// renderHelp renders the help overlay from the key map.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		title := "Keys"
		if i < len(helpSectionTitles) {
			title = helpSectionTitles[i]
		}
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		for _, binding := range group {
			writeHelpLine(&b, binding, keyStyle, styles.Text)
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func writeHelpLine(b *strings.Builder, binding key.Binding, keyStyle, descStyle lipgloss.Style) {
	h := binding.Help()
	if h.Key == "" {
		return
	}
	b.WriteString(keyStyle.Render(h.Key))
	b.WriteString(descStyle.Render(h.Desc))
	b.WriteString("\n")
}

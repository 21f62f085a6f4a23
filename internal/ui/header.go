package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const logoText = "LEADCONSOLE"

// renderHeader draws the status line: logo, counts, view state, activity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Render(" │ ", styles.FaintText)

	parts := []string{
		bg.Render(logoText, styles.Logo),
		bg.Render(fmt.Sprintf("%d leads", len(m.snapshot.Leads)), styles.Text),
		bg.Render(fmt.Sprintf("%d opportunities", len(m.snapshot.Opportunities)), styles.Text),
	}

	v := m.snapshot.View
	viewInfo := "filter " + filterLabel(v.FilterStatus)
	if strings.TrimSpace(v.Search) != "" {
		viewInfo += " · search \"" + truncate(v.Search, 20) + "\""
	}
	parts = append(parts, bg.Render(viewInfo, styles.MutedText))

	switch {
	case m.snapshot.Loading:
		parts = append(parts, bg.Render(m.spinner.View()+" loading", styles.WarningText))
	case m.snapshot.PendingSaves > 0:
		parts = append(parts, bg.Render(fmt.Sprintf("%s saving %d", m.spinner.View(), m.snapshot.PendingSaves), styles.WarningText))
	}

	line := strings.Join(parts, sep)
	if status := m.renderStatus(bg); status != "" {
		line += sep + status
	}
	return bg.FillLine(line, m.width)
}

// renderStatus shows the flash message, or the store's last error when there
// is no fresher message.
func (m Model) renderStatus(bg BgStyle) string {
	styles := m.theme.Styles()
	switch {
	case m.flash.text != "" && m.flash.isError:
		return bg.Render(m.flash.text, styles.DangerText)
	case m.flash.text != "":
		return bg.Render(m.flash.text, styles.SuccessText)
	case m.snapshot.LastError != "":
		return bg.Render(m.snapshot.LastError, styles.DangerText)
	}
	return ""
}

// renderCommandBar lists the keys for the active view or input mode.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return bg.FillLine(m.search.View(), m.width)
	}

	var hints [][2]string
	switch {
	case m.form != nil:
		hints = [][2]string{{"tab", "next field"}, {"enter", "submit"}, {"esc", "cancel"}}
	case m.currentView == ViewOpportunities:
		hints = [][2]string{{"j/k", "move"}, {"l", "leads"}, {"a", "activity"}, {"?", "help"}, {"e", "quit"}}
	case m.currentView == ViewActivity:
		hints = [][2]string{{"space", "follow"}, {"g/G", "top/bottom"}, {"l", "leads"}, {"?", "help"}, {"e", "quit"}}
	default:
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, [2]string{h.Key, strings.ToLower(h.Desc)})
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, bg.Render("<"+h[0]+">", keyStyle)+bg.Space()+bg.Render(h[1], styles.MutedText))
	}
	return bg.FillLine(strings.Join(parts, bg.Render("  ", styles.MutedText)), m.width)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leadconsole/internal/logtail"
	"github.com/five82/leadconsole/internal/state"
)

func (m *Model) refreshLogs() tea.Cmd {
	if strings.TrimSpace(m.logPath) == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.follow = true
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.follow = false
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.follow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.follow = false
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.follow = false
	}
	return m, nil
}

func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		return
	}
	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render("Cannot read log: " + m.logErr.Error())
	}
	if strings.TrimSpace(m.logPath) == "" {
		return styles.MutedText.Render("Logging is disabled")
	}
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("No activity yet")
	}

	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		out = append(out, m.formatLogLine(logtail.Parse(line)))
	}
	return strings.Join(out, "\n")
}

// formatLogLine renders "15:04:05 LEVEL msg key=value ...".
func (m Model) formatLogLine(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Level == "" && e.Time == "" {
		return styles.Text.Render(e.Raw)
	}

	parts := make([]string, 0, 3+len(e.Attrs))
	if ts := shortTime(e.Time); ts != "" {
		parts = append(parts, styles.FaintText.Render(ts))
	}
	if e.Level != "" {
		parts = append(parts, m.levelStyle(e.Level).Render(padRight(e.Level, 5)))
	}
	if e.Msg != "" {
		msgStyle := styles.Text
		if op, ok := e.Value("op"); ok && op == state.OpRollback {
			msgStyle = styles.DangerText.Bold(true)
		}
		parts = append(parts, msgStyle.Render(e.Msg))
	}
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	for _, a := range e.Attrs {
		valueStyle := styles.MutedText
		if a.Key == "error" {
			valueStyle = styles.DangerText
		}
		parts = append(parts, keyStyle.Render(a.Key+"=")+valueStyle.Render(a.Value))
	}
	return strings.Join(parts, " ")
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}

// shortTime keeps the clock portion of an RFC 3339 timestamp.
func shortTime(ts string) string {
	_, clock, ok := strings.Cut(ts, "T")
	if !ok {
		return ts
	}
	if len(clock) >= 8 {
		return clock[:8]
	}
	return clock
}

func (m Model) renderActivity() string {
	title := "Activity"
	if !m.follow {
		title += " (paused)"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

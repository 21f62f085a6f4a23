package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leadconsole/internal/lead"
)

func (m Model) handleOpportunitiesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Opportunities)
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		m.oppRow = min(m.oppRow+1, count-1)
	case key.Matches(msg, m.keys.Up):
		m.oppRow = max(m.oppRow-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.oppRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.oppRow = count - 1
	}
	return m, nil
}

func (m Model) renderOpportunities() string {
	styles := m.theme.Styles()
	contentHeight := m.contentHeight()
	opps := m.snapshot.Opportunities

	if len(opps) == 0 {
		msg := styles.MutedText.Render("No opportunities yet. Convert a lead with c.")
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	width := m.width - 2
	rows := max(contentHeight-3, 1)
	start := 0
	if m.oppRow >= rows {
		start = m.oppRow - rows + 1
	}
	end := min(start+rows, len(opps))

	lines := []string{styles.MutedText.Render(m.opportunityHeader(width))}
	for i := start; i < end; i++ {
		selected := i == m.oppRow
		bg := m.theme.FocusBg
		style := styles.Text
		if selected {
			bg = m.theme.SelectionBg
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		}
		line := NewBgStyle(bg).Render(m.formatOpportunityRow(opps[i], width), style)
		lines = append(lines, NewBgStyle(bg).FillLine(line, width))
	}

	title := "Opportunities (" + strconv.Itoa(len(opps)) + ")"
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, contentHeight, true)
}

func (m Model) opportunityHeader(width int) string {
	return m.opportunityColumns("ID", "Name", "Account", "Stage", "Amount", width)
}

func (m Model) formatOpportunityRow(o lead.Opportunity, width int) string {
	return m.opportunityColumns(o.ID, o.Name, o.AccountName, string(o.Stage), formatAmount(o.Amount), width)
}

func (m Model) opportunityColumns(id, name, account, stage, amount string, width int) string {
	const idWidth, stageWidth, amountWidth = 14, 12, 14
	rest := max(width-idWidth-stageWidth-amountWidth-4, 10)
	nameWidth := rest / 2
	accountWidth := rest - nameWidth
	return padRight(truncate(id, idWidth), idWidth) + " " +
		padRight(truncate(name, nameWidth), nameWidth) + " " +
		padRight(truncate(account, accountWidth), accountWidth) + " " +
		padRight(stage, stageWidth) + " " +
		padLeft(amount, amountWidth)
}

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leadconsole/internal/lead"
)

// filterCycle is the order f steps through.
func filterCycle() []string {
	out := []string{lead.FilterAll}
	for _, s := range lead.Statuses() {
		out = append(out, string(s))
	}
	return out
}

// nextFilter returns the filter after current, wrapping to "all".
func nextFilter(current string) string {
	cycle := filterCycle()
	for i, f := range cycle {
		if strings.EqualFold(f, current) {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (m Model) selectedLead() (lead.Lead, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.visible) {
		return lead.Lead{}, false
	}
	return m.visible[m.selectedRow], true
}

func (m *Model) moveSelection(row int) {
	if len(m.visible) == 0 {
		return
	}
	m.selectedRow = min(max(row, 0), len(m.visible)-1)
	m.selectedID = m.visible[m.selectedRow].ID
	m.detailViewport.GotoTop()
	m.updateDetailViewport()
}

func (m Model) handleLeadsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focusedPane == 1 {
		switch {
		case key.Matches(msg, m.keys.FocusDetail):
			m.focusedPane = 0
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.detailViewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.detailViewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keys.HalfPageDown):
			m.detailViewport.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keys.HalfPageUp):
			m.detailViewport.HalfPageUp()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchBefore = m.search.Value()
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.CycleFilter):
		if m.store != nil {
			next := nextFilter(m.snapshot.View.FilterStatus)
			m.store.SetFilterStatus(next)
			m.refreshFromStore()
			m.setFlash("Filter: "+filterLabel(next), false)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleSort):
		if m.store != nil {
			m.store.SetSortDescending(!m.snapshot.View.SortDescending)
			m.refreshFromStore()
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Convert):
		return m.startConvert()

	case key.Matches(msg, m.keys.FocusDetail):
		m.focusedPane = 1
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(m.selectedRow + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(m.selectedRow - 1)
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.visible) - 1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.moveSelection(m.selectedRow + m.listRows()/2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.moveSelection(m.selectedRow - m.listRows()/2)
	}
	return m, nil
}

// handleSearchKey edits the search term. Every change is applied to the store
// so the list narrows while typing; esc restores the previous term.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.searchBefore)
		m.applySearch()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.applySearch()
	}
	return m, cmd
}

func (m *Model) applySearch() {
	if m.store == nil {
		return
	}
	m.store.SetSearch(m.search.Value())
	m.refreshFromStore()
}

// listRows is the number of lead rows that fit in the list pane.
func (m Model) listRows() int {
	return max(m.contentHeight()-2, 1)
}

func (m Model) renderLeads() string {
	styles := m.theme.Styles()
	contentHeight := m.contentHeight()

	if len(m.snapshot.Leads) == 0 {
		var msg string
		switch {
		case m.snapshot.Loading || !m.snapshot.Loaded && m.snapshot.LastError == "":
			msg = m.spinner.View() + " " + styles.MutedText.Render("Loading leads...")
		case m.snapshot.LastError != "":
			msg = styles.DangerText.Render("Could not load leads: "+m.snapshot.LastError) +
				"\n" + styles.MutedText.Render("Press r to retry")
		default:
			msg = styles.MutedText.Render("No leads")
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	listWidth, detailWidth := m.paneWidths()

	listFocused := m.focusedPane == 0 && m.form == nil
	listBg := m.theme.SurfaceAlt
	if listFocused {
		listBg = m.theme.FocusBg
	}
	listPane := m.renderTitledBox(m.listTitle(), m.renderLeadRows(listWidth-2, listBg), listWidth, contentHeight, listFocused)

	detailFocused := m.focusedPane == 1 || m.form != nil
	var detailContent, detailTitle string
	if m.form != nil {
		detailTitle = m.formTitle
		detailContent = m.form.View()
	} else {
		detailTitle = "Details"
		detailContent = m.detailViewport.View()
	}
	detailPane := m.renderTitledBox(detailTitle, detailContent, detailWidth, contentHeight, detailFocused)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) listTitle() string {
	v := m.snapshot.View
	dir := "↓"
	if !v.SortDescending {
		dir = "↑"
	}
	title := fmt.Sprintf("Leads (%d/%d) %s score", len(m.visible), len(m.snapshot.Leads), dir)
	if !strings.EqualFold(v.FilterStatus, lead.FilterAll) && v.FilterStatus != "" {
		title += " · " + v.FilterStatus
	}
	return title
}

func (m Model) renderLeadRows(width int, bgColor string) string {
	if len(m.visible) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(bgColor)).
			Render("No leads match")
	}

	rows := m.listRows()
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(m.visible))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		bg := bgColor
		if selected {
			bg = m.theme.SelectionBg
		}
		content := m.formatLeadRow(m.visible[i], width, bg, selected)
		lines = append(lines, lipgloss.NewStyle().Background(lipgloss.Color(bg)).Width(width).Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatLeadRow renders "score name · company status".
func (m Model) formatLeadRow(l lead.Lead, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	scoreStr := padLeft(strconv.Itoa(l.Score), 3)
	statusStr := string(l.Status)
	title := l.Name
	if m.width >= LayoutCompactWidth && l.Company != "" {
		title += " · " + l.Company
	}
	titleWidth := max(width-len(scoreStr)-len(statusStr)-3, 8)

	var scoreStyle, titleStyle, statusStyle lipgloss.Style
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		scoreStyle, titleStyle, statusStyle = sel, sel, sel
	} else {
		styles := m.theme.Styles()
		scoreStyle = styles.MutedText
		titleStyle = styles.Text
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(l.Status)))
	}

	return bg.Render(scoreStr, scoreStyle) + bg.Space() +
		bg.Render(padRight(truncate(title, titleWidth), titleWidth), titleStyle) + bg.Space() +
		bg.Render(statusStr, statusStyle)
}

func (m *Model) updateDetailViewport() {
	if m.detailViewport.Width == 0 {
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent())
}

func (m Model) renderDetailContent() string {
	styles := m.theme.Styles()
	l, ok := m.selectedLead()
	if !ok {
		return styles.MutedText.Render("Select a lead")
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(10)
	row := func(k, v string) string {
		return label.Render(k) + styles.Text.Render(v)
	}

	lines := []string{
		styles.Text.Bold(true).Render(l.Name),
		styles.MutedText.Render(l.ID),
		"",
		row("Company", l.Company),
		row("Email", l.Email),
		row("Source", l.Source),
		row("Score", strconv.Itoa(l.Score)),
		label.Render("Status") + styles.StatusStyle(l.Status).Render(string(l.Status)),
	}

	if opps := m.opportunitiesFor(l.ID); len(opps) > 0 {
		lines = append(lines, "", styles.AccentText.Bold(true).Render("Opportunities"))
		for _, o := range opps {
			lines = append(lines, fmt.Sprintf("%s  %s  %s", o.ID, o.Stage, formatAmount(o.Amount)))
		}
	}

	lines = append(lines, "")
	if m.snapshot.PendingSaves > 0 {
		lines = append(lines, styles.WarningText.Render(m.spinner.View()+" saving..."))
	}
	hints := "enter edit"
	if !l.IsConverted() {
		hints += " · c convert"
	}
	lines = append(lines, styles.FaintText.Render(hints))
	return strings.Join(lines, "\n")
}

func (m Model) opportunitiesFor(leadID string) []lead.Opportunity {
	var out []lead.Opportunity
	for _, o := range m.snapshot.Opportunities {
		if o.LeadID == leadID {
			out = append(out, o)
		}
	}
	return out
}

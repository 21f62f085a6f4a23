package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTable aligns rows under headers with a rule below the header line.
// Widths are measured with lipgloss so wide runes line up.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	const colGap = 2
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	rule := make([]string, cols)
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	writeRow(rule)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

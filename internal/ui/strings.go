package ui

import (
	"strconv"
	"strings"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// padLeft right-aligns s within width.
func padLeft(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(r)) + s
}

// formatAmount renders an optional opportunity amount with thousands
// separators. Nil renders as a dash.
func formatAmount(amount *float64) string {
	if amount == nil {
		return "—"
	}
	v := *amount
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// filterLabel renders a filter value for display.
func filterLabel(filter string) string {
	if filter == "" || strings.EqualFold(filter, "all") {
		return "All"
	}
	return filter
}

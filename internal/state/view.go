package state

import (
	"cmp"
	"slices"
	"strings"

	"github.com/five82/leadconsole/internal/lead"
	"github.com/five82/leadconsole/internal/prefs"
)

// Visible filters leads by search term and status, then stable-sorts them by
// score. The input slice is never modified.
func Visible(leads []lead.Lead, v prefs.View) []lead.Lead {
	out := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if matchesSearch(l, v.Search) && matchesStatus(l, v.FilterStatus) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b lead.Lead) int {
		if v.SortDescending {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Score, b.Score)
	})
	return out
}

func matchesSearch(l lead.Lead, term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	q := strings.ToLower(term)
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Company), q)
}

func matchesStatus(l lead.Lead, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, lead.FilterAll) {
		return true
	}
	return l.Status.Equal(lead.Status(filter))
}

package ui

import "testing"

func TestFormatAmount(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "—"},
		{v(0), "0.00"},
		{v(999.5), "999.50"},
		{v(2500), "2,500.00"},
		{v(1234567.891), "1,234,567.89"},
		{v(-1000), "-1,000.00"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"Northwind Traders", 10, "Northwi..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestPadding(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padLeft("ab", 4); got != "  ab" {
		t.Errorf("padLeft = %q", got)
	}
	if got := padLeft("abcdef", 4); got != "abcdef" {
		t.Errorf("padLeft overflow = %q", got)
	}
}

func TestFilterLabel(t *testing.T) {
	if got := filterLabel("all"); got != "All" {
		t.Errorf("filterLabel(all) = %q", got)
	}
	if got := filterLabel(""); got != "All" {
		t.Errorf("filterLabel(\"\") = %q", got)
	}
	if got := filterLabel("Qualified"); got != "Qualified" {
		t.Errorf("filterLabel(Qualified) = %q", got)
	}
}

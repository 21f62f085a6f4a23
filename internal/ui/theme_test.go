package ui

import (
	"testing"

	"github.com/five82/leadconsole/internal/lead"
)

func TestThemeLookups(t *testing.T) {
	th := GetTheme("Dracula")

	if got := th.StatusColor(lead.Status("qualified")); got != th.StatusColors["qualified"] {
		t.Fatalf("StatusColor = %q, want %q", got, th.StatusColors["qualified"])
	}
	if got := th.StatusColor(lead.StatusConverted); got != th.StatusColors["converted"] {
		t.Fatalf("StatusColor(Converted) = %q, want %q", got, th.StatusColors["converted"])
	}
	if got := th.StatusColor(lead.Status("Archived")); got != th.Text {
		t.Fatalf("StatusColor unknown = %q, want %q", got, th.Text)
	}
}

func TestThemesCoverEveryStatus(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, st := range lead.Statuses() {
			if th.StatusColor(st) == th.Text {
				t.Fatalf("theme %s has no color for %s", name, st)
			}
		}
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames() returned %d names, want 2", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", got)
	}
}

func TestHuhTheme(t *testing.T) {
	if GetTheme("Slate").HuhTheme() == nil {
		t.Fatal("HuhTheme returned nil")
	}
}

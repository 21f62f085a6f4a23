package ui

import (
	"testing"

	"github.com/five82/leadconsole/internal/lead"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{" 85 ", 85, false},
		{"100", 100, false},
		{"101", 0, true},
		{"-1", 0, true},
		{"4.5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseScore(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseScore(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseScore(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	got, err := parseAmount("  ")
	if err != nil || got != nil {
		t.Fatalf("blank amount = %v, %v; want nil, nil", got, err)
	}

	got, err = parseAmount("25,000.50")
	if err != nil {
		t.Fatalf("parseAmount: %v", err)
	}
	if got == nil || *got != 25000.5 {
		t.Fatalf("parseAmount = %v, want 25000.5", got)
	}

	if _, err := parseAmount("-5"); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := parseAmount("lots"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"", "ann@acme.io"} {
		if err := validateEmail(ok); err != nil {
			t.Errorf("validateEmail(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"ann", "@acme.io", "ann@"} {
		if err := validateEmail(bad); err == nil {
			t.Errorf("validateEmail(%q) accepted", bad)
		}
	}
}

func TestEditFormPatch_OnlyChangedFields(t *testing.T) {
	original := lead.Lead{
		ID: "l1", Name: "Ann", Company: "Acme", Email: "ann@acme.io",
		Source: "Web", Score: 40, Status: lead.StatusNew,
	}

	f := newEditForm(original)
	p, err := f.patch(original)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !p.IsEmpty() {
		t.Fatalf("untouched form produced %+v", p)
	}

	f.name = " Ann Souza "
	f.score = "55"
	f.status = string(lead.StatusQualified)
	p, err = f.patch(original)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if p.Name == nil || *p.Name != "Ann Souza" {
		t.Errorf("Name = %v, want trimmed Ann Souza", p.Name)
	}
	if p.Score == nil || *p.Score != 55 {
		t.Errorf("Score = %v, want 55", p.Score)
	}
	if p.Status == nil || *p.Status != lead.StatusQualified {
		t.Errorf("Status = %v, want Qualified", p.Status)
	}
	if p.Company != nil || p.Email != nil || p.Source != nil {
		t.Errorf("unchanged fields set: %+v", p)
	}
}

func TestEditFormPatch_InvalidScore(t *testing.T) {
	original := lead.Lead{ID: "l1", Name: "Ann", Score: 40, Status: lead.StatusNew}
	f := newEditForm(original)
	f.score = "abc"
	if _, err := f.patch(original); err == nil {
		t.Fatal("expected error for invalid score")
	}
}

func TestEditForm_NormalizesStatusCase(t *testing.T) {
	original := lead.Lead{ID: "l1", Name: "Ann", Score: 40, Status: "qualified"}
	f := newEditForm(original)
	if f.status != string(lead.StatusQualified) {
		t.Fatalf("status = %q, want %q", f.status, lead.StatusQualified)
	}
	p, err := f.patch(original)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if p.Status != nil {
		t.Errorf("case-only status difference produced a patch: %v", *p.Status)
	}
}

func TestNextFilter(t *testing.T) {
	want := []string{"New", "Contacted", "Qualified", "Unqualified", "Converted", "all"}
	current := lead.FilterAll
	for _, w := range want {
		current = nextFilter(current)
		if current != w {
			t.Fatalf("nextFilter = %q, want %q", current, w)
		}
	}
	if got := nextFilter("bogus"); got != lead.FilterAll {
		t.Errorf("nextFilter(bogus) = %q, want all", got)
	}
	if got := nextFilter("qualified"); got != "Unqualified" {
		t.Errorf("nextFilter(qualified) = %q, want Unqualified", got)
	}
}

// Package lead defines the lead and opportunity records shared by the store,
// the dataset loader and the console.
package lead

import "strings"

// Status is the qualification state of a lead.
type Status string

const (
	StatusNew         Status = "New"
	StatusContacted   Status = "Contacted"
	StatusQualified   Status = "Qualified"
	StatusUnqualified Status = "Unqualified"
	// StatusConverted marks a lead that produced an opportunity. It is never
	// part of the seed data.
	StatusConverted Status = "Converted"
)

// FilterAll disables status filtering in the derived view.
const FilterAll = "all"

var statusOrder = []Status{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusUnqualified,
	StatusConverted,
}

// Statuses returns every known status in display order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ParseStatus matches value case-insensitively against the known statuses.
func ParseStatus(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	for _, s := range statusOrder {
		if strings.EqualFold(trimmed, string(s)) {
			return s, true
		}
	}
	return "", false
}

// Equal reports whether two statuses match ignoring case and padding.
func (s Status) Equal(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), strings.TrimSpace(string(other)))
}

// Lead is a prospective customer record.
type Lead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Source  string `json:"source"`
	Score   int    `json:"score"`
	Status  Status `json:"status"`
}

// IsConverted reports whether the lead has already produced an opportunity.
func (l Lead) IsConverted() bool {
	return l.Status.Equal(StatusConverted)
}

// Patch carries a partial lead update. Nil fields are left untouched.
type Patch struct {
	Name    *string
	Company *string
	Email   *string
	Source  *string
	Score   *int
	Status  *Status
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Company == nil && p.Email == nil &&
		p.Source == nil && p.Score == nil && p.Status == nil
}

// Apply returns a copy of l with the patch merged in. The id never changes.
func (p Patch) Apply(l Lead) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Score != nil {
		l.Score = *p.Score
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	return l
}

// Stage is the pipeline position of an opportunity.
type Stage string

const (
	StageProspecting   Stage = "Prospecting"
	StageQualification Stage = "Qualification"
	StageClosedWon     Stage = "Closed Won"
	StageClosedLost    Stage = "Closed Lost"
)

// Opportunity is a sales pipeline entry created from a converted lead. It is
// a snapshot of the lead at conversion time, not a live reference.
type Opportunity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AccountName string   `json:"accountName"`
	Stage       Stage    `json:"stage"`
	Amount      *float64 `json:"amount"`
	LeadID      string   `json:"leadId"`
}

// Clone returns a copy that does not share the amount pointer.
func (o Opportunity) Clone() Opportunity {
	if o.Amount != nil {
		v := *o.Amount
		o.Amount = &v
	}
	return o
}

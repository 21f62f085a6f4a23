package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/five82/leadconsole/internal/lead"
)

// editForm holds the edit form's bound values. The form writes through these
// pointers, so it must outlive Model copies.
type editForm struct {
	name    string
	company string
	email   string
	source  string
	score   string
	status  string
}

func newEditForm(l lead.Lead) *editForm {
	status := string(l.Status)
	if st, ok := lead.ParseStatus(status); ok {
		status = string(st)
	}
	return &editForm{
		name:    l.Name,
		company: l.Company,
		email:   l.Email,
		source:  l.Source,
		score:   strconv.Itoa(l.Score),
		status:  status,
	}
}

func (f *editForm) build(theme Theme) *huh.Form {
	options := make([]huh.Option[string], 0, len(lead.Statuses())+1)
	known := false
	for _, s := range lead.Statuses() {
		options = append(options, huh.NewOption(string(s), string(s)))
		if string(s) == f.status {
			known = true
		}
	}
	if !known && f.status != "" {
		options = append(options, huh.NewOption(f.status, f.status))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(validateRequired("name")),
			huh.NewInput().
				Title("Company").
				Value(&f.company),
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Source").
				Value(&f.source),
			huh.NewInput().
				Title("Score (0-100)").
				Value(&f.score).
				Validate(validateScore),
			huh.NewSelect[string]().
				Title("Status").
				Options(options...).
				Value(&f.status),
		),
	).WithTheme(theme.HuhTheme()).WithShowHelp(false)
}

// patch returns only the fields that differ from original.
func (f *editForm) patch(original lead.Lead) (lead.Patch, error) {
	var p lead.Patch
	if v := strings.TrimSpace(f.name); v != original.Name {
		p.Name = &v
	}
	if v := strings.TrimSpace(f.company); v != original.Company {
		p.Company = &v
	}
	if v := strings.TrimSpace(f.email); v != original.Email {
		p.Email = &v
	}
	if v := strings.TrimSpace(f.source); v != original.Source {
		p.Source = &v
	}
	score, err := parseScore(f.score)
	if err != nil {
		return lead.Patch{}, err
	}
	if score != original.Score {
		p.Score = &score
	}
	if st := lead.Status(f.status); f.status != "" && !st.Equal(original.Status) {
		p.Status = &st
	}
	return p, nil
}

// convertForm holds the optional amount typed when converting a lead.
type convertForm struct {
	amount string
}

func (f *convertForm) build(theme Theme, l lead.Lead) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Convert "+l.Name).
				Description("Creates a Prospecting opportunity for "+l.Company+"."),
			huh.NewInput().
				Title("Amount (blank for none)").
				Placeholder("25000").
				Value(&f.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
		),
	).WithTheme(theme.HuhTheme()).WithShowHelp(false)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return errors.New("email must look like name@domain")
	}
	return nil
}

func validateScore(s string) error {
	_, err := parseScore(s)
	return err
}

func parseScore(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("score must be a whole number")
	}
	if n < 0 || n > 100 {
		return 0, errors.New("score must be between 0 and 100")
	}
	return n, nil
}

// parseAmount reads an optional non-negative amount. Blank means none.
func parseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("amount must be a number")
	}
	if v < 0 {
		return nil, errors.New("amount must not be negative")
	}
	return &v, nil
}

// startForm shows form in the detail pane. done runs once the form completes.
func (m Model) startForm(title string, form *huh.Form, done func(*Model) tea.Cmd) (tea.Model, tea.Cmd) {
	m.form = form.WithWidth(m.formWidth())
	m.formTitle = title
	m.formDone = done
	m.focusedPane = 1
	return m, m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.formTitle = ""
	m.formDone = nil
	m.focusedPane = 0
}

// updateForm forwards msg to the active form. Esc cancels.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.closeForm()
		m.setFlash("Cancelled", false)
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		done := m.formDone
		m.closeForm()
		if done != nil {
			doneCmd := done(&m)
			return m, tea.Batch(cmd, doneCmd)
		}
		return m, cmd
	case huh.StateAborted:
		m.closeForm()
		m.setFlash("Cancelled", false)
		return m, cmd
	}
	return m, cmd
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	l, ok := m.selectedLead()
	if !ok || m.store == nil {
		return m, nil
	}
	f := newEditForm(l)
	return m.startForm("Edit "+l.Name, f.build(m.theme), func(m *Model) tea.Cmd {
		p, err := f.patch(l)
		if err != nil {
			m.setFlash(err.Error(), true)
			return nil
		}
		if p.IsEmpty() {
			m.setFlash("No changes", false)
			return nil
		}
		id := l.ID
		return func() tea.Msg { return submitEditMsg{leadID: id, patch: p} }
	})
}

func (m Model) startConvert() (tea.Model, tea.Cmd) {
	l, ok := m.selectedLead()
	if !ok || m.store == nil {
		return m, nil
	}
	if l.IsConverted() {
		m.setFlash(l.Name+" is already converted", true)
		return m, nil
	}
	f := &convertForm{}
	return m.startForm("Convert", f.build(m.theme, l), func(m *Model) tea.Cmd {
		amount, err := parseAmount(f.amount)
		if err != nil {
			m.setFlash(err.Error(), true)
			return nil
		}
		id := l.ID
		return func() tea.Msg { return submitConvertMsg{leadID: id, amount: amount} }
	})
}

func (m Model) convert(leadID string, amount *float64) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}
	opp := m.store.ConvertLeadToOpportunity(leadID, amount)
	m.refreshFromStore()
	if opp == nil {
		m.setFlash("Lead not found", true)
		return m, nil
	}
	m.setFlash(fmt.Sprintf("Created %s for %s", opp.ID, opp.AccountName), false)
	return m, nil
}

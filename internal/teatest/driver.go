// Package teatest drives bubbletea models synchronously in tests.
//
// The Driver stands in for tea.Program: it calls Update directly and runs the
// returned Cmds one by one, feeding their messages back in. Cmds that do not
// return within the timeout (tickers, spinners, cursor blinks) are dropped, so
// tests only see the messages produced by fast Cmds such as store calls made
// with zero-delay simulators.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one Send may run.
const MaxDrainDepth = 100

// DefaultCmdTimeout is how long a Cmd may run before it is dropped.
const DefaultCmdTimeout = 20 * time.Millisecond

// Driver is a synchronous harness for a tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg has been produced.
	Quitting bool

	timeout time.Duration
	skip    []func(tea.Msg) bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.T.Helper()
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// WithCmdTimeout changes how long each Cmd may run.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.timeout = timeout
	}
}

// WithSkip drops messages matching fn instead of delivering them.
func WithSkip(fn func(tea.Msg) bool) Option {
	return func(d *Driver) {
		d.skip = append(d.skip, fn)
	}
}

// New returns a Driver for model. Call DrainInit to run the model's Init.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, timeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs the model's Init command and everything it produces.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drainCmd(d.Model.Init(), 0)
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drainCmd(cmd, 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Press sends a special key such as tea.KeyEnter.
func (d *Driver) Press(key tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: key})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View returns the rendered model.
func (d *Driver) View() string {
	return d.Model.View()
}

// RequireView fails the test unless the rendered view contains every want.
func (d *Driver) RequireView(want ...string) {
	d.T.Helper()
	view := d.View()
	for _, w := range want {
		if !strings.Contains(view, w) {
			d.T.Fatalf("view missing %q:\n%s", w, view)
		}
	}
}

func (d *Driver) drainCmd(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest.Driver: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.exec(cmd)
	if msg == nil || isCursorBlink(msg) {
		return
	}
	for _, skip := range d.skip {
		if skip(msg) {
			return
		}
	}

	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range m {
			d.drainCmd(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		updated, _ := d.Model.Update(m)
		d.Model = updated
		return
	}

	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drainCmd(next, depth+1)
}

func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case msg := <-ch:
		return msg
	case <-timer.C:
		return nil
	}
}

// isCursorBlink matches the unexported blink messages of bubbles/cursor.
func isCursorBlink(msg tea.Msg) bool {
	t := fmt.Sprintf("%T", msg)
	return strings.Contains(t, "Blink") || strings.Contains(t, "blink")
}

package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type pingMsg struct{}
type pongMsg struct{}

type echoModel struct {
	keys  string
	pings int
	pongs int
}

func (m echoModel) Init() tea.Cmd {
	return func() tea.Msg { return pingMsg{} }
}

func (m echoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pingMsg:
		m.pings++
		return m, tea.Batch(
			func() tea.Msg { return pongMsg{} },
			tea.Tick(time.Hour, func(time.Time) tea.Msg { return pingMsg{} }),
		)
	case pongMsg:
		m.pongs++
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		m.keys += msg.String()
	}
	return m, nil
}

func (m echoModel) View() string { return "keys:" + m.keys }

func TestDriver_DrainsInitAndDropsSlowCmds(t *testing.T) {
	d := New(t, echoModel{})
	d.DrainInit()

	m := d.Model.(echoModel)
	assert.Equal(t, 1, m.pings)
	assert.Equal(t, 1, m.pongs)
}

func TestDriver_TypeAndQuit(t *testing.T) {
	d := New(t, echoModel{})
	d.Type("ab")
	d.RequireView("keys:ab")

	d.Press(tea.KeyEsc)
	assert.True(t, d.Quitting)

	d.PressKey('c')
	d.RequireView("keys:ab")
}

func TestDriver_WithSkip(t *testing.T) {
	d := New(t, echoModel{}, WithSkip(func(msg tea.Msg) bool {
		_, ok := msg.(pongMsg)
		return ok
	}))
	d.DrainInit()
	assert.Equal(t, 0, d.Model.(echoModel).pongs)
}

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leadconsole/internal/lead"
	"github.com/five82/leadconsole/internal/prefs"
	"github.com/five82/leadconsole/internal/state"
)

// View is the active top-level screen.
type View int

const (
	ViewLeads View = iota
	ViewOpportunities
	ViewActivity
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Store   *state.Store
	// Prefs stores the theme choice. The view preferences are persisted by
	// the Store itself.
	Prefs     prefs.Slot
	LogPath   string
	Refresh   time.Duration
	ThemeName string
}

type flash struct {
	text    string
	isError bool
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx     context.Context
	store   *state.Store
	slot    prefs.Slot
	logPath string
	refresh time.Duration
	keys    keyMap

	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = list, 1 = detail

	snapshot    state.Snapshot
	visible     []lead.Lead
	selectedRow int
	selectedID  string
	oppRow      int

	search       textinput.Model
	searching    bool
	searchBefore string

	detailViewport viewport.Model
	logViewport    viewport.Model
	logLines       []string
	logErr         error
	follow         bool

	spinner spinner.Model

	// Active form in the detail pane, nil when none.
	form      *huh.Form
	formTitle string
	formDone  func(*Model) tea.Cmd

	flash    flash
	showHelp bool
}

// New creates the console model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.LoadTheme(opts.Prefs)
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "name or company"
	search.CharLimit = 80
	if opts.Store != nil {
		search.SetValue(opts.Store.View().Search)
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		slot:        opts.Prefs,
		logPath:     opts.LogPath,
		refresh:     refresh,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewLeads,
		search:      search,
		follow:      true,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if opts.Store != nil {
		m.applySnapshot(opts.Store.Snapshot())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd(m.refresh)}
	if m.store != nil {
		cmds = append(cmds, loadCmd(m.ctx, m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutViewports()
		if m.form != nil {
			m.form = m.form.WithWidth(m.formWidth())
		}
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		// Snapshots pushed by commands can arrive after a newer local change.
		snap := state.Snapshot(msg)
		if snap.Version < m.snapshot.Version {
			return m, nil
		}
		m.applySnapshot(snap)
		return m, nil

	case loadDoneMsg:
		m.refreshFromStore()
		if m.snapshot.LastError != "" {
			m.setFlash("Load failed: "+m.snapshot.LastError+" (r to retry)", true)
		} else {
			m.setFlash(fmt.Sprintf("Loaded %d leads", len(m.snapshot.Leads)), false)
		}
		return m, nil

	case submitEditMsg:
		m.setFlash("Saving...", false)
		m.refreshFromStore()
		return m, saveCmd(m.ctx, m.store, msg.leadID, msg.patch)

	case saveDoneMsg:
		m.refreshFromStore()
		switch {
		case msg.result.NotFound:
			m.setFlash("Lead "+msg.leadID+" no longer exists, nothing saved", false)
		case msg.result.Success:
			m.setFlash("Saved "+m.leadName(msg.leadID), false)
		default:
			m.setFlash("Save failed: "+msg.result.Message, true)
		}
		return m, nil

	case submitConvertMsg:
		return m.convert(msg.leadID, msg.amount)

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewOpportunities:
		return m.renderOpportunities()
	case ViewActivity:
		return m.renderActivity()
	default:
		return m.renderLeads()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.slot != nil {
			if err := prefs.SaveTheme(m.slot, m.theme.Name); err != nil {
				m.setFlash("Theme not saved: "+err.Error(), true)
				return m, nil
			}
		}
		m.setFlash("Theme: "+m.theme.Name, false)
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.currentView = (m.currentView + 1) % 3
		if m.currentView == ViewActivity {
			return m, m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewLeads), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewLeads
		m.focusedPane = 0
		return m, nil

	case key.Matches(msg, m.keys.ViewOpportunities):
		m.currentView = ViewOpportunities
		return m, nil

	case key.Matches(msg, m.keys.ViewActivity):
		m.currentView = ViewActivity
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Reload):
		if m.store == nil || m.snapshot.Loading {
			return m, nil
		}
		m.setFlash("Reloading...", false)
		return m, loadCmd(m.ctx, m.store)
	}

	switch m.currentView {
	case ViewLeads:
		return m.handleLeadsKey(msg)
	case ViewOpportunities:
		return m.handleOpportunitiesKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewActivity && m.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot replaces the displayed state and keeps the selection on the
// same lead when it is still visible.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.visible = snap.VisibleLeads()

	if len(m.visible) == 0 {
		m.selectedRow = 0
		m.selectedID = ""
	} else {
		found := false
		if m.selectedID != "" {
			for i, l := range m.visible {
				if l.ID == m.selectedID {
					m.selectedRow = i
					found = true
					break
				}
			}
		}
		if !found {
			m.selectedRow = min(max(m.selectedRow, 0), len(m.visible)-1)
			m.selectedID = m.visible[m.selectedRow].ID
		}
	}
	if m.oppRow >= len(snap.Opportunities) {
		m.oppRow = max(len(snap.Opportunities)-1, 0)
	}
	m.updateDetailViewport()
}

func (m *Model) refreshFromStore() {
	if m.store == nil {
		return
	}
	m.applySnapshot(m.store.Snapshot())
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = flash{text: text, isError: isError}
}

func (m Model) leadName(id string) string {
	if l, ok := m.snapshot.Lead(id); ok {
		return l.Name
	}
	return id
}

func (m *Model) layoutViewports() {
	_, detailWidth := m.paneWidths()
	contentHeight := m.contentHeight()

	if m.detailViewport.Width == 0 {
		m.detailViewport = viewport.New(detailWidth-4, contentHeight-2)
	}
	m.detailViewport.Width = max(detailWidth-4, 1)
	m.detailViewport.Height = max(contentHeight-2, 1)

	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(m.width-4, contentHeight-2)
	}
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(contentHeight-2, 1)

	m.updateDetailViewport()
	m.updateLogViewport()
}

// contentHeight is the space below the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

func (m Model) paneWidths() (int, int) {
	listWidth := m.width * 45 / 100
	if m.width >= LayoutWideWidth {
		listWidth = m.width * 40 / 100
	}
	return listWidth, m.width - listWidth
}

func (m Model) formWidth() int {
	_, detailWidth := m.paneWidths()
	return max(detailWidth-6, 20)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type loadDoneMsg struct{}

type submitEditMsg struct {
	leadID string
	patch  lead.Patch
}

type saveDoneMsg struct {
	leadID string
	result state.UpdateResult
}

type submitConvertMsg struct {
	leadID string
	amount *float64
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadCmd(ctx context.Context, store *state.Store) tea.Cmd {
	return func() tea.Msg {
		store.Load(ctx)
		return loadDoneMsg{}
	}
}

func saveCmd(ctx context.Context, store *state.Store, id string, patch lead.Patch) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return saveDoneMsg{leadID: id, result: store.UpdateLeadOptimistic(ctx, id, patch)}
	}
}

// Run starts the console and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}

// renderTitledBox draws content inside a border with the title embedded in
// the top edge: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	lines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	rows := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}

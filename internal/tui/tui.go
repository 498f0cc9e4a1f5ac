// Package tui is the terminal renderer: a group picker, a canvas of the
// positioned scene, leaf type toggles and the detail panel of the selection.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/gridmap/internal/controller"
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(string(taxonomy.ColorOf(taxonomy.Group)))).
			MarginLeft(1)

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(1)
)

const panelWidth = 36

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Select, Clear         key.Binding
	Toggle                key.Binding
	Groups, Refresh       key.Binding
	Help, Quit            key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "row above")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "row below")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
	Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close detail")),
	Toggle:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "toggle type")),
	Groups:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "groups")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Select, k.Clear, k.Groups, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Clear, k.Toggle},
		{k.Groups, k.Refresh, k.Help, k.Quit},
	}
}

type groupItem struct{ node kgraph.Node }

func (g groupItem) Title() string       { return g.node.Title() }
func (g groupItem) Description() string { return g.node.Code }
func (g groupItem) FilterValue() string { return g.node.Code + " " + g.node.Label }

type groupsMsg struct {
	groups []kgraph.Node
	err    error
}

// stateMsg carries the controller state after an operation.
type stateMsg struct {
	st  controller.State
	err error
}

// OnGroup is called with the group and visible set whenever they change.
type OnGroup func(group string, visible taxonomy.Set)

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	lister  fetch.GroupLister
	locale  taxonomy.Locale
	initial string
	onGroup OnGroup

	picking bool
	groups  list.Model
	spinner spinner.Model
	help    help.Model

	st     controller.State
	order  []int
	cursor int // position in order
	width  int
	height int
	err    error
}

// New returns a model. initial, if not empty, is opened without showing the
// group picker.
func New(ctx context.Context, ctrl *controller.Controller, lister fetch.GroupLister, loc taxonomy.Locale, initial string, onGroup OnGroup) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = loc.Text("Select a group", "Choisir un bloc")
	l.SetShowStatusBar(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		lister:  lister,
		locale:  loc,
		initial: initial,
		onGroup: onGroup,
		picking: initial == "",
		groups:  l,
		spinner: sp,
		help:    help.New(),
		st:      ctrl.State(),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadGroups()}
	if m.initial != "" {
		cmds = append(cmds, m.run(func(ctx context.Context) error { return m.ctrl.SelectGroup(ctx, m.initial) }))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadGroups() tea.Cmd {
	return func() tea.Msg {
		groups, err := m.lister.Groups(m.ctx)
		return groupsMsg{groups: groups, err: err}
	}
}

// run performs a controller operation off the UI goroutine.
func (m Model) run(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(m.ctx)
		return stateMsg{st: m.ctrl.State(), err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.groups.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case groupsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.groups))
		for i, g := range msg.groups {
			items[i] = groupItem{g}
		}
		return m, m.groups.SetItems(items)

	case stateMsg:
		m.err = msg.err
		m.setState(msg.st)
		if m.onGroup != nil && msg.err == nil {
			m.onGroup(m.st.GroupID, m.st.Visible)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateCanvas(msg)
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.groups.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, keys.Select):
			item, ok := m.groups.SelectedItem().(groupItem)
			if !ok {
				return m, nil
			}
			m.picking = false
			return m, m.run(func(ctx context.Context) error { return m.ctrl.SelectGroup(ctx, item.node.ID) })
		case key.Matches(msg, keys.Clear):
			if m.st.GroupID != "" {
				m.picking = false
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.groups, cmd = m.groups.Update(msg)
	return m, cmd
}

func (m Model) updateCanvas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Groups):
		m.picking = true
	case key.Matches(msg, keys.Refresh):
		return m, m.run(m.ctrl.Refresh)
	case key.Matches(msg, keys.Toggle):
		t := taxonomy.Leaves[int(msg.Runes[0]-'1')]
		return m, m.run(func(ctx context.Context) error { return m.ctrl.ToggleLeafType(ctx, t) })
	case key.Matches(msg, keys.Clear):
		m.ctrl.ClearSelection()
		m.setState(m.ctrl.State())
	case key.Matches(msg, keys.Select):
		if id, ok := m.cursorID(); ok {
			m.err = m.ctrl.SelectNode(id)
			m.setState(m.ctrl.State())
		}
	case key.Matches(msg, keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Right):
		if m.cursor < len(m.order)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		if len(m.order) > 0 {
			dir := 1
			if key.Matches(msg, keys.Up) {
				dir = -1
			}
			m.moveTo(nearestInRow(m.st.Scene, m.order[m.cursor], dir))
		}
	}
	return m, nil
}

// setState installs st and keeps the cursor on the same node id when it is
// still on screen.
func (m *Model) setState(st controller.State) {
	prev, hadPrev := m.cursorID()
	m.st = st
	m.order = nil
	m.cursor = 0
	if st.Scene == nil {
		return
	}
	m.order = readingOrder(st.Scene)
	if hadPrev {
		for pos, i := range m.order {
			if st.Scene.Nodes[i].ID == prev {
				m.cursor = pos
				break
			}
		}
	}
}

func (m Model) cursorID() (string, bool) {
	if m.st.Scene == nil || len(m.order) == 0 {
		return "", false
	}
	return m.st.Scene.Nodes[m.order[m.cursor]].ID, true
}

func (m *Model) moveTo(sceneIndex int) {
	for pos, i := range m.order {
		if i == sceneIndex {
			m.cursor = pos
			return
		}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.picking {
		return m.groups.View()
	}

	var s strings.Builder
	s.WriteString(m.header())
	s.WriteString("\n")

	body := m.body()
	if m.st.Detail != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.panel())
	}
	s.WriteString(body)
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render(m.help.View(keys)))
	return s.String()
}

func (m Model) header() string {
	title := titleStyle.Render("gridmap")
	if m.st.GroupID != "" {
		title += " " + m.st.GroupID
	}
	var toggles []string
	for i, t := range taxonomy.Leaves {
		label := fmt.Sprintf("%d %s %s", i+1, taxonomy.IconOf(t).Glyph, taxonomy.LabelOf(t, m.locale))
		if m.st.Visible.Has(t) {
			toggles = append(toggles, lipgloss.NewStyle().Foreground(lipgloss.Color(string(taxonomy.ColorOf(t)))).Render(label))
		} else {
			toggles = append(toggles, offStyle.Render(label))
		}
	}
	line := title + "  " + strings.Join(toggles, "  ")
	if sc := m.st.Scene; sc != nil {
		line += offStyle.Render(fmt.Sprintf("  %d/%d nodes  %d/%d edges",
			sc.Stats.VisibleNodes, sc.Stats.TotalNodes, sc.Stats.VisibleEdges, sc.Stats.TotalEdges))
	}
	return line
}

func (m Model) body() string {
	w := m.width - 2
	if m.st.Detail != nil {
		w -= panelWidth + 2
	}
	h := m.height - 5
	if w < 10 || h < 3 {
		return ""
	}

	switch m.st.Status {
	case controller.NoGroup:
		return canvasStyle.Width(w).Height(h).Render(m.locale.Text("No group selected. Press g.", "Aucun bloc choisi. Touche g."))
	case controller.Loading:
		if m.st.Scene == nil {
			return canvasStyle.Width(w).Height(h).Render(m.spinner.View() + " " + m.locale.Text("Loading…", "Chargement…"))
		}
	case controller.Empty:
		return canvasStyle.Width(w).Height(h).Render(m.locale.Text("This group has no data.", "Ce bloc est vide."))
	case controller.Failed:
		return canvasStyle.Width(w).Height(h).Render(errorStyle.Render(m.locale.Text("Fetch failed: ", "Échec du chargement : ") + fmt.Sprint(m.st.Err)))
	}

	cursor, selected := -1, -1
	if len(m.order) > 0 {
		cursor = m.order[m.cursor]
	}
	if m.st.Selected != nil {
		for i, n := range m.st.Scene.Nodes {
			if n.ID == m.st.Selected.ID {
				selected = i
			}
		}
	}
	return canvasStyle.Render(project(m.st.Scene, w, h).render(cursor, selected))
}

func (m Model) panel() string {
	p := m.st.Detail
	style := panelStyle.Width(panelWidth).BorderForeground(lipgloss.Color(string(p.Color)))

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(string(p.Color))).Render(p.Icon.Glyph + " " + p.Title))
	for _, r := range p.Rows {
		b.WriteString("\n" + labelStyle.Render(r.Label) + "\n" + r.Value)
	}
	return style.Render(b.String())
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Package tui is the interactive terminal dashboard: the three levers in a
// side list, re-evaluated on every toggle.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/model"
	"github.com/raysh454/policysim/internal/report"
)

// KeyMap holds the dashboard key bindings.
type KeyMap struct {
	Audit   key.Binding
	AST     key.Binding
	Therapy key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Audit:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "audit score")),
		AST:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "rapid AST")),
		Therapy: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "targeted therapy")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "toggle")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload data")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Audit, k.AST, k.Therapy, k.Toggle, k.Reload, k.Quit}
}

var leverLabels = [3]string{"Increase Audit Score", "Use Rapid AST", "Apply Targeted Therapy"}

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#dce0e5")).
			Padding(0, 2, 0, 1).
			MarginRight(1)
	headerStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")).Italic(true)
	leverSelected = "▸ "
)

type reloadedMsg struct {
	records int
	err     error
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx       context.Context
	dashboard *app.Dashboard
	renderer  *report.Renderer
	keys      KeyMap

	levers model.LeverState
	cursor int

	view   *app.View
	body   string
	err    error
	status string
}

// New evaluates the initial lever state and returns the model. Reloads
// triggered from the model run under ctx.
func New(ctx context.Context, dashboard *app.Dashboard, renderer *report.Renderer, levers model.LeverState) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:       ctx,
		dashboard: dashboard,
		renderer:  renderer,
		keys:      DefaultKeyMap(),
		levers:    levers,
	}
	m.evaluate()
	return m
}

// Levers returns the current lever state.
func (m Model) Levers() model.LeverState { return m.levers }

// CurrentView returns the last evaluated dashboard view, nil on error.
func (m Model) CurrentView() *app.View { return m.view }

// Err returns the last evaluation error.
func (m Model) Err() error { return m.err }

func (m *Model) evaluate() {
	v, err := m.dashboard.Evaluate(m.levers)
	if err != nil {
		m.view, m.body, m.err = nil, "", err
		return
	}
	m.view, m.err = v, nil
	body, err := m.renderer.Render(v)
	if err != nil {
		m.err = err
		return
	}
	m.body = body
}

func (m *Model) toggle(i int) {
	switch i {
	case 0:
		m.levers.AuditEffect = !m.levers.AuditEffect
	case 1:
		m.levers.ASTEffect = !m.levers.ASTEffect
	case 2:
		m.levers.TherapyAdjustment = !m.levers.TherapyAdjustment
	}
	m.evaluate()
}

func (m Model) reload() tea.Cmd {
	ctx, store := m.ctx, m.dashboard.Store()
	return func() tea.Msg {
		ds, err := store.Reload(ctx)
		if err != nil {
			return reloadedMsg{err: err}
		}
		return reloadedMsg{records: ds.Len()}
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Audit):
			m.toggle(0)
		case key.Matches(msg, m.keys.AST):
			m.toggle(1)
		case key.Matches(msg, m.keys.Therapy):
			m.toggle(2)
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor + len(leverLabels) - 1) % len(leverLabels)
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + 1) % len(leverLabels)
		case key.Matches(msg, m.keys.Toggle):
			m.toggle(m.cursor)
		case key.Matches(msg, m.keys.Reload):
			m.status = "reloading…"
			return m, m.reload()
		}

	case reloadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("reloaded %d records", msg.records)
		}
		m.evaluate()
	}
	return m, nil
}

func (m Model) leverState(i int) bool {
	switch i {
	case 0:
		return m.levers.AuditEffect
	case 1:
		return m.levers.ASTEffect
	default:
		return m.levers.TherapyAdjustment
	}
}

func (m Model) View() string {
	var side strings.Builder
	side.WriteString(headerStyle.Render("Simulated Intervention Levers"))
	side.WriteString("\n")
	for i, label := range leverLabels {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render(leverSelected)
		}
		box := "[ ]"
		if m.leverState(i) {
			box = "[x]"
		}
		fmt.Fprintf(&side, "%s%s %s\n", prefix, box, label)
	}
	side.WriteString("\n")
	for _, b := range m.keys.help() {
		h := b.Help()
		side.WriteString(helpStyle.Render(h.Key+"  "+h.Desc) + "\n")
	}
	if m.status != "" {
		side.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}

	main := m.body
	if m.err != nil {
		main = errorStyle.Render(m.err.Error())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(side.String()), main)
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, dashboard *app.Dashboard, renderer *report.Renderer, levers model.LeverState) error {
	p := tea.NewProgram(New(ctx, dashboard, renderer, levers), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Package usage provides the usage tab: command and guild activity.
package usage

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archie-bot-stack/Archie/internal/app"
)

// Scope selects the window the tab summarizes.
type Scope int

const (
	ScopeToday Scope = iota
	ScopeYear
)

// String returns the scope's label.
func (s Scope) String() string {
	if s == ScopeYear {
		return "This year"
	}
	return "Today"
}

type keyMap struct {
	ToggleScope key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleScope: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today/year"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model is the usage tab.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	scope    Scope

	width  int
	height int
}

// New returns the usage tab over state.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init implements app.Tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles the tab's keys. Snapshots are read from the shared state
// at render time.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, m.keys.ToggleScope) {
		m.scope = (m.scope + 1) % 2
		m.viewport.GotoTop()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

// Scope returns the selected window.
func (m *Model) Scope() Scope {
	return m.scope
}

// SetSize implements app.Tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp implements app.Tab.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleScope, m.keys.Up, m.keys.Down}
}

// Package population provides the population tab: player counts and peaks.
package population

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archie-bot-stack/Archie/internal/app"
)

// Range selects the history shown under the summary.
type Range int

const (
	RangeDay Range = iota
	RangeDaily
)

// String returns the range's label.
func (r Range) String() string {
	if r == RangeDaily {
		return "Daily"
	}
	return "Last 24h"
}

type keyMap struct {
	ToggleRange key.Binding
}

// Model is the population tab.
type Model struct {
	state *app.State
	loc   *time.Location
	keys  keyMap
	rng   Range

	width  int
	height int
}

// New returns the population tab. Times are shown in loc.
func New(state *app.State, loc *time.Location) *Model {
	if loc == nil {
		loc = time.UTC
	}
	return &Model{
		state: state,
		loc:   loc,
		keys: keyMap{
			ToggleRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "24h/daily")),
		},
	}
}

// Init implements app.Tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements app.Tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.ToggleRange) {
		m.rng = (m.rng + 1) % 2
	}
	return m, nil
}

// Range returns the selected history range.
func (m *Model) Range() Range {
	return m.rng
}

// SetSize implements app.Tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp implements app.Tab.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange}
}

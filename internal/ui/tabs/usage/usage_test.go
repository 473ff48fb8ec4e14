package usage

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archie-bot-stack/Archie/internal/app"
	"github.com/Archie-bot-stack/Archie/internal/models"
)

func loadedState(t *testing.T) *app.State {
	t.Helper()
	yearly := models.NewUsageCounters(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	yearly.Record("lifetop", "G1", "Arch Lovers")
	yearly.Record("lifetop", "G1", "Arch Lovers")
	yearly.Record("profile", "G2", "Bedwars Hub")

	state := app.NewState()
	state.SetSnapshot(&app.Snapshot{
		LoadedAt: time.Now(),
		Today:    map[string]uint64{"stats": 4, "help": 1},
		Year:     2026,
		Yearly:   yearly,
	}, nil)
	return state
}

func TestView_Loading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 40)
	if !strings.Contains(m.View(), "Loading usage data") {
		t.Error("initial view should show loading")
	}
}

func TestView_Empty(t *testing.T) {
	state := app.NewState()
	state.SetSnapshot(nil, nil)
	m := New(state)
	m.SetSize(100, 40)
	if !strings.Contains(m.View(), "No data yet") {
		t.Error("empty view missing")
	}
}

func TestView_Today(t *testing.T) {
	m := New(loadedState(t))
	m.SetSize(120, 80)
	view := m.View()
	for _, want := range []string{"Today", "/stats", "/help", "Commands per hour"} {
		if !strings.Contains(view, want) {
			t.Errorf("today view missing %q", want)
		}
	}
	if strings.Contains(view, "Top Guilds") {
		t.Error("today view shows yearly guilds")
	}
}

func TestView_ToggleYear(t *testing.T) {
	m := New(loadedState(t))
	m.SetSize(120, 80)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.Scope() != ScopeYear {
		t.Fatalf("scope = %v, want year", m.Scope())
	}
	view := m.View()
	for _, want := range []string{"This year", "/lifetop", "Top Guilds", "Arch Lovers", "Bedwars Hub"} {
		if !strings.Contains(view, want) {
			t.Errorf("year view missing %q", want)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.Scope() != ScopeToday {
		t.Error("toggle did not wrap back to today")
	}
}

func TestShortHelp(t *testing.T) {
	if got := len(New(app.NewState()).ShortHelp()); got != 3 {
		t.Errorf("ShortHelp = %d bindings", got)
	}
}

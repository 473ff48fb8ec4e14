package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/ui/styles"
)

// TabID identifies a dashboard tab.
type TabID int

const (
	TabUsage TabID = iota
	TabPopulation
)

// String returns the tab's title.
func (t TabID) String() string {
	switch t {
	case TabUsage:
		return "Usage"
	case TabPopulation:
		return "Population"
	default:
		return "Unknown"
	}
}

// Tab is one page of the dashboard.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
}

// KeyMap defines the global keybindings.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "usage")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "population")),
		NextTab: key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// Styles are the chrome styles of the root model.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content   lipgloss.Style
	StatusBar lipgloss.Style
	Toast     lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default chrome styles.
func DefaultStyles() Styles {
	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(styles.Subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2),

		NotificationSuccess: lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1),
		NotificationError:   lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1),
		NotificationWarning: lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1),
		NotificationInfo:    lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1),

		Content:   lipgloss.NewStyle().Padding(1, 2),
		StatusBar: lipgloss.NewStyle().Foreground(styles.TextMuted).Padding(0, 1),
		Toast:     styles.ToastStyle,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(styles.Primary),
		Subtle:    lipgloss.NewStyle().Foreground(styles.Subtle),
		Highlight: lipgloss.NewStyle().Foreground(styles.Primary),
	}
}

// Options wires the model to its data.
type Options struct {
	Source Loader
	// Changes signals rewritten documents. Nil disables live reload.
	Changes <-chan struct{}
	// Notify raises the desktop notification for a new peak.
	Notify          Notifier
	RefreshInterval time.Duration
}

// Model is the root dashboard model.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state   *State
	opts    Options
	keymap  KeyMap
	styles  Styles
	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool
}

// NewModel returns a dashboard reading from opts.Source.
func NewModel(opts Options) *Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Notify == nil {
		opts.Notify = DesktopNotifier
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabUsage,
		tabs:      make([]Tab, 2),
		state:     NewState(),
		opts:      opts,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs installs the tab pages in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// State returns the state shared with the tabs.
func (m *Model) State() *State {
	return m.state
}

// Init starts the tickers, the first load and the file watch.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		tickCmd(DefaultTickInterval),
		refreshTickCmd(m.opts.RefreshInterval),
	}
	if m.opts.Source != nil {
		cmds = append(cmds, loadSnapshotCmd(m.opts.Source))
	}
	if m.opts.Changes != nil {
		cmds = append(cmds, waitForChangeCmd(m.opts.Changes))
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and forwards them to the active tab.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height, m.ready = msg.Width, msg.Height, true
		m.updateTabSizes()
	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, tickCmd(DefaultTickInterval))
	case RefreshTickMsg:
		if !m.state.IsLoading() {
			cmds = append(cmds, m.reload())
		}
		cmds = append(cmds, refreshTickCmd(m.opts.RefreshInterval))
	case RefreshMsg:
		m.state.SetLoadingNotification("Refreshing...")
		cmds = append(cmds, m.reload())
	case FilesChangedMsg:
		cmds = append(cmds, m.reload())
		if m.opts.Changes != nil {
			cmds = append(cmds, waitForChangeCmd(m.opts.Changes))
		}
	case SnapshotLoadedMsg:
		cmds = append(cmds, m.handleSnapshot(msg)...)
	case PeakNotifiedMsg:
		if msg.Err != nil {
			logger.Debug("Desktop notification failed", "error", msg.Err)
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	}
	return cmds
}

func (m *Model) reload() tea.Cmd {
	if m.opts.Source == nil {
		return nil
	}
	m.state.SetLoading(true)
	return loadSnapshotCmd(m.opts.Source)
}

func (m *Model) handleSnapshot(msg SnapshotLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	raised := m.state.SetSnapshot(msg.Snapshot, msg.Err)
	m.state.ClearLoadingNotification()

	switch {
	case msg.Err != nil && msg.Snapshot == nil:
		logger.Error("Dashboard load failed", "error", msg.Err)
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Load failed: %v", msg.Err)))
	case msg.Err != nil:
		logger.Warn("Dashboard load incomplete", "error", msg.Err)
		cmds = append(cmds, notifyWarningCmd(fmt.Sprintf("Partial data: %v", msg.Err)))
	}
	if raised {
		peak := msg.Snapshot.Population.PeakAllTime
		cmds = append(cmds,
			notifySuccessCmd(fmt.Sprintf("New all-time peak: %s players", humanize.Comma(int64(peak)))),
			notifyPeakCmd(m.opts.Notify, peak),
		)
	}
	return cmds
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false
	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabUsage)
	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabPopulation)
	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}
	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}
	case key.Matches(msg, m.keymap.Refresh):
		return func() tea.Msg { return RefreshMsg{} }
	}
	return nil
}

func (m *Model) switchTab(t TabID) {
	if int(t) < 0 || int(t) >= len(m.tabs) {
		return
	}
	m.activeTab = t
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	// navbar and status bar
	contentHeight := max(m.height-4, 0)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}
	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	view := b.String()
	if m.showHelp {
		view = m.overlayCentered(view, m.renderHelp())
	}
	if toasts := m.renderNotifications(); len(toasts) > 0 {
		view = m.overlayToasts(view, toasts)
	}
	return view
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, len(m.tabs))
	for i := range m.tabs {
		name := TabID(i).String()
		if TabID(i) == m.activeTab {
			tabs[i] = m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name))
		} else {
			tabs[i] = m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return m.styles.TabBar.Width(m.width).Render(bar)
}

func (m *Model) renderStatusBar() string {
	status := "waiting for data"
	if snap := m.state.Snapshot(); snap != nil {
		status = "updated " + humanize.Time(snap.LoadedAt)
	}
	if m.state.LoadError() != nil {
		status += " (partial)"
	}
	return m.styles.StatusBar.Render(status + "  •  ? help  •  q quit")
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.Notifications()
	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string
		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationLoading:
			style, prefix = m.styles.NotificationInfo, m.spinner.View()
		default:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		}
		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

func (m *Model) overlayToasts(view string, toasts []string) string {
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(stack, "\n")
	lines := strings.Split(view, "\n")
	startX := max(m.width-lipgloss.Width(stack)-2, 0)

	for i, tl := range toastLines {
		idx := 2 + i
		if idx >= len(lines) {
			break
		}
		line := lines[idx]
		if w := lipgloss.Width(line); w < startX {
			lines[idx] = line + strings.Repeat(" ", startX-w) + tl
		} else {
			lines[idx] = ansi.Truncate(line, startX, "") + tl
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) overlayCentered(view, overlay string) string {
	lines := strings.Split(view, "\n")
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, ol := range overlayLines {
		row := y + i
		if row >= len(lines) {
			break
		}
		left := ansi.Truncate(lines[row], x, "")
		right := ansi.TruncateLeft(lines[row], x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		lines[row] = left + ol + right
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-2        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Reload data",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if bindings := m.tabs[m.activeTab].ShortHelp(); len(bindings) > 0 {
			lines = append(lines, "", m.styles.Highlight.Render(m.activeTab.String()+" Tab"))
			for _, kb := range bindings {
				lines = append(lines, fmt.Sprintf("  %-10s %s", kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

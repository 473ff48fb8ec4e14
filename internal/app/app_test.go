package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/store"
)

type fakeEvents struct {
	today   map[string]uint64
	hourly  []models.HourlyCount
	samples []models.PopulationSample
	err     error
	since   time.Time
}

func (f *fakeEvents) CommandCountsSince(_ context.Context, since time.Time) (map[string]uint64, error) {
	f.since = since
	return f.today, f.err
}

func (f *fakeEvents) HourlyCommandCounts(context.Context, int) ([]models.HourlyCount, error) {
	return f.hourly, nil
}

func (f *fakeEvents) PopulationSamplesSince(context.Context, time.Time) ([]models.PopulationSample, error) {
	return f.samples, nil
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	popPath := filepath.Join(dir, "population.json")
	yearlyPath := filepath.Join(dir, "yearly_stats.json")

	if !store.Save(popPath, models.PopulationHistory{PeakAllTime: 321, Peak24h: 88}) {
		t.Fatal("save population")
	}
	yearly := models.NewUsageCounters(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	yearly.Record("lifetop", "G1", "Arch")
	if !store.Save(yearlyPath, yearly.Doc(2026)) {
		t.Fatal("save yearly")
	}

	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		t.Fatal(err)
	}
	events := &fakeEvents{today: map[string]uint64{"help": 2, "stats": 3}}
	src := NewSource(SourceConfig{PopulationPath: popPath, YearlyPath: yearlyPath, Location: loc}, events)
	src.now = func() time.Time { return time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC) }

	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Population.PeakAllTime != 321 {
		t.Errorf("peak = %d", snap.Population.PeakAllTime)
	}
	if snap.Year != 2026 || snap.Yearly.Total != 1 {
		t.Errorf("yearly = %d/%d", snap.Year, snap.Yearly.Total)
	}
	if snap.TodayTotal() != 5 {
		t.Errorf("today total = %d", snap.TodayTotal())
	}
	wantMidnight := time.Date(2026, 6, 15, 0, 0, 0, 0, loc)
	if !events.since.Equal(wantMidnight) {
		t.Errorf("counted since %v, want local midnight %v", events.since, wantMidnight)
	}
}

func TestSource_LoadMissingFilesAndQueryError(t *testing.T) {
	dir := t.TempDir()
	events := &fakeEvents{err: errors.New("database is locked")}
	src := NewSource(SourceConfig{
		PopulationPath: filepath.Join(dir, "population.json"),
		YearlyPath:     filepath.Join(dir, "yearly_stats.json"),
	}, events)
	src.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	snap, err := src.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Errorf("err = %v", err)
	}
	if snap == nil || snap.Year != 2026 || snap.Yearly == nil {
		t.Fatalf("partial snapshot = %+v", snap)
	}
}

func TestSnapshot_HourlyCommandSeries(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC)
	snap := &Snapshot{
		LoadedAt: now,
		Hourly: []models.HourlyCount{
			{Hour: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC), Count: 4},
			{Hour: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), Count: 7},
			{Hour: time.Date(2026, 6, 14, 1, 0, 0, 0, time.UTC), Count: 99},
		},
	}
	got := snap.HourlyCommandSeries(4)
	want := []float64{0, 4, 0, 7}
	if len(got) != len(want) {
		t.Fatalf("series = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("series = %v, want %v", got, want)
			break
		}
	}
	if snap.HourlyCommandSeries(0) != nil {
		t.Error("zero hours should be nil")
	}
}

func TestSnapshot_Current(t *testing.T) {
	snap := &Snapshot{}
	if _, ok := snap.Current(); ok {
		t.Error("empty snapshot has a current sample")
	}
	snap.Samples = []models.PopulationSample{{Players: 10}, {Players: 25}}
	if cur, ok := snap.Current(); !ok || cur.Players != 25 {
		t.Errorf("current = %+v, %v", cur, ok)
	}
	if s := snap.PopulationSeries(); len(s) != 2 || s[1] != 25 {
		t.Errorf("series = %v", s)
	}
}

func TestState_PeakRaised(t *testing.T) {
	s := NewState()
	if !s.IsInitialLoading() {
		t.Error("new state should be initial loading")
	}

	snap := func(peak int) *Snapshot {
		return &Snapshot{Population: models.PopulationHistory{PeakAllTime: peak}}
	}
	if s.SetSnapshot(snap(100), nil) {
		t.Error("first load counted as a new peak")
	}
	if s.SetSnapshot(snap(100), nil) {
		t.Error("unchanged peak counted as new")
	}
	if !s.SetSnapshot(snap(150), nil) {
		t.Error("higher peak not reported")
	}
	if s.SetSnapshot(snap(120), nil) {
		t.Error("lower peak reported")
	}
	if s.SetSnapshot(nil, errors.New("boom")) || s.Snapshot() == nil || s.LoadError() == nil {
		t.Error("failed load should keep the previous snapshot and record the error")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	short := s.AddNotification(NotificationInfo, "short", time.Second)
	s.AddNotification(NotificationError, "sticky", 0)
	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Refreshing...")

	if got := len(s.Notifications()); got != 3 {
		t.Fatalf("notifications = %d, want 3", got)
	}

	now = now.Add(2 * time.Second)
	s.ClearExpiredNotifications()
	for _, n := range s.Notifications() {
		if n.ID == short {
			t.Error("expired notification kept")
		}
		if n.ID == LoadingNotificationID && n.Message != "Refreshing..." {
			t.Errorf("loading message = %q", n.Message)
		}
	}

	s.ClearLoadingNotification()
	if got := s.Notifications(); len(got) != 1 || got[0].Message != "sticky" {
		t.Errorf("notifications = %+v", got)
	}

	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "x", 0)
	}
	if got := len(s.Notifications()); got != maxNotifications {
		t.Errorf("kept %d notifications, want %d", got, maxNotifications)
	}
}

type stubLoader struct {
	snap *Snapshot
	err  error
}

func (l stubLoader) Load(context.Context) (*Snapshot, error) {
	return l.snap, l.err
}

type recordingTab struct {
	msgs   []tea.Msg
	width  int
	height int
}

func (r *recordingTab) Init() tea.Cmd { return nil }
func (r *recordingTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	r.msgs = append(r.msgs, msg)
	return r, nil
}
func (r *recordingTab) View() string { return "tab view" }
func (r *recordingTab) SetSize(w, h int) {
	r.width, r.height = w, h
}
func (r *recordingTab) ShortHelp() []key.Binding { return nil }

func newTestModel(t *testing.T, opts Options) (*Model, []*recordingTab) {
	t.Helper()
	m := NewModel(opts)
	tabs := []*recordingTab{{}, {}}
	m.SetTabs([]Tab{tabs[0], tabs[1]})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, tabs
}

func TestModel_WindowAndTabs(t *testing.T) {
	m, tabs := newTestModel(t, Options{})
	if !m.ready || tabs[0].width != 100 || tabs[0].height != 36 {
		t.Errorf("ready=%v size=%dx%d", m.ready, tabs[0].width, tabs[0].height)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if m.activeTab != TabPopulation {
		t.Errorf("active = %v, want population", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != TabUsage {
		t.Errorf("tab did not wrap: %v", m.activeTab)
	}
	m.Update(TabSwitchMsg{Tab: TabID(7)})
	if m.activeTab != TabUsage {
		t.Error("out of range tab accepted")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay not shown")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc did not close help")
	}
}

func TestModel_SnapshotLoaded(t *testing.T) {
	var notified []string
	notify := func(title, message string) error {
		notified = append(notified, message)
		return nil
	}
	m, tabs := newTestModel(t, Options{Notify: notify})

	first := &Snapshot{LoadedAt: time.Now(), Population: models.PopulationHistory{PeakAllTime: 100}}
	_, cmd := m.Update(SnapshotLoadedMsg{Snapshot: first})
	runBatch(t, cmd)
	if len(notified) != 0 {
		t.Errorf("first load notified: %v", notified)
	}

	higher := &Snapshot{LoadedAt: time.Now(), Population: models.PopulationHistory{PeakAllTime: 1500}}
	_, cmd = m.Update(SnapshotLoadedMsg{Snapshot: higher})
	msgs := runBatch(t, cmd)
	if len(notified) != 1 || notified[0] != "New all-time peak: 1,500 players online" {
		t.Errorf("notified = %v", notified)
	}

	var toast bool
	for _, msg := range msgs {
		if add, ok := msg.(AddNotificationMsg); ok && add.Type == NotificationSuccess {
			toast = true
		}
	}
	if !toast {
		t.Error("no success toast for the new peak")
	}
	if len(tabs[0].msgs) == 0 {
		t.Error("active tab did not see the message")
	}
}

func TestModel_PartialLoadWarns(t *testing.T) {
	m, _ := newTestModel(t, Options{Source: stubLoader{err: errors.New("no db")}})
	_, cmd := m.Update(SnapshotLoadedMsg{Snapshot: &Snapshot{LoadedAt: time.Now()}, Err: errors.New("no db")})
	var warned bool
	for _, msg := range runBatch(t, cmd) {
		if add, ok := msg.(AddNotificationMsg); ok && add.Type == NotificationWarning {
			warned = true
		}
	}
	if !warned {
		t.Error("partial load did not warn")
	}
	if !strings.Contains(m.View(), "(partial)") {
		t.Error("status bar does not flag partial data")
	}
}

func TestModel_FilesChangedReloads(t *testing.T) {
	snap := &Snapshot{LoadedAt: time.Now()}
	changes := make(chan struct{}, 1)
	m, _ := newTestModel(t, Options{Source: stubLoader{snap: snap}, Changes: changes})

	_, cmd := m.Update(FilesChangedMsg{})
	if !m.state.IsLoading() {
		t.Error("change did not start a reload")
	}
	changes <- struct{}{}
	var loaded, rewatched bool
	for _, msg := range runBatch(t, cmd) {
		switch msg := msg.(type) {
		case SnapshotLoadedMsg:
			loaded = msg.Snapshot == snap
		case FilesChangedMsg:
			rewatched = true
		}
	}
	if !loaded || !rewatched {
		t.Errorf("loaded=%v rewatched=%v", loaded, rewatched)
	}
}

// runBatch runs cmd and any batch it returns, skipping timers.
func runBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		select {
		case m := <-done:
			out = append(out, runBatch(t, func() tea.Msg { return m })...)
		case <-time.After(200 * time.Millisecond):
		}
	}
	return out
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, "population.json")
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Changes():
		t.Fatal("unwatched file signalled")
	case <-time.After(3 * debounceInterval):
	}

	if !store.Save(filepath.Join(dir, "population.json"), models.PopulationHistory{PeakAllTime: 1}) {
		t.Fatal("save")
	}
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change signalled for the watched file")
	}
}

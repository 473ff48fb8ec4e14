// Package population samples the game server's player count and keeps the
// rolling 24h, daily and all-time figures.
package population

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/metrics"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/store"
)

// ErrPersist is returned when the history could not be saved.
var ErrPersist = errors.New("failed to persist population history")

// StatusSource reports the live server status, nil when unavailable.
type StatusSource interface {
	Status(ctx context.Context) *models.ServerStatus
}

// SampleLog receives every successful sample.
type SampleLog interface {
	InsertPopulationSample(ctx context.Context, s *models.PopulationSample) error
}

// Config holds configuration for the tracker.
type Config struct {
	Path         string
	Location     *time.Location
	HourlyWindow time.Duration
	DailyLimit   int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Location:     time.UTC,
		HourlyWindow: 24 * time.Hour,
		DailyLimit:   30,
	}
}

// Tracker owns the population history.
type Tracker struct {
	mu      sync.Mutex
	history models.PopulationHistory

	persistMu sync.Mutex

	config Config
	source StatusSource
	log    SampleLog
	now    func() time.Time
}

// New creates a tracker and loads the persisted history. log may be nil.
func New(config Config, source StatusSource, log SampleLog) *Tracker {
	return newWithClock(config, source, log, time.Now)
}

func newWithClock(config Config, source StatusSource, log SampleLog, now func() time.Time) *Tracker {
	def := DefaultConfig()
	if config.Location == nil {
		config.Location = def.Location
	}
	if config.HourlyWindow <= 0 {
		config.HourlyWindow = def.HourlyWindow
	}
	if config.DailyLimit <= 0 {
		config.DailyLimit = def.DailyLimit
	}

	t := &Tracker{
		config: config,
		source: source,
		log:    log,
		now:    now,
	}
	t.history = store.Load(config.Path, models.PopulationHistory{})
	metrics.SetPopulation(0, t.history.PeakAllTime)
	return t
}

// Sample records the current player count. An unavailable or offline server
// skips the tick without error.
func (t *Tracker) Sample(ctx context.Context) error {
	st := t.source.Status(ctx)
	if st == nil || !st.Online {
		logger.Debug("Population sample skipped", "available", st != nil)
		return nil
	}

	players := st.CurrentPlayers()
	now := t.now().UTC()

	t.mu.Lock()
	t.history.RaisePeak(players)
	t.history.PruneHourly(now, t.config.HourlyWindow)
	t.history.Hourly = append(t.history.Hourly, models.HourlySample{Timestamp: now, Players: players})
	t.history.RecomputePeak24h()
	peak := t.history.PeakAllTime
	t.mu.Unlock()

	metrics.SetPopulation(players, peak)

	if t.log != nil {
		err := t.log.InsertPopulationSample(ctx, &models.PopulationSample{
			Timestamp:  now,
			Players:    players,
			MaxPlayers: st.Players.Max,
		})
		if err != nil {
			logger.Warn("Failed to log population sample", "error", err)
		}
	}

	if !t.persist() {
		return ErrPersist
	}
	return nil
}

// DailySnapshot records today's player count, zero when the server is down,
// replacing any earlier snapshot for the same local date.
func (t *Tracker) DailySnapshot(ctx context.Context) error {
	players := t.source.Status(ctx).CurrentPlayers()
	date := t.now().In(t.config.Location).Format(models.DateLayout)

	t.mu.Lock()
	t.history.UpsertDaily(date, players, t.config.DailyLimit)
	t.mu.Unlock()

	logger.Info("Daily population snapshot", "date", date, "players", players)
	if !t.persist() {
		return ErrPersist
	}
	return nil
}

// Query returns the live population together with the stored peaks. A live
// reading above the all-time peak raises and persists it.
func (t *Tracker) Query(ctx context.Context) models.PopulationReport {
	st := t.source.Status(ctx)

	t.mu.Lock()
	var raised bool
	if st != nil && st.Online {
		raised = t.history.RaisePeak(st.CurrentPlayers())
	}
	report := models.PopulationReport{
		Peak24h:     t.history.Peak24h,
		PeakAllTime: t.history.PeakAllTime,
	}
	t.mu.Unlock()

	if st != nil && st.Online {
		report.Online = true
		report.Current = st.CurrentPlayers()
		report.Max = st.Players.Max
		report.Version = st.VersionOrUnknown()
		report.MOTD = st.MOTD.Clean
	}

	if raised {
		logger.Info("New all-time population peak", "players", report.PeakAllTime)
		metrics.SetPopulation(report.Current, report.PeakAllTime)
		t.persist()
	}
	return report
}

// History returns a copy of the population history.
func (t *Tracker) History() models.PopulationHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Clone()
}

func (t *Tracker) persist() bool {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	t.mu.Lock()
	doc := t.history.Clone()
	t.mu.Unlock()

	return store.Save(t.config.Path, doc)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/store"
)

// EventStore is the part of the database the dashboard reads.
type EventStore interface {
	CommandCountsSince(ctx context.Context, since time.Time) (map[string]uint64, error)
	HourlyCommandCounts(ctx context.Context, hours int) ([]models.HourlyCount, error)
	PopulationSamplesSince(ctx context.Context, since time.Time) ([]models.PopulationSample, error)
}

// SourceConfig locates the bot's persisted state.
type SourceConfig struct {
	PopulationPath string
	YearlyPath     string
	Location       *time.Location
}

// Source reads a Snapshot of what the bot has persisted.
type Source struct {
	config SourceConfig
	events EventStore
	now    func() time.Time
}

// NewSource returns a source over the given files and event store.
func NewSource(config SourceConfig, events EventStore) *Source {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Source{config: config, events: events, now: time.Now}
}

// Snapshot is everything the dashboard shows, read in one pass.
type Snapshot struct {
	LoadedAt   time.Time
	Population models.PopulationHistory
	// Samples are the population readings of the last 24 hours.
	Samples []models.PopulationSample
	// Today counts commands since local midnight.
	Today  map[string]uint64
	Hourly []models.HourlyCount
	Year   int
	Yearly *models.UsageCounters
}

// Load reads the JSON documents and queries the event store. The documents
// fall back to empty ones when missing; query failures are joined into the
// returned error alongside a partial snapshot.
func (s *Source) Load(ctx context.Context) (*Snapshot, error) {
	now := s.now()
	local := now.In(s.config.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.config.Location)

	snap := &Snapshot{
		LoadedAt:   now,
		Population: store.Load(s.config.PopulationPath, models.PopulationHistory{}),
	}
	doc := store.Load(s.config.YearlyPath, models.NewYearlyDoc(local.Year()))
	if doc.Year == 0 {
		doc.Year = local.Year()
	}
	snap.Year = doc.Year
	snap.Yearly = doc.Counters(local)

	var errs []error
	today, err := s.events.CommandCountsSince(ctx, midnight)
	if err != nil {
		errs = append(errs, fmt.Errorf("today's commands: %w", err))
	}
	snap.Today = today

	if snap.Hourly, err = s.events.HourlyCommandCounts(ctx, 24); err != nil {
		errs = append(errs, fmt.Errorf("hourly commands: %w", err))
	}
	if snap.Samples, err = s.events.PopulationSamplesSince(ctx, now.Add(-24*time.Hour)); err != nil {
		errs = append(errs, fmt.Errorf("population samples: %w", err))
	}
	return snap, errors.Join(errs...)
}

// TodayTotal sums today's command counts.
func (s *Snapshot) TodayTotal() uint64 {
	var total uint64
	for _, n := range s.Today {
		total += n
	}
	return total
}

// Current returns the latest population sample.
func (s *Snapshot) Current() (models.PopulationSample, bool) {
	if len(s.Samples) == 0 {
		return models.PopulationSample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

// HourlyCommandSeries returns one value per hour for the last hours hours,
// oldest first, with quiet hours as zero.
func (s *Snapshot) HourlyCommandSeries(hours int) []float64 {
	if hours <= 0 {
		return nil
	}
	byHour := make(map[int64]int, len(s.Hourly))
	for _, h := range s.Hourly {
		byHour[h.Hour.UTC().Truncate(time.Hour).Unix()] += h.Count
	}
	end := s.LoadedAt.UTC().Truncate(time.Hour)
	out := make([]float64, hours)
	for i := range hours {
		hour := end.Add(-time.Duration(hours-1-i) * time.Hour)
		out[i] = float64(byHour[hour.Unix()])
	}
	return out
}

// PopulationSeries returns the player counts of the stored samples.
func (s *Snapshot) PopulationSeries() []float64 {
	out := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = float64(smp.Players)
	}
	return out
}

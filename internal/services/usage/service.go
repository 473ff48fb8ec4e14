// Package usage counts slash command usage per day and per year and publishes
// the daily recap and the yearly wrapped.
package usage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/metrics"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/store"
)

// Event is one handled command.
type Event struct {
	Command   string
	GuildID   string
	GuildName string
	UserID    string
	Outcome   string
}

// EventLog receives every recorded event. It is a history, not the source of
// the counters, so its failures are only logged.
type EventLog interface {
	InsertCommandEvent(ctx context.Context, ev *models.CommandEvent) error
}

// Publisher sends recaps to wherever the operators read them.
type Publisher interface {
	DailyRecap(ctx context.Context, daily *models.UsageCounters) error
	Wrapped(ctx context.Context, year int, yearly *models.UsageCounters) error
}

// Config holds configuration for the aggregator.
type Config struct {
	YearlyPath string
	Location   *time.Location
}

// Aggregator owns the daily and yearly counters.
type Aggregator struct {
	mu     sync.Mutex
	daily  *models.UsageCounters
	yearly *models.UsageCounters
	year   int
	day    string

	// persistMu orders yearly saves so the newest snapshot is written last.
	persistMu sync.Mutex

	config    Config
	events    EventLog
	publisher Publisher
	now       func() time.Time
}

// New creates an aggregator and loads the persisted yearly counters.
// events and publisher may be nil.
func New(config Config, events EventLog, publisher Publisher) *Aggregator {
	return newWithClock(config, events, publisher, time.Now)
}

func newWithClock(config Config, events EventLog, publisher Publisher, now func() time.Time) *Aggregator {
	if config.Location == nil {
		config.Location = time.UTC
	}

	a := &Aggregator{
		config:    config,
		events:    events,
		publisher: publisher,
		now:       now,
	}

	local := a.localNow()
	doc := store.Load(config.YearlyPath, models.NewYearlyDoc(local.Year()))
	if doc.Year == 0 {
		doc.Year = local.Year()
	}
	a.year = doc.Year
	a.yearly = doc.Counters(local)
	a.daily = models.NewUsageCounters(local)
	a.day = local.Format(models.DateLayout)

	logger.Info("Usage counters loaded", "year", a.year, "total", a.yearly.Total)
	return a
}

func (a *Aggregator) localNow() time.Time {
	return a.now().In(a.config.Location)
}

// Record counts one command in the daily and yearly windows and persists the
// yearly counters.
func (a *Aggregator) Record(ctx context.Context, ev Event) {
	a.mu.Lock()
	a.daily.Record(ev.Command, ev.GuildID, ev.GuildName)
	a.yearly.Record(ev.Command, ev.GuildID, ev.GuildName)
	a.mu.Unlock()

	metrics.RecordCommand(ev.Command)
	a.persist()

	if a.events == nil {
		return
	}
	err := a.events.InsertCommandEvent(ctx, &models.CommandEvent{
		Timestamp: a.now(),
		Command:   ev.Command,
		GuildID:   ev.GuildID,
		GuildName: ev.GuildName,
		UserID:    ev.UserID,
		Outcome:   ev.Outcome,
	})
	if err != nil {
		logger.Warn("Failed to log command event", "command", ev.Command, "error", err)
	}
}

func (a *Aggregator) persist() bool {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	a.mu.Lock()
	doc := a.yearly.Doc(a.year)
	a.mu.Unlock()

	return store.Save(a.config.YearlyPath, doc)
}

// Tick rolls the windows over when the local date has changed and publishes
// the daily recap. On a new year the finished year's counters are detached
// and published as the wrapped.
func (a *Aggregator) Tick(ctx context.Context) error {
	local := a.localNow()
	today := local.Format(models.DateLayout)

	var errs []error

	a.mu.Lock()
	rolled := today != a.day
	newYear := rolled && (local.YearDay() == 1 || local.Year() > a.year)
	var wrappedYear int
	var wrapped *models.UsageCounters
	if newYear {
		// Fresh windows go in before the lock drops so events recorded while
		// the wrapped is published count toward the new year.
		wrappedYear, wrapped = a.year, a.yearly
		a.year = local.Year()
		a.yearly = models.NewUsageCounters(local)
	}
	if rolled {
		a.daily = models.NewUsageCounters(local)
		a.day = today
	}
	a.mu.Unlock()

	if newYear {
		if a.publisher != nil {
			if err := a.publisher.Wrapped(ctx, wrappedYear, wrapped); err != nil {
				errs = append(errs, fmt.Errorf("publish wrapped %d: %w", wrappedYear, err))
			}
		}
		if !a.persist() {
			errs = append(errs, errors.New("persist cleared yearly counters"))
		}
		logger.Info("Yearly usage counters reset", "previous_year", wrappedYear, "year", local.Year())
	}
	if rolled {
		logger.Info("Daily usage counters reset", "date", today)
	}

	if a.publisher != nil {
		if err := a.publisher.DailyRecap(ctx, a.Daily()); err != nil {
			errs = append(errs, fmt.Errorf("publish daily recap: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Daily returns a copy of today's counters.
func (a *Aggregator) Daily() *models.UsageCounters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.daily.Clone()
}

// Yearly returns the year being counted and a copy of its counters.
func (a *Aggregator) Yearly() (int, *models.UsageCounters) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.year, a.yearly.Clone()
}

// Package services wires the bot's long-lived services and supervises them.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/Archie-bot-stack/Archie/internal/config"
	"github.com/Archie-bot-stack/Archie/internal/db"
	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/render"
	"github.com/Archie-bot-stack/Archie/internal/report"
	"github.com/Archie-bot-stack/Archie/internal/services/archapi"
	"github.com/Archie-bot-stack/Archie/internal/services/population"
	"github.com/Archie-bot-stack/Archie/internal/services/scheduler"
	"github.com/Archie-bot-stack/Archie/internal/services/usage"
)

const (
	// EventRetention is how long command events and population samples are kept.
	EventRetention = 90 * 24 * time.Hour

	shutdownTimeout = 10 * time.Second
	pruneHour       = 4
)

// Manager owns the shared services: the API client, the event log, the
// aggregators and the renderer.
type Manager struct {
	config   *config.Config
	location *time.Location

	database   *db.DB
	api        *archapi.Client
	assets     *render.Assets
	renderer   *render.Renderer
	pool       *render.Pool
	reporter   *report.ErrorReporter
	usage      *usage.Aggregator
	population *population.Tracker
}

// NewManager opens the event log and builds every service. Reports go out
// through sender; recaps use the report webhook instead when one is set.
func NewManager(cfg *config.Config, sender report.Sender) (*Manager, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var recapSender report.Sender = sender
	if cfg.ReportWebhookURL != "" {
		webhook, err := report.NewWebhookSender(cfg.ReportWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid report webhook: %w", err)
		}
		recapSender = webhook
	}

	m := &Manager{config: cfg, location: loc}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Debug("Event log opened", "path", m.database.Path())

	m.api = archapi.New(archapi.Config{
		BaseURL:    cfg.APIBaseURL,
		APIKey:     cfg.APIKey,
		StatusURL:  cfg.StatusURL,
		RateLimit:  cfg.APIRateLimit,
		RateWindow: cfg.APIRateWindow,
	})

	m.assets = render.NewAssets(cfg.AssetsDir)
	m.renderer = render.NewRenderer(m.assets)
	m.pool = render.NewPool(cfg.RenderWorkers)

	m.reporter = report.NewErrorReporter(sender, cfg.Channels.Errors)

	publisher := report.NewPublisher(recapSender, cfg.Channels.Stats, m.renderer, m.pool)

	m.usage = usage.New(usage.Config{
		YearlyPath: cfg.YearlyStatsPath(),
		Location:   loc,
	}, m.database, publisher)

	popConfig := population.DefaultConfig()
	popConfig.Path = cfg.PopulationPath()
	popConfig.Location = loc
	m.population = population.New(popConfig, m.api, m.database)

	return m, nil
}

// Tasks returns the scheduled tasks, each on its own timer.
func (m *Manager) Tasks() ([]*scheduler.Task, error) {
	hour, minute, err := m.config.SnapshotClock()
	if err != nil {
		return nil, err
	}
	return []*scheduler.Task{
		scheduler.Every("usage-recap", m.config.RecapInterval, m.usage.Tick, m.reporter),
		scheduler.Every("population-sample", m.config.SampleInterval, m.population.Sample, m.reporter),
		scheduler.DailyAt("population-snapshot", hour, minute, m.location, m.population.DailySnapshot, m.reporter),
		scheduler.DailyAt("event-log-prune", pruneHour, 0, m.location, m.pruneEventLog, m.reporter),
	}, nil
}

func (m *Manager) pruneEventLog(ctx context.Context) error {
	removed, err := m.database.PruneBefore(ctx, time.Now().Add(-EventRetention))
	if err != nil {
		return err
	}
	logger.Info("Pruned event log", "rows", removed)
	if removed == 0 {
		return nil
	}
	if err := m.database.Vacuum(); err != nil {
		return fmt.Errorf("vacuum event log: %w", err)
	}
	return nil
}

// Serve runs the scheduled tasks and the given front-facing services
// (gateway, HTTP server) under one supervisor until ctx is cancelled.
func (m *Manager) Serve(ctx context.Context, frontends ...suture.Service) error {
	tasks, err := m.Tasks()
	if err != nil {
		return err
	}

	root := suture.New("archie", suture.Spec{
		EventHook: (&sutureslog.Handler{Logger: logger.Logger}).MustHook(),
		Timeout:   shutdownTimeout,
	})
	taskLayer := suture.New("tasks", suture.Spec{Timeout: shutdownTimeout})
	frontLayer := suture.New("frontends", suture.Spec{Timeout: shutdownTimeout})
	root.Add(taskLayer)
	root.Add(frontLayer)

	for _, task := range tasks {
		taskLayer.Add(task)
	}
	for _, svc := range frontends {
		frontLayer.Add(svc)
	}

	logger.Info("Starting services", "tasks", len(tasks), "frontends", len(frontends))
	err = root.Serve(ctx)
	if unstopped, uerr := root.UnstoppedServiceReport(); uerr == nil {
		for _, svc := range unstopped {
			logger.Warn("Service failed to stop in time", "service", svc.Name)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config {
	return m.config
}

// Location returns the reporting time zone.
func (m *Manager) Location() *time.Location {
	return m.location
}

// Database returns the event log.
func (m *Manager) Database() *db.DB {
	return m.database
}

// API returns the ArchMC client.
func (m *Manager) API() *archapi.Client {
	return m.api
}

// Assets returns the shared card assets.
func (m *Manager) Assets() *render.Assets {
	return m.assets
}

// Renderer returns the card and chart renderer.
func (m *Manager) Renderer() *render.Renderer {
	return m.renderer
}

// Pool returns the render pool.
func (m *Manager) Pool() *render.Pool {
	return m.pool
}

// Reporter returns the error reporter.
func (m *Manager) Reporter() *report.ErrorReporter {
	return m.reporter
}

// Usage returns the usage aggregator.
func (m *Manager) Usage() *usage.Aggregator {
	return m.usage
}

// Population returns the population tracker.
func (m *Manager) Population() *population.Tracker {
	return m.population
}

// Close waits for running renders and closes the event log.
func (m *Manager) Close() error {
	m.pool.Close()

	var errs []error
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

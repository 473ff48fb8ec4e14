package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Archie-bot-stack/Archie/internal/app"
	"github.com/Archie-bot-stack/Archie/internal/config"
	"github.com/Archie-bot-stack/Archie/internal/db"
	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/ui/tabs/population"
	"github.com/Archie-bot-stack/Archie/internal/ui/tabs/usage"
)

func newDashCommand() *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the terminal dashboard over the bot's data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDash(cmd.Context(), !noWatch)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "poll instead of watching the data files")
	return cmd
}

func runDash(parent context.Context, watch bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// The terminal belongs to the dashboard; log only when asked to.
	logger.Setup(io.Discard, cfg.LogLevel, cfg.LogFormat)
	if path := os.Getenv("ARCHIE_DASH_LOG"); path != "" {
		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open dashboard log: %w", err)
		}
		defer f.Close()
		logger.Setup(f, cfg.LogLevel, cfg.LogFormat)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.Warn("Error closing database", "error", closeErr)
		}
	}()

	source := app.NewSource(app.SourceConfig{
		PopulationPath: cfg.PopulationPath(),
		YearlyPath:     cfg.YearlyStatsPath(),
		Location:       loc,
	}, database)

	opts := app.Options{Source: source}
	if watch {
		watcher, err := app.NewWatcher(cfg.DataDir, cfg.PopulationPath(), cfg.YearlyStatsPath())
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.DataDir, err)
		}
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				logger.Warn("Error closing watcher", "error", closeErr)
			}
		}()
		opts.Changes = watcher.Changes()
	}

	model := app.NewModel(opts)
	state := model.State()
	model.SetTabs([]app.Tab{
		usage.New(state),
		population.New(state, loc),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"

	"github.com/Archie-bot-stack/Archie/internal/bot"
	"github.com/Archie-bot-stack/Archie/internal/config"
	"github.com/Archie-bot-stack/Archie/internal/httpserver"
	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/report"
	"github.com/Archie-bot-stack/Archie/internal/services"
	"github.com/Archie-bot-stack/Archie/internal/version"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve slash commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context())
		},
	}
}

func runBot(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	notices := report.NewChannelSender(session)

	mgr, err := services.NewManager(cfg, notices)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("Error closing services", "error", closeErr)
		}
	}()
	mgr.Assets().Preload()

	gateway := bot.New(session, bot.Deps{
		API:        mgr.API(),
		Cards:      mgr.Renderer(),
		Pool:       mgr.Pool(),
		Usage:      mgr.Usage(),
		Population: mgr.Population(),
		Reporter:   mgr.Reporter(),
		Notices:    notices,
		Channels:   cfg.Channels,
		Cooldown:   cfg.CommandCooldown,
		Location:   mgr.Location(),
	})

	frontends := []suture.Service{gateway}
	if cfg.MetricsAddr != "" {
		frontends = append(frontends, httpserver.New(cfg.MetricsAddr, mgr.Database()))
	}

	logger.Info("Starting Archie", "version", version.Current(), "metrics", cfg.MetricsAddr)
	return mgr.Serve(ctx, frontends...)
}

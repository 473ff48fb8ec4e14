// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DiscordToken string
	APIKey       string
	APIBaseURL   string
	StatusURL    string

	DataDir      string
	AssetsDir    string
	DatabasePath string

	Channels         Channels
	ReportWebhookURL string
	MetricsAddr      string

	Timezone       string
	RecapInterval  time.Duration
	SampleInterval time.Duration
	SnapshotTime   string

	APIRateLimit    int
	APIRateWindow   time.Duration
	RenderWorkers   int
	CommandCooldown time.Duration

	LogLevel  string
	LogFormat string
}

// Channels holds the Discord channel IDs the bot reports to.
type Channels struct {
	Stats      string
	Errors     string
	Status     string
	Ready      string
	GuildJoin  string
	GuildLeave string
}

// Default values
const (
	defaultAPIBaseURL      = "https://api.arch.mc"
	defaultStatusURL       = "https://api.mcsrvstat.us/3/play.arch.mc"
	defaultTimezone        = "Europe/Copenhagen"
	defaultRecapInterval   = 5 * time.Minute
	defaultSampleInterval  = 5 * time.Minute
	defaultSnapshotTime    = "23:55"
	defaultAPIRateLimit    = 90
	defaultAPIRateWindow   = 60 * time.Second
	defaultCommandCooldown = 3 * time.Second
	defaultMetricsAddr     = ":9090"

	defaultStatsChannel  = "1465102978644971858"
	defaultErrorsChannel = "1454137711710703785"
	defaultStatusChannel = "1454137711140147332"
	defaultReadyChannel  = "1454137711710703783"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getEnvString("DATA_DIR", "data")

	cfg := &Config{
		DiscordToken: getEnvString("TOKEN", ""),
		APIKey:       getEnvString("ARCH_API_KEY", ""),
		APIBaseURL:   strings.TrimRight(getEnvString("ARCH_API_URL", defaultAPIBaseURL), "/"),
		StatusURL:    getEnvString("SERVER_STATUS_URL", defaultStatusURL),

		DataDir:      dataDir,
		AssetsDir:    getEnvString("ASSETS_DIR", "assets"),
		DatabasePath: getEnvString("DATABASE_PATH", filepath.Join(dataDir, "archie.db")),

		Channels: Channels{
			Stats:      getEnvString("STATS_CHANNEL", defaultStatsChannel),
			Errors:     getEnvString("BOT_ERRORS_CHANNEL", defaultErrorsChannel),
			Status:     getEnvString("BOT_STATUS_CHANNEL", defaultStatusChannel),
			Ready:      getEnvString("READY_CHANNEL", defaultReadyChannel),
			GuildJoin:  getEnvString("GUILD_JOIN_CHANNEL", ""),
			GuildLeave: getEnvString("GUILD_LEAVE_CHANNEL", ""),
		},
		ReportWebhookURL: getEnvString("REPORT_WEBHOOK_URL", ""),
		MetricsAddr:      getEnvStringAllowEmpty("METRICS_ADDR", defaultMetricsAddr),

		Timezone:       getEnvString("TIMEZONE", defaultTimezone),
		RecapInterval:  getEnvDuration("RECAP_INTERVAL", defaultRecapInterval),
		SampleInterval: getEnvDuration("SAMPLE_INTERVAL", defaultSampleInterval),
		SnapshotTime:   getEnvString("SNAPSHOT_TIME", defaultSnapshotTime),

		APIRateLimit:    getEnvInt("API_RATE_LIMIT", defaultAPIRateLimit),
		APIRateWindow:   getEnvDuration("API_RATE_WINDOW", defaultAPIRateWindow),
		RenderWorkers:   getEnvInt("RENDER_WORKERS", runtime.NumCPU()),
		CommandCooldown: getEnvDuration("COMMAND_COOLDOWN", defaultCommandCooldown),

		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, _, err := cfg.SnapshotClock(); err != nil {
		return nil, err
	}

	// Ensure data and database directories exist
	if err := ensureDir(cfg.DataDir); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings needed to connect to Discord.
func (c *Config) Validate() error {
	var errs []error
	if c.DiscordToken == "" {
		errs = append(errs, errors.New("TOKEN is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("ARCH_API_KEY is required"))
	}
	if c.APIRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("API_RATE_LIMIT must be positive, got %d", c.APIRateLimit))
	}
	return errors.Join(errs...)
}

// Location resolves the reporting time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SnapshotClock parses SnapshotTime as HH:MM.
func (c *Config) SnapshotClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", c.SnapshotTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid SNAPSHOT_TIME %q: %w", c.SnapshotTime, err)
	}
	return t.Hour(), t.Minute(), nil
}

// YearlyStatsPath is the persisted yearly usage document.
func (c *Config) YearlyStatsPath() string {
	return filepath.Join(c.DataDir, "yearly_stats.json")
}

// PopulationPath is the persisted population history document.
func (c *Config) PopulationPath() string {
	return filepath.Join(c.DataDir, "population.json")
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "archie", ".env"),
			filepath.Join(home, ".archie", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvStringAllowEmpty is like getEnvString but honours an explicitly empty value.
func getEnvStringAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}

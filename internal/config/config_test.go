package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	t.Setenv(key, "test_value")

	if got := getEnvString(key, "default"); got != "test_value" {
		t.Errorf("getEnvString() = %q, want %q", got, "test_value")
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvStringAllowEmpty(t *testing.T) {
	key := "TEST_ENV_ALLOW_EMPTY"
	t.Setenv(key, "")

	if got := getEnvStringAllowEmpty(key, ":9090"); got != "" {
		t.Errorf("getEnvStringAllowEmpty() = %q, want empty", got)
	}
	if got := getEnvStringAllowEmpty("NON_EXISTENT_ALLOW_EMPTY", ":9090"); got != ":9090" {
		t.Errorf("getEnvStringAllowEmpty() = %q, want :9090", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "42", 42},
		{"Invalid", "forty", 7},
		{"Empty", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvInt(key, 7); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

// isolate moves the test into an empty directory with an empty HOME so no
// stray .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)
	for _, key := range []string{"TOKEN", "ARCH_API_KEY", "DATA_DIR", "DATABASE_PATH", "TIMEZONE", "SNAPSHOT_TIME", "METRICS_ADDR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return tmpDir
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("DATA_DIR", filepath.Join(tmpDir, "data"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.RecapInterval != defaultRecapInterval {
		t.Errorf("RecapInterval = %v, want %v", cfg.RecapInterval, defaultRecapInterval)
	}
	if cfg.APIRateLimit != 90 || cfg.APIRateWindow != time.Minute {
		t.Errorf("rate budget = %d/%v, want 90/1m", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.CommandCooldown != 3*time.Second {
		t.Errorf("CommandCooldown = %v, want 3s", cfg.CommandCooldown)
	}
	if cfg.MetricsAddr != defaultMetricsAddr {
		t.Errorf("MetricsAddr = %q, want %q", cfg.MetricsAddr, defaultMetricsAddr)
	}
	if want := filepath.Join(tmpDir, "data", "archie.db"); cfg.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, want)
	}
	if want := filepath.Join(tmpDir, "data", "yearly_stats.json"); cfg.YearlyStatsPath() != want {
		t.Errorf("YearlyStatsPath() = %q, want %q", cfg.YearlyStatsPath(), want)
	}
	if want := filepath.Join(tmpDir, "data", "population.json"); cfg.PopulationPath() != want {
		t.Errorf("PopulationPath() = %q, want %q", cfg.PopulationPath(), want)
	}
	if _, err := os.Stat(cfg.DataDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Copenhagen" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
	h, m, err := cfg.SnapshotClock()
	if err != nil || h != 23 || m != 55 {
		t.Errorf("SnapshotClock() = %d:%d, %v", h, m, err)
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := isolate(t)
	content := "TOKEN=env-token\nARCH_API_KEY=env-key\nDATA_DIR=" + filepath.Join(tmpDir, "d") + "\nARCH_API_URL=https://example.test/\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DiscordToken != "env-token" {
		t.Errorf("DiscordToken = %q, want env-token", cfg.DiscordToken)
	}
	if cfg.APIBaseURL != "https://example.test" {
		t.Errorf("APIBaseURL = %q, want trailing slash trimmed", cfg.APIBaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("DATA_DIR", tmpDir)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on an unknown time zone")
	}
}

func TestLoad_InvalidSnapshotTime(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("DATA_DIR", tmpDir)
	t.Setenv("SNAPSHOT_TIME", "25:99")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on a malformed snapshot time")
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := &Config{APIRateLimit: 90}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when credentials are missing")
	}

	cfg = &Config{DiscordToken: "t", APIKey: "k", APIRateLimit: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero rate limit")
	}
}

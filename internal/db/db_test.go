package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/models"
)

func TestNew_CreatesNestedEventLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "archie.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("event log file missing: %v", err)
	}
}

func TestSchema(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	tests := []struct {
		kind string
		name string
	}{
		{"table", "command_events"},
		{"table", "population_samples"},
		{"index", "idx_command_events_timestamp"},
		{"index", "idx_command_events_command"},
		{"index", "idx_population_samples_timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var name string
			err := db.QueryRowContext(context.Background(),
				"SELECT name FROM sqlite_master WHERE type = ? AND name = ?", tt.kind, tt.name).Scan(&name)
			if err != nil {
				t.Errorf("%s %s missing: %v", tt.kind, tt.name, err)
			}
		})
	}
}

func TestConfigure_WAL(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	var mode string
	if err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal so the dashboard can read while the bot writes", mode)
	}
}

func TestReopen_KeepsEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archie.db")
	ctx := context.Background()

	first, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.InsertCommandEvent(ctx, &models.CommandEvent{Command: "help", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	counts, err := second.CommandCountsSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if counts["help"] != 1 {
		t.Errorf("counts after reopen = %v", counts)
	}
}

func TestVacuum_AfterPrune(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	old := time.Now().Add(-100 * 24 * time.Hour)
	for range 20 {
		if err := db.InsertPopulationSample(ctx, &models.PopulationSample{Timestamp: old, Players: 5}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.PruneBefore(ctx, time.Now().Add(-90*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := db.Vacuum(); err != nil {
		t.Errorf("Vacuum: %v", err)
	}
}

func TestClose(t *testing.T) {
	db := newTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := db.QueryContext(context.Background(), "SELECT 1"); err == nil {
		t.Error("query on a closed event log succeeded")
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "archie.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return db
}

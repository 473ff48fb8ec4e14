package db

import (
	"context"
	"testing"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/models"
)

func TestInsertCommandEvent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	ev := &models.CommandEvent{
		Command:   "lifetop",
		GuildID:   "G1",
		GuildName: "Arch",
		UserID:    "U1",
	}
	if err := db.InsertCommandEvent(context.Background(), ev); err != nil {
		t.Fatalf("InsertCommandEvent() failed: %v", err)
	}
	if ev.ID == 0 {
		t.Error("InsertCommandEvent() should set ID")
	}

	var outcome string
	if err := db.QueryRowContext(context.Background(),
		"SELECT outcome FROM command_events WHERE id = ?", ev.ID).Scan(&outcome); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if outcome != models.OutcomeOK {
		t.Errorf("outcome = %q, want default %q", outcome, models.OutcomeOK)
	}
}

func TestInsertCommandEvent_DirectMessage(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	ev := &models.CommandEvent{Command: "help", Outcome: models.OutcomeOK}
	if err := db.InsertCommandEvent(context.Background(), ev); err != nil {
		t.Fatalf("InsertCommandEvent() failed: %v", err)
	}

	var guildID *string
	if err := db.QueryRowContext(context.Background(),
		"SELECT guild_id FROM command_events WHERE id = ?", ev.ID).Scan(&guildID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if guildID != nil {
		t.Errorf("guild_id = %q, want NULL", *guildID)
	}
}

func TestCommandCountsSince(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	events := []models.CommandEvent{
		{Command: "lifetop", Timestamp: now.Add(-10 * time.Minute)},
		{Command: "lifetop", Timestamp: now.Add(-5 * time.Minute)},
		{Command: "balance", Timestamp: now.Add(-1 * time.Minute)},
		{Command: "balance", Timestamp: now.Add(-48 * time.Hour)},
	}
	for i := range events {
		if err := db.InsertCommandEvent(ctx, &events[i]); err != nil {
			t.Fatalf("InsertCommandEvent() failed: %v", err)
		}
	}

	counts, err := db.CommandCountsSince(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CommandCountsSince() failed: %v", err)
	}
	if counts["lifetop"] != 2 || counts["balance"] != 1 {
		t.Errorf("CommandCountsSince() = %v", counts)
	}
}

func TestHourlyCommandCounts(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hour := time.Now().UTC().Truncate(time.Hour)
	for _, ts := range []time.Time{hour, hour.Add(time.Minute), hour.Add(-time.Hour)} {
		ev := &models.CommandEvent{Command: "stat", Timestamp: ts}
		if err := db.InsertCommandEvent(ctx, ev); err != nil {
			t.Fatalf("InsertCommandEvent() failed: %v", err)
		}
	}

	counts, err := db.HourlyCommandCounts(ctx, 3)
	if err != nil {
		t.Fatalf("HourlyCommandCounts() failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(counts), counts)
	}
	if !counts[1].Hour.Equal(hour) || counts[1].Count != 2 {
		t.Errorf("latest hour = %+v, want %v x2", counts[1], hour)
	}
	if counts[0].Count != 1 {
		t.Errorf("previous hour = %+v, want 1", counts[0])
	}
}

func TestPopulationSamples(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for i, ts := range []time.Time{now.Add(-30 * time.Hour), now.Add(-2 * time.Hour), now} {
		s := &models.PopulationSample{Timestamp: ts, Players: 10 * (i + 1), MaxPlayers: 500}
		if err := db.InsertPopulationSample(ctx, s); err != nil {
			t.Fatalf("InsertPopulationSample() failed: %v", err)
		}
		if s.ID == 0 {
			t.Error("InsertPopulationSample() should set ID")
		}
	}

	samples, err := db.PopulationSamplesSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PopulationSamplesSince() failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len = %d, want 2", len(samples))
	}
	if samples[0].Players != 20 || samples[1].Players != 30 {
		t.Errorf("samples out of order: %+v", samples)
	}
	if !samples[1].Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", samples[1].Timestamp, now)
	}
}

func TestPruneBefore(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	old := time.Now().Add(-100 * 24 * time.Hour)
	if err := db.InsertCommandEvent(ctx, &models.CommandEvent{Command: "stat", Timestamp: old}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertCommandEvent(ctx, &models.CommandEvent{Command: "stat"}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertPopulationSample(ctx, &models.PopulationSample{Timestamp: old, Players: 1}); err != nil {
		t.Fatal(err)
	}

	n, err := db.PruneBefore(ctx, time.Now().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("PruneBefore() removed %d rows, want 2", n)
	}

	counts, err := db.CommandCountsSince(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if counts["stat"] != 1 {
		t.Errorf("remaining = %v, want stat:1", counts)
	}
}

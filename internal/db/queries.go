package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/models"
)

// InsertCommandEvent logs a handled command.
func (db *DB) InsertCommandEvent(ctx context.Context, ev *models.CommandEvent) error {
	query := `
		INSERT INTO command_events (
			timestamp, command, guild_id, guild_name, user_id, outcome
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	timestamp := ev.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	outcome := ev.Outcome
	if outcome == "" {
		outcome = models.OutcomeOK
	}

	result, err := db.ExecContext(ctx, query,
		formatTime(timestamp),
		ev.Command,
		nullString(ev.GuildID),
		nullString(ev.GuildName),
		nullString(ev.UserID),
		outcome,
	)
	if err != nil {
		return fmt.Errorf("failed to insert command event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		ev.ID = id
	}

	return nil
}

// CommandCountsSince returns per-command totals for events at or after since.
func (db *DB) CommandCountsSince(ctx context.Context, since time.Time) (map[string]uint64, error) {
	query := `
		SELECT command, COUNT(*)
		FROM command_events
		WHERE timestamp >= ?
		GROUP BY command
	`

	rows, err := db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query command counts: %w", err)
	}
	defer closeRows(rows)

	counts := make(map[string]uint64)
	for rows.Next() {
		var command string
		var n uint64
		if err := rows.Scan(&command, &n); err != nil {
			return nil, fmt.Errorf("failed to scan command count: %w", err)
		}
		counts[command] = n
	}

	return counts, rows.Err()
}

// HourlyCommandCounts returns command totals per UTC hour for the last hours,
// oldest first. Hours without events are absent.
func (db *DB) HourlyCommandCounts(ctx context.Context, hours int) ([]models.HourlyCount, error) {
	query := `
		SELECT strftime('%Y-%m-%d %H:00:00', timestamp) AS hour, COUNT(*)
		FROM command_events
		WHERE timestamp >= ?
		GROUP BY hour
		ORDER BY hour ASC
	`

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	rows, err := db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly command counts: %w", err)
	}
	defer closeRows(rows)

	var out []models.HourlyCount
	for rows.Next() {
		var hourStr string
		var c models.HourlyCount
		if err := rows.Scan(&hourStr, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly command count: %w", err)
		}
		c.Hour, _ = time.ParseInLocation(timeLayout, hourStr, time.UTC)
		out = append(out, c)
	}

	return out, rows.Err()
}

// InsertPopulationSample records a population reading.
func (db *DB) InsertPopulationSample(ctx context.Context, s *models.PopulationSample) error {
	query := `
		INSERT INTO population_samples (timestamp, players, max_players)
		VALUES (?, ?, ?)
	`

	timestamp := s.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(ctx, query, formatTime(timestamp), s.Players, s.MaxPlayers)
	if err != nil {
		return fmt.Errorf("failed to insert population sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		s.ID = id
	}

	return nil
}

// PopulationSamplesSince returns readings at or after since, oldest first.
func (db *DB) PopulationSamplesSince(ctx context.Context, since time.Time) ([]models.PopulationSample, error) {
	query := `
		SELECT id, timestamp, players, max_players
		FROM population_samples
		WHERE timestamp >= ?
		ORDER BY timestamp ASC
	`

	rows, err := db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query population samples: %w", err)
	}
	defer closeRows(rows)

	var samples []models.PopulationSample
	for rows.Next() {
		var s models.PopulationSample
		var ts string
		if err := rows.Scan(&s.ID, &ts, &s.Players, &s.MaxPlayers); err != nil {
			return nil, fmt.Errorf("failed to scan population sample: %w", err)
		}
		s.Timestamp, _ = time.ParseInLocation(timeLayout, ts, time.UTC)
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// PruneBefore deletes events and samples older than before and returns the
// number of rows removed.
func (db *DB) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"command_events", "population_samples"} {
		// #nosec G202 - table names come from the fixed list above
		res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", formatTime(before))
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("failed to close rows", "error", err)
	}
}

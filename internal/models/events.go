package models

import "time"

// Command outcomes recorded in the event log.
const (
	OutcomeOK       = "ok"
	OutcomeRefused  = "refused"
	OutcomeNoData   = "no_data"
	OutcomeError    = "error"
	OutcomeCooldown = "cooldown"
)

// CommandEvent is one handled slash command.
type CommandEvent struct {
	ID        int64
	Timestamp time.Time
	Command   string
	GuildID   string
	GuildName string
	UserID    string
	Outcome   string
}

// PopulationSample is one stored server population reading.
type PopulationSample struct {
	ID         int64
	Timestamp  time.Time
	Players    int
	MaxPlayers int
}

// HourlyCount is the number of events in one clock hour.
type HourlyCount struct {
	Hour  time.Time
	Count int
}

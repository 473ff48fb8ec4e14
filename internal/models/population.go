package models

import (
	"cmp"
	"slices"
	"time"
)

// DateLayout is the layout of daily sample dates.
const DateLayout = "2006-01-02"

// HourlySample is one population reading.
type HourlySample struct {
	Timestamp time.Time `json:"timestamp"`
	Players   int       `json:"players"`
}

// DailySample is the end-of-day population reading for one local date.
type DailySample struct {
	Date    string `json:"date"`
	Players int    `json:"players"`
}

// PopulationHistory is the persisted population document.
type PopulationHistory struct {
	PeakAllTime      int            `json:"peak_alltime"`
	Peak24h          int            `json:"peak_24h"`
	Peak24hTimestamp *time.Time     `json:"peak_24h_timestamp"`
	Hourly           []HourlySample `json:"hourly_history"`
	Daily            []DailySample  `json:"daily_history"`
}

// Clone returns a deep copy.
func (p PopulationHistory) Clone() PopulationHistory {
	out := p
	out.Hourly = slices.Clone(p.Hourly)
	out.Daily = slices.Clone(p.Daily)
	if p.Peak24hTimestamp != nil {
		ts := *p.Peak24hTimestamp
		out.Peak24hTimestamp = &ts
	}
	return out
}

// PruneHourly drops samples older than window before now.
func (p *PopulationHistory) PruneHourly(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	p.Hourly = slices.DeleteFunc(p.Hourly, func(s HourlySample) bool {
		return s.Timestamp.Before(cutoff)
	})
}

// RecomputePeak24h sets Peak24h and its timestamp to the highest hourly
// sample. The earliest sample wins a tie. With no samples the peak is left alone.
func (p *PopulationHistory) RecomputePeak24h() {
	if len(p.Hourly) == 0 {
		return
	}
	best := p.Hourly[0]
	for _, s := range p.Hourly[1:] {
		if s.Players > best.Players {
			best = s
		}
	}
	p.Peak24h = best.Players
	ts := best.Timestamp
	p.Peak24hTimestamp = &ts
}

// RaisePeak lifts PeakAllTime to players and reports whether it moved.
func (p *PopulationHistory) RaisePeak(players int) bool {
	if players <= p.PeakAllTime {
		return false
	}
	p.PeakAllTime = players
	return true
}

// UpsertDaily records players under date, replacing an existing entry for
// that date, and keeps only the newest limit entries.
func (p *PopulationHistory) UpsertDaily(date string, players int, limit int) {
	p.Daily = slices.DeleteFunc(p.Daily, func(s DailySample) bool {
		return s.Date == date
	})
	p.Daily = append(p.Daily, DailySample{Date: date, Players: players})
	// ISO dates sort lexically
	slices.SortStableFunc(p.Daily, func(a, b DailySample) int {
		return cmp.Compare(a.Date, b.Date)
	})
	if limit > 0 && len(p.Daily) > limit {
		p.Daily = slices.Clone(p.Daily[len(p.Daily)-limit:])
	}
}

// Point is one (label, value) pair of a plotted series.
type Point struct {
	Label string
	Value float64
}

// HourlySeries returns the hourly samples as a plot series labelled HH:MM in loc.
func (p PopulationHistory) HourlySeries(loc *time.Location) []Point {
	out := make([]Point, 0, len(p.Hourly))
	for _, s := range p.Hourly {
		out = append(out, Point{Label: s.Timestamp.In(loc).Format("15:04"), Value: float64(s.Players)})
	}
	return out
}

// DailySeries returns the daily samples as a plot series labelled MM-DD.
func (p PopulationHistory) DailySeries() []Point {
	out := make([]Point, 0, len(p.Daily))
	for _, s := range p.Daily {
		label := s.Date
		if len(label) == len(DateLayout) {
			label = label[5:]
		}
		out = append(out, Point{Label: label, Value: float64(s.Players)})
	}
	return out
}

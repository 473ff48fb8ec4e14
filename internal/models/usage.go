package models

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/samber/lo"
)

// UsageCounters accumulates command usage over one window (a day or a year).
type UsageCounters struct {
	CommandCounts map[string]uint64
	ActiveGuilds  map[string]struct{}
	GuildUsage    map[string]uint64
	GuildNames    map[string]string
	Total         uint64
	WindowStart   time.Time
}

// NewUsageCounters returns empty counters starting at start.
func NewUsageCounters(start time.Time) *UsageCounters {
	return &UsageCounters{
		CommandCounts: make(map[string]uint64),
		ActiveGuilds:  make(map[string]struct{}),
		GuildUsage:    make(map[string]uint64),
		GuildNames:    make(map[string]string),
		WindowStart:   start,
	}
}

// Record counts one invocation. An empty guildID is a direct message and
// only touches the command counts.
func (u *UsageCounters) Record(command, guildID, guildName string) {
	u.CommandCounts[command]++
	u.Total++
	if guildID == "" {
		return
	}
	u.ActiveGuilds[guildID] = struct{}{}
	u.GuildUsage[guildID]++
	u.GuildNames[guildID] = guildName
}

// Clone returns a deep copy.
func (u *UsageCounters) Clone() *UsageCounters {
	return &UsageCounters{
		CommandCounts: maps.Clone(u.CommandCounts),
		ActiveGuilds:  maps.Clone(u.ActiveGuilds),
		GuildUsage:    maps.Clone(u.GuildUsage),
		GuildNames:    maps.Clone(u.GuildNames),
		Total:         u.Total,
		WindowStart:   u.WindowStart,
	}
}

// GuildName returns the last seen name of a guild.
func (u *UsageCounters) GuildName(id string) string {
	if name, ok := u.GuildNames[id]; ok && name != "" {
		return name
	}
	return "Unknown"
}

// TopCommands returns the n most used commands.
func (u *UsageCounters) TopCommands(n int) []Count {
	return TopN(u.CommandCounts, n)
}

// TopGuilds returns the n busiest guilds by ID.
func (u *UsageCounters) TopGuilds(n int) []Count {
	return TopN(u.GuildUsage, n)
}

// Count is one ranked key.
type Count struct {
	Key   string
	Value uint64
}

// TopN ranks counts descending with ties broken by key. n <= 0 returns all.
func TopN(counts map[string]uint64, n int) []Count {
	ranked := lo.Map(lo.Entries(counts), func(e lo.Entry[string, uint64], _ int) Count {
		return Count{Key: e.Key, Value: e.Value}
	})
	slices.SortFunc(ranked, func(a, b Count) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// YearlyDoc is the persisted form of the yearly counters.
type YearlyDoc struct {
	Year          int               `json:"year"`
	Commands      map[string]uint64 `json:"commands"`
	TotalCommands uint64            `json:"total_commands"`
	GuildUsage    map[string]uint64 `json:"guild_usage"`
	GuildNames    map[string]string `json:"guild_names"`
}

// NewYearlyDoc returns an empty document for year.
func NewYearlyDoc(year int) YearlyDoc {
	return YearlyDoc{
		Year:       year,
		Commands:   map[string]uint64{},
		GuildUsage: map[string]uint64{},
		GuildNames: map[string]string{},
	}
}

// Doc converts yearly counters to their persisted form.
func (u *UsageCounters) Doc(year int) YearlyDoc {
	return YearlyDoc{
		Year:          year,
		Commands:      maps.Clone(u.CommandCounts),
		TotalCommands: u.Total,
		GuildUsage:    maps.Clone(u.GuildUsage),
		GuildNames:    maps.Clone(u.GuildNames),
	}
}

// Counters rebuilds yearly counters from a loaded document. Missing maps are
// tolerated so that hand-edited or older files still load.
func (d YearlyDoc) Counters(start time.Time) *UsageCounters {
	u := NewUsageCounters(start)
	maps.Copy(u.CommandCounts, d.Commands)
	maps.Copy(u.GuildUsage, d.GuildUsage)
	maps.Copy(u.GuildNames, d.GuildNames)
	for id := range d.GuildUsage {
		u.ActiveGuilds[id] = struct{}{}
	}
	u.Total = d.TotalCommands
	return u
}

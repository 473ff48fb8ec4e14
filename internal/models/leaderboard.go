package models

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

// LeaderboardEntry is one row of any leaderboard the API serves. Which of
// Value, Balance and Playtime is populated depends on the board.
type LeaderboardEntry struct {
	Position *int64 `json:"position"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Value    Number `json:"value"`
	Balance  Number `json:"balance"`
	// Playtime is in milliseconds.
	Playtime Number `json:"playtimeSeconds"`
}

// Rank returns the entry's position, or the 1-based index when the API omits it.
func (e LeaderboardEntry) Rank(index int) int64 {
	if e.Position != nil {
		return *e.Position
	}
	return int64(index + 1)
}

// DisplayName returns the first non-empty player name.
func (e LeaderboardEntry) DisplayName() string {
	return firstNonEmpty(e.Username, e.Name, "Unknown")
}

// Leaderboard is a page of leaderboard entries.
type Leaderboard struct {
	Entries []LeaderboardEntry
}

// UnmarshalJSON accepts a bare array or an object wrapping the list under
// entries, leaderboard, players or results.
func (l *Leaderboard) UnmarshalJSON(data []byte) error {
	return decodeList(data, &l.Entries, "entries", "leaderboard", "players", "results")
}

// Clan is one row of the clan leaderboard.
type Clan struct {
	DisplayName    string `json:"displayName"`
	Name           string `json:"name"`
	ClanName       string `json:"clanName"`
	Level          Number `json:"level"`
	LeaderUsername string `json:"leaderUsername"`
	MemberCount    Number `json:"memberCount"`
}

// Title returns the first non-empty clan name.
func (c Clan) Title() string {
	return firstNonEmpty(c.DisplayName, c.Name, c.ClanName, "Unknown")
}

// ClanList is a page of clans.
type ClanList struct {
	Clans []Clan
}

// UnmarshalJSON accepts clans, entries or leaderboard as the wrapper key.
func (c *ClanList) UnmarshalJSON(data []byte) error {
	return decodeList(data, &c.Clans, "clans", "entries", "leaderboard")
}

// Guild is an in-game guild.
type Guild struct {
	DisplayName    string `json:"displayName"`
	Name           string `json:"name"`
	Level          Number `json:"level"`
	LeaderUsername string `json:"leaderUsername"`
	MemberCount    Number `json:"memberCount"`
	Description    string `json:"description"`
}

// Title returns the first non-empty guild name.
func (g Guild) Title() string {
	return firstNonEmpty(g.DisplayName, g.Name, "Unknown")
}

// GuildSearch is the result of a guild name search.
type GuildSearch struct {
	Guilds []Guild
}

// UnmarshalJSON accepts guilds or results as the wrapper key.
func (g *GuildSearch) UnmarshalJSON(data []byte) error {
	return decodeList(data, &g.Guilds, "guilds", "results")
}

// EconomyProfile holds a player's balances keyed by currency.
type EconomyProfile struct {
	Username string            `json:"username"`
	Balances map[string]Number `json:"balances"`
}

var errNotList = errors.New("response is neither a list nor a wrapped list")

// decodeList decodes data into out, which must point to a slice. The first
// wrapper key holding a non-empty list wins.
func decodeList[T any](data []byte, out *[]T, keys ...string) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, out)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	found := false
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		found = true
		if len(list) > 0 {
			*out = list
			return nil
		}
	}
	if !found {
		return errNotList
	}
	*out = nil
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

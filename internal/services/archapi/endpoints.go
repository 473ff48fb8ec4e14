package archapi

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/Archie-bot-stack/Archie/internal/models"
)

// Upstream names of the user-generated-content game modes.
const (
	ModeLifesteal = "trojan"
	ModeSurvival  = "spartan"
)

// PlayerStatistics returns a player's statistics in a UGC mode.
func (c *Client) PlayerStatistics(ctx context.Context, mode, username string) *models.PlayerStatistics {
	var out models.PlayerStatistics
	path := fmt.Sprintf("/v1/ugc/%s/players/username/%s/statistics", mode, url.PathEscape(username))
	if !c.Fetch(ctx, path, &out) {
		return nil
	}
	return &out
}

// PlayerProfile returns a player's profile in a UGC mode.
func (c *Client) PlayerProfile(ctx context.Context, mode, username string) *models.Profile {
	var out models.Profile
	path := fmt.Sprintf("/v1/ugc/%s/players/username/%s/profile", mode, url.PathEscape(username))
	if !c.Fetch(ctx, path, &out) {
		return nil
	}
	return &out
}

// PlayerStat returns one statistic of a player. The record is only returned
// when the API answers with an object carrying a value.
func (c *Client) PlayerStat(ctx context.Context, mode, username, stat string) (models.StatRecord, bool) {
	var raw json.RawMessage
	path := fmt.Sprintf("/v1/ugc/%s/players/username/%s/statistics/%s",
		mode, url.PathEscape(username), url.PathEscape(stat))
	if !c.Fetch(ctx, path, &raw) {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	if v, ok := fields["value"]; !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return models.DecodeStatRecord(raw)
}

// Leaderboard returns one page of a UGC mode leaderboard.
func (c *Client) Leaderboard(ctx context.Context, mode, stat string, page, size int) *models.Leaderboard {
	var out models.Leaderboard
	path := fmt.Sprintf("/v1/ugc/%s/leaderboard/%s?page=%d&size=%d", mode, url.PathEscape(stat), page, size)
	if !c.Fetch(ctx, path, &out) {
		return nil
	}
	return &out
}

// Clans returns the top ten lifesteal clans.
func (c *Client) Clans(ctx context.Context) *models.ClanList {
	var out models.ClanList
	if !c.Fetch(ctx, "/v1/ugc/"+ModeLifesteal+"/clans?page=0&size=10", &out) {
		return nil
	}
	return &out
}

// GlobalLeaderboard returns the top ten of a network-wide leaderboard such as
// "elo:nodebuff:ranked:lifetime".
func (c *Client) GlobalLeaderboard(ctx context.Context, statID string) *models.Leaderboard {
	var out models.Leaderboard
	if !c.Fetch(ctx, "/v1/leaderboards/"+url.PathEscape(statID)+"?page=0&size=10", &out) {
		return nil
	}
	return &out
}

// GlobalStatistics returns a player's network-wide statistics (duels and others).
func (c *Client) GlobalStatistics(ctx context.Context, username string) *models.PlayerStatistics {
	var out models.PlayerStatistics
	if !c.Fetch(ctx, "/v1/players/username/"+url.PathEscape(username)+"/statistics", &out) {
		return nil
	}
	return &out
}

// Economy returns a player's balances.
func (c *Client) Economy(ctx context.Context, username string) *models.EconomyProfile {
	var out models.EconomyProfile
	if !c.Fetch(ctx, "/v1/economy/player/username/"+url.PathEscape(username), &out) {
		return nil
	}
	return &out
}

// Baltop returns the richest players for a currency or experience type.
func (c *Client) Baltop(ctx context.Context, kind string) *models.Leaderboard {
	var out models.Leaderboard
	if !c.Fetch(ctx, "/v1/economy/baltop/"+url.PathEscape(kind), &out) {
		return nil
	}
	return &out
}

// PlayerGuild returns the guild a player belongs to.
func (c *Client) PlayerGuild(ctx context.Context, username string) *models.Guild {
	var out models.Guild
	if !c.Fetch(ctx, "/v1/guilds/player/username/"+url.PathEscape(username), &out) {
		return nil
	}
	return &out
}

// SearchGuilds finds guilds by name.
func (c *Client) SearchGuilds(ctx context.Context, query string) *models.GuildSearch {
	var out models.GuildSearch
	if !c.Fetch(ctx, "/v1/guilds/search/name?q="+url.QueryEscape(query), &out) {
		return nil
	}
	return &out
}

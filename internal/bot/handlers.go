package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/render"
	"github.com/Archie-bot-stack/Archie/internal/report"
	"github.com/Archie-bot-stack/Archie/internal/services/archapi"
)

const leaderboardSize = 10

// reply is what a command answers with after deferring.
type reply struct {
	content string
	embed   *discordgo.MessageEmbed
	files   []report.Attachment
	noData  bool
}

func noData(content string) reply {
	return reply{content: content, noData: true}
}

// handlerFunc runs a command after the guard has let it through.
type handlerFunc func(ctx context.Context, in *invocation) (reply, error)

// command couples a handler with its pre-defer checks.
type command struct {
	// usernames are options sanitized as Minecraft usernames.
	usernames []string
	// check runs after the username checks and returns a refusal or "".
	check func(in *invocation) string
	// failure is the object in "Failed to fetch <failure>. Please try again later."
	failure string
	// extra lists options copied into error reports.
	extra []string
	// free commands skip the cooldown.
	free bool
	run  handlerFunc
}

func (b *Bot) commandTable() map[string]*command {
	return map[string]*command{
		"stat":        {usernames: []string{"username"}, failure: "stats", extra: []string{"mode", "username"}, run: b.stat},
		"lifestat":    {usernames: []string{"username"}, failure: "stat", extra: []string{"username", "stat"}, run: b.lifestat},
		"lifetop":     {failure: "leaderboard", extra: []string{"stat"}, run: b.lifetop},
		"clantop":     {failure: "clan leaderboard", run: b.clantop},
		"dueltop":     {failure: "duel leaderboard", extra: []string{"statid"}, run: b.dueltop},
		"duelstats":   {usernames: []string{"username"}, failure: "duel stats", extra: []string{"username"}, run: b.duelstats},
		"balance":     {usernames: []string{"username"}, failure: "balance", extra: []string{"username", "gamemode"}, run: b.balance},
		"baltop":      {failure: "baltop leaderboard", extra: []string{"type"}, run: b.baltop},
		"playtime":    {failure: "playtime leaderboard", extra: []string{"mode"}, run: b.playtime},
		"guild":       {usernames: []string{"username"}, failure: "guild info", extra: []string{"username"}, run: b.guild},
		"guildsearch": {check: checkQuery, failure: "guild search", extra: []string{"query"}, run: b.guildsearch},
		"compare":     {usernames: []string{"player1", "player2"}, failure: "player comparison", extra: []string{"player1", "player2", "mode"}, run: b.compare},
		"stats":       {failure: "server stats", run: b.serverStats},
		"help":        {failure: "help", free: true, run: b.help},
		"invite":      {failure: "invite", free: true, run: b.invite},
	}
}

func checkQuery(in *invocation) string {
	q, ok := SanitizeQuery(in.options["query"])
	if !ok {
		return msgShortQuery
	}
	in.options["query"] = q
	return ""
}

// render runs fn on the render pool.
func (b *Bot) render(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	return b.deps.Pool.Do(ctx, fn)
}

func (b *Bot) stat(ctx context.Context, in *invocation) (reply, error) {
	username := in.options["username"]
	if in.options["mode"] == "duels" {
		data := b.deps.API.GlobalStatistics(ctx, username)
		if data == nil {
			return noData("No duel stats found for that player."), nil
		}
		png, err := b.duelCard(ctx, username, data)
		if err != nil {
			return reply{}, err
		}
		return reply{files: []report.Attachment{{Name: "duelstats.png", Data: png}}}, nil
	}

	var (
		stats   *models.PlayerStatistics
		profile *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats = b.deps.API.PlayerStatistics(gctx, archapi.ModeLifesteal, username)
		return nil
	})
	g.Go(func() error {
		profile = b.deps.API.PlayerProfile(gctx, archapi.ModeLifesteal, username)
		return nil
	})
	_ = g.Wait()

	if stats == nil {
		return noData("No stats found for that player."), nil
	}

	card := render.PlayerCard{
		Username: stats.DisplayName(username),
		Avatar:   b.deps.API.Avatar(ctx, stats.UUID),
		Stats:    stats.Statistics,
		Corner:   &render.Corner{Label: "Playtime", Value: render.FormatPlaytime(profile.PlaytimeHours())},
	}
	png, err := b.render(ctx, func() ([]byte, error) {
		return b.deps.Cards.PlayerCard(render.LifestealCard, card)
	})
	if err != nil {
		return reply{}, fmt.Errorf("render lifesteal card: %w", err)
	}
	return reply{files: []report.Attachment{{Name: "lifestats.png", Data: png}}}, nil
}

func (b *Bot) duelCard(ctx context.Context, username string, data *models.PlayerStatistics) ([]byte, error) {
	card := render.PlayerCard{
		Username: data.DisplayName(username),
		Avatar:   b.deps.API.Avatar(ctx, data.UUID),
		Stats:    data.Statistics,
	}
	png, err := b.render(ctx, func() ([]byte, error) {
		return b.deps.Cards.PlayerCard(render.DuelCard, card)
	})
	if err != nil {
		return nil, fmt.Errorf("render duel card: %w", err)
	}
	return png, nil
}

func (b *Bot) duelstats(ctx context.Context, in *invocation) (reply, error) {
	username := in.options["username"]
	data := b.deps.API.GlobalStatistics(ctx, username)
	if data == nil {
		return noData("No duel stats found for that player."), nil
	}
	png, err := b.duelCard(ctx, username, data)
	if err != nil {
		logger.Error("Falling back to duel stats embed", "username", username, "error", err)
		return reply{embed: duelFallbackEmbed(data.DisplayName(username), data.Statistics)}, nil
	}
	return reply{files: []report.Attachment{{Name: "duelstats.png", Data: png}}}, nil
}

func (b *Bot) lifestat(ctx context.Context, in *invocation) (reply, error) {
	username, stat := in.options["username"], in.options["stat"]
	if rec, ok := b.deps.API.PlayerStat(ctx, archapi.ModeLifesteal, username, stat); ok {
		return reply{embed: lifestatEmbed(stat, username, rec)}, nil
	}

	stats := b.deps.API.PlayerStatistics(ctx, archapi.ModeLifesteal, username)
	if stats != nil {
		if rec, ok := stats.Statistics[stat]; ok {
			return reply{embed: lifestatEmbed(stat, username, rec)}, nil
		}
	}
	return noData("No data found for that player/stat."), nil
}

func (b *Bot) lifetop(ctx context.Context, in *invocation) (reply, error) {
	stat := in.options["stat"]
	lb := b.deps.API.Leaderboard(ctx, archapi.ModeLifesteal, stat, 0, leaderboardSize)
	if lb == nil || len(lb.Entries) == 0 {
		return noData("No leaderboard data found."), nil
	}
	return reply{embed: lifetopEmbed(stat, lb)}, nil
}

func (b *Bot) clantop(ctx context.Context, _ *invocation) (reply, error) {
	clans := b.deps.API.Clans(ctx)
	if clans == nil || len(clans.Clans) == 0 {
		return noData("No clan leaderboard data found."), nil
	}
	return reply{embed: clantopEmbed(clans.Clans)}, nil
}

func (b *Bot) dueltop(ctx context.Context, in *invocation) (reply, error) {
	statID := in.options["statid"]
	lb := b.deps.API.GlobalLeaderboard(ctx, statID)
	if lb == nil || len(lb.Entries) == 0 {
		return noData("No duel leaderboard data found."), nil
	}
	return reply{embed: dueltopEmbed(statID, lb)}, nil
}

func (b *Bot) balance(ctx context.Context, in *invocation) (reply, error) {
	username, gamemode := in.options["username"], in.options["gamemode"]
	if _, ok := balanceTypes[gamemode]; !ok {
		return noData("Invalid gamemode selected."), nil
	}
	profile := b.deps.API.Economy(ctx, username)
	if profile == nil {
		return noData(fmt.Sprintf("No balance profile found for **%s**.", username)), nil
	}
	if len(profile.Balances) == 0 {
		return noData(fmt.Sprintf("No balance data found for %s.", username)), nil
	}
	return reply{embed: balanceEmbed(gamemode, username, profile.Balances)}, nil
}

func (b *Bot) baltop(ctx context.Context, in *invocation) (reply, error) {
	kind := in.options["type"]
	lb := b.deps.API.Baltop(ctx, kind)
	if lb == nil || len(lb.Entries) == 0 {
		return noData("No baltop data found for that type."), nil
	}
	return reply{embed: baltopEmbed(kind, lb)}, nil
}

func (b *Bot) playtime(ctx context.Context, in *invocation) (reply, error) {
	mode := in.options["mode"]
	upstream := archapi.ModeSurvival
	if mode == "lifesteal" {
		upstream = archapi.ModeLifesteal
	}
	lb := b.deps.API.Leaderboard(ctx, upstream, "playtime", 0, leaderboardSize)
	if lb == nil || len(lb.Entries) == 0 {
		return noData("No leaderboard data found."), nil
	}
	return reply{embed: playtimeEmbed(mode, lb)}, nil
}

func (b *Bot) guild(ctx context.Context, in *invocation) (reply, error) {
	username := in.options["username"]
	g := b.deps.API.PlayerGuild(ctx, username)
	if g == nil || (g.DisplayName == "" && g.Name == "") {
		return noData(fmt.Sprintf("**%s** is not in a guild.", username)), nil
	}
	return reply{embed: guildEmbed(username, g)}, nil
}

func (b *Bot) guildsearch(ctx context.Context, in *invocation) (reply, error) {
	query := in.options["query"]
	res := b.deps.API.SearchGuilds(ctx, query)
	if res == nil || len(res.Guilds) == 0 {
		return noData(fmt.Sprintf("No guilds found matching **%s**.", query)), nil
	}
	return reply{embed: guildSearchEmbed(query, res.Guilds)}, nil
}

func (b *Bot) compare(ctx context.Context, in *invocation) (reply, error) {
	p1, p2, mode := in.options["player1"], in.options["player2"], in.options["mode"]
	fetch := func(ctx context.Context, username string) *models.PlayerStatistics {
		if mode == "duels" {
			return b.deps.API.GlobalStatistics(ctx, username)
		}
		return b.deps.API.PlayerStatistics(ctx, archapi.ModeLifesteal, username)
	}

	var s1, s2 *models.PlayerStatistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s1 = fetch(gctx, p1); return nil })
	g.Go(func() error { s2 = fetch(gctx, p2); return nil })
	_ = g.Wait()

	if s1 == nil {
		return noData(fmt.Sprintf("Could not find stats for **%s**.", p1)), nil
	}
	if s2 == nil {
		return noData(fmt.Sprintf("Could not find stats for **%s**.", p2)), nil
	}
	return reply{embed: compareEmbed(mode, p1, p2, s1.Statistics, s2.Statistics)}, nil
}

func (b *Bot) serverStats(ctx context.Context, _ *invocation) (reply, error) {
	rep := b.deps.Population.Query(ctx)
	hist := b.deps.Population.History()

	card, err := b.render(ctx, func() ([]byte, error) {
		return b.deps.Cards.ServerStats(render.ServerCard{Report: rep, At: time.Now()})
	})
	if err != nil {
		return reply{}, fmt.Errorf("render server card: %w", err)
	}
	out := reply{files: []report.Attachment{{Name: "serverstats.png", Data: card}}}

	series := render.PickSeries(hist.HourlySeries(b.deps.Location), hist.DailySeries())
	chart, err := b.render(ctx, func() ([]byte, error) {
		return b.deps.Cards.LineChart(series, "ArchMC Player Count")
	})
	if err != nil {
		logger.Warn("Population chart unavailable", "error", err)
	} else if len(chart) > 0 {
		out.files = append(out.files, report.Attachment{Name: "population.png", Data: chart})
	}
	return out, nil
}

func (b *Bot) help(context.Context, *invocation) (reply, error) {
	return reply{embed: helpEmbed()}, nil
}

func (b *Bot) invite(_ context.Context, in *invocation) (reply, error) {
	return reply{embed: inviteEmbed(in.botAvatarURL)}, nil
}

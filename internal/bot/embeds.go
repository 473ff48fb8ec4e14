package bot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/render"
	"github.com/Archie-bot-stack/Archie/internal/report"
)

const (
	inviteURL  = "https://discord.com/oauth2/authorize?client_id=1454187186651009116&permissions=6144&scope=bot%20applications.commands"
	supportURL = "https://discord.gg/pzSYrhBCA5"
)

var statEmojis = map[string]string{
	"kills":          "⚔️",
	"deaths":         "💀",
	"killstreak":     "🔥",
	"killDeathRatio": "📊",
	"blocksMined":    "⛏️",
	"blocksWalked":   "🚶",
	"blocksPlaced":   "🧱",
}

// titleCase upper-cases the first letter of each word and lowers the rest.
// A Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// dashTitle turns "lifesteal-coins" into "Lifesteal Coins".
func dashTitle(s string) string {
	return titleCase(strings.ReplaceAll(s, "-", " "))
}

func footer(text string) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: text}
}

func inline(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true}
}

// rankedLines renders "**#pos** name — `value`" for each entry.
func rankedLines(entries []models.LeaderboardEntry, value func(models.LeaderboardEntry) string) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("**#%d** %s — `%s`", e.Rank(i), e.DisplayName(), value(e))
	}
	return strings.Join(lines, "\n")
}

func entryValue(e models.LeaderboardEntry) string   { return e.Value.String() }
func entryBalance(e models.LeaderboardEntry) string { return e.Balance.String() }

func lifetopEmbed(stat string, lb *models.Leaderboard) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🏆 Lifesteal Top " + titleCase(stat),
		Description: rankedLines(lb.Entries, entryValue),
		Color:       report.ColorRed,
		Footer:      footer("ArchMC Lifesteal • Official API"),
	}
}

func lifestatEmbed(stat, username string, rec models.StatRecord) *discordgo.MessageEmbed {
	emoji, ok := statEmojis[stat]
	if !ok {
		emoji = "📈"
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s — %s", emoji, titleCase(stat), username),
		Description: fmt.Sprintf("**%s**", models.StatValue(rec)),
		Color:       report.ColorRed,
		Footer:      footer("ArchMC Lifesteal • Official API"),
	}
	if pos, ok := models.StatPosition(rec); ok {
		embed.Fields = append(embed.Fields, inline("Rank", fmt.Sprintf("`#%s`", humanize.Comma(pos))))
	}
	if p, ok := models.StatPercentile(rec); ok {
		embed.Fields = append(embed.Fields, inline("Percentile", fmt.Sprintf("Top %.2f%%", 100-p)))
	}
	if n, ok := models.StatTotalPlayers(rec); ok {
		embed.Fields = append(embed.Fields, inline("Total Players", fmt.Sprintf("`%s`", humanize.Comma(n))))
	}
	return embed
}

func clantopEmbed(clans []models.Clan) *discordgo.MessageEmbed {
	lines := make([]string, len(clans))
	for i, c := range clans {
		leader := c.LeaderUsername
		if leader == "" {
			leader = "Unknown"
		}
		lines[i] = fmt.Sprintf("**#%d %s** — Level %d | Leader: %s | Members: %s",
			i+1, c.Title(), c.Level.Int64(), leader, c.MemberCount)
	}
	return &discordgo.MessageEmbed{
		Title:       "🏅 Top Clans",
		Description: strings.Join(lines, "\n"),
		Color:       report.ColorGold,
		Footer:      footer("ArchMC Clans • Official API"),
	}
}

func dueltopEmbed(statID string, lb *models.Leaderboard) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🥊 Duel Top: " + statID,
		Description: rankedLines(lb.Entries, entryValue),
		Color:       report.ColorBlue,
		Footer:      footer("ArchMC Duels • Official API"),
	}
}

// duelFallbackEmbed stands in for the duel card when rendering fails.
func duelFallbackEmbed(username string, stats models.Statistics) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  "🥊 Duel Stats for " + username,
		Color:  report.ColorBlue,
		Footer: footer("ArchMC Duels • Official API"),
	}
	for _, key := range []string{render.KeyNoDebuffElo, render.KeySumoElo, render.KeyBridgeElo} {
		mode := strings.Split(key, ":")[1]
		embed.Fields = append(embed.Fields, inline(titleCase(mode)+" ELO", fmt.Sprintf("`%s`", stats.Value(key))))
	}
	return embed
}

// balanceTypes maps a gamemode choice to its upstream currency.
var balanceTypes = map[string]string{
	"lifesteal": "lifesteal-coins",
	"survival":  "gems",
	"bedwars":   "bedwars-coins",
	"kitpvp":    "kitpvp-coins",
	"skywars":   "skywars-coins",
}

// balanceEmbed shows the gamemode's currency, or every balance when the
// player has none in that currency.
func balanceEmbed(gamemode, username string, balances map[string]models.Number) *discordgo.MessageEmbed {
	if bal, ok := balances[balanceTypes[gamemode]]; ok {
		mode := titleCase(gamemode)
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("💰 %s Balance for %s", mode, username),
			Description: fmt.Sprintf("**%s**", render.FormatGrouped(bal)),
			Color:       report.ColorGold,
			Footer:      footer(fmt.Sprintf("ArchMC %s • Official API", mode)),
		}
	}

	keys := make([]string, 0, len(balances))
	for k := range balances {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("**%s**: `%s`", dashTitle(k), render.FormatGrouped(balances[k]))
	}
	return &discordgo.MessageEmbed{
		Title:       "💰 All Balances for " + username,
		Description: strings.Join(lines, "\n"),
		Color:       report.ColorGold,
		Footer:      footer("ArchMC Economy • Official API"),
	}
}

func baltopEmbed(kind string, lb *models.Leaderboard) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🏦 Baltop Leaderboard: " + dashTitle(kind),
		Description: rankedLines(lb.Entries, entryBalance),
		Color:       report.ColorGold,
		Footer:      footer("ArchMC Baltop • Official API"),
	}
}

func playtimeEmbed(mode string, lb *models.Leaderboard) *discordgo.MessageEmbed {
	color := report.ColorGreen
	if mode == "lifesteal" {
		color = report.ColorRed
	}
	name := titleCase(mode)
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⏱️ %s Playtime Top", name),
		Description: rankedLines(lb.Entries, func(e models.LeaderboardEntry) string {
			return fmt.Sprintf("%d hours", models.MillisToHours(e.Playtime))
		}),
		Color:  color,
		Footer: footer(fmt.Sprintf("ArchMC %s • Official API", name)),
	}
}

func guildEmbed(username string, g *models.Guild) *discordgo.MessageEmbed {
	desc := render.Truncate(g.Description, 200)
	if desc == "" {
		desc = "No description"
	}
	leader := g.LeaderUsername
	if leader == "" {
		leader = "Unknown"
	}
	return &discordgo.MessageEmbed{
		Title:       "🏰 " + g.Title(),
		Description: desc,
		Color:       report.ColorPurple,
		Fields: []*discordgo.MessageEmbedField{
			inline("Level", fmt.Sprintf("`%d`", g.Level.Int64())),
			inline("Leader", fmt.Sprintf("`%s`", leader)),
			inline("Members", fmt.Sprintf("`%s`", g.MemberCount)),
		},
		Footer: footer(fmt.Sprintf("Guild of %s • ArchMC", username)),
	}
}

func guildSearchEmbed(query string, guilds []models.Guild) *discordgo.MessageEmbed {
	shown := guilds[:min(len(guilds), 10)]
	lines := make([]string, len(shown))
	for i, g := range shown {
		lines[i] = fmt.Sprintf("**%s** — Level %d | %s members", g.Title(), g.Level.Int64(), g.MemberCount)
	}
	return &discordgo.MessageEmbed{
		Title:       "🔍 Guild Search: " + query,
		Description: strings.Join(lines, "\n"),
		Color:       report.ColorBlue,
		Footer:      footer(fmt.Sprintf("Found %d guild(s) • ArchMC", len(guilds))),
	}
}

type compared struct {
	label string
	key   string
}

var (
	lifestealCompare = []compared{
		{"Kills", "kills"}, {"Deaths", "deaths"}, {"K/D", "killDeathRatio"}, {"Best Streak", "killstreak"},
	}
	duelsCompare = []compared{
		{"NoDebuff ELO", render.KeyNoDebuffElo}, {"Sumo ELO", render.KeySumoElo},
		{"Bridge ELO", render.KeyBridgeElo}, {"NoDebuff Wins", render.KeyNoDebuffWins},
	}
)

// compareLine bolds the higher of the two values.
func compareLine(a, b models.Number) string {
	switch a.Compare(b) {
	case 1:
		return fmt.Sprintf("**%s** vs %s", a, b)
	case -1:
		return fmt.Sprintf("%s vs **%s**", a, b)
	default:
		return fmt.Sprintf("%s vs %s", a, b)
	}
}

func compareEmbed(mode, p1, p2 string, s1, s2 models.Statistics) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ Lifesteal Compare",
		Description: fmt.Sprintf("**%s** vs **%s**", p1, p2),
		Color:       report.ColorRed,
		Footer:      footer("ArchMC Lifesteal • Bold = higher"),
	}
	rows := lifestealCompare
	if mode == "duels" {
		embed.Title = "🥊 Duels Compare"
		embed.Color = report.ColorBlue
		embed.Footer = footer("ArchMC Duels • Bold = higher")
		rows = duelsCompare
	}
	for _, r := range rows {
		embed.Fields = append(embed.Fields, inline(r.label, compareLine(s1.Value(r.key), s2.Value(r.key))))
	}
	return embed
}

func inviteEmbed(avatarURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Invite Archie to your server!",
		Description: fmt.Sprintf("➕ [Click here to invite Archie](%s)\n💬 [Join the support server](%s)\n\n"+
			"Add Archie to your server and join our support community for help and updates.", inviteURL, supportURL),
		Color:  report.ColorBlurple,
		Footer: footer("Thank you for supporting Archie!"),
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return embed
}

var helpEntries = [][2]string{
	{"/playtime", "⏱️ Show the playtime leaderboard for Lifesteal or Survival."},
	{"/stats", "📊 Show the server status, player peaks and population history."},
	{"/lifetop", "🏆 Show the top players for a selected Lifesteal stat."},
	{"/stat", "🎴 Show a player stats card for Lifesteal or Duels."},
	{"/lifestat", "📈 Show a specific Lifesteal stat for a player, with value, rank, and percentile."},
	{"/dueltop", "🥊 Show the top players for a selected Duel stat (ELO or Wins)."},
	{"/duelstats", "🥊 Show a player's duel stats card."},
	{"/balance", "💰 Show a player's balance for a selected gamemode."},
	{"/baltop", "🏦 Show the baltop leaderboard for a selected currency or experience type."},
	{"/clantop", "🏅 Show the top clans from ArchMC."},
	{"/guild", "🏰 Show what guild a player is in."},
	{"/guildsearch", "🔍 Search for guilds by name."},
	{"/compare", "⚔️ Compare two players' stats (Lifesteal or Duels)."},
	{"/invite", "➕ Get the invite link for Archie and the support server."},
}

func helpEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Archie Help",
		Description: "**Here are all available commands:**",
		Color:       report.ColorBlurple,
		Footer:      footer("More commands and features coming soon! | Archie by ArchMC"),
	}
	for _, e := range helpEntries {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: e[0], Value: e[1]})
	}
	return embed
}

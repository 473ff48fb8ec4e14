package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Archie-bot-stack/Archie/internal/render"
)

var (
	lifestealStats = []string{"kills", "deaths", "killstreak", "killDeathRatio", "blocksMined", "blocksWalked", "blocksPlaced"}
	duelStatIDs    = []string{
		render.KeyNoDebuffElo, render.KeySumoElo, render.KeyBridgeElo,
		render.KeyNoDebuffWins, render.KeySumoWins, render.KeyBridgeWins,
	}
	balanceModes = []string{"lifesteal", "survival", "bedwars", "kitpvp", "skywars"}
	baltopTypes  = []string{
		"lifesteal-coins", "bedwars-coins", "kitpvp-coins", "gems",
		"bedwars-experience", "skywars-coins", "skywars-experience",
	}
	playtimeModes = []string{"lifesteal", "survival"}
	statModes     = []string{"lifesteal", "duels"}
)

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(values))
	for i, v := range values {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v}
	}
	return out
}

func stringOption(name, description string, values ...string) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
	if len(values) > 0 {
		opt.Choices = choices(values...)
	}
	return opt
}

func usernameOption(name, description string) *discordgo.ApplicationCommandOption {
	return stringOption(name, description)
}

// definitions is the slash command set registered with Discord.
func definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "stat",
			Description: "Show player stats card for any gamemode",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("mode", "Select the gamemode", statModes...),
				usernameOption("username", "Minecraft username"),
			},
		},
		{
			Name:        "lifestat",
			Description: "Show a specific Lifesteal stat for a player",
			Options: []*discordgo.ApplicationCommandOption{
				usernameOption("username", "Minecraft username"),
				stringOption("stat", "Select the statistic", lifestealStats...),
			},
		},
		{
			Name:        "lifetop",
			Description: "Show the top players for a selected Lifesteal stat",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("stat", "Select the statistic", lifestealStats...)},
		},
		{
			Name:        "clantop",
			Description: "Show the top clans from ArchMC",
		},
		{
			Name:        "dueltop",
			Description: "Show the top players for a selected Duel stat",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("statid", "Select the duel stat", duelStatIDs...)},
		},
		{
			Name:        "duelstats",
			Description: "Show all duel stats for a player",
			Options:     []*discordgo.ApplicationCommandOption{usernameOption("username", "Minecraft username")},
		},
		{
			Name:        "balance",
			Description: "Show a player's balance for a selected gamemode",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("gamemode", "Select the gamemode", balanceModes...),
				usernameOption("username", "Minecraft username"),
			},
		},
		{
			Name:        "baltop",
			Description: "Show the baltop leaderboard for a selected type",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("type", "Select the baltop type", baltopTypes...)},
		},
		{
			Name:        "playtime",
			Description: "Show the playtime leaderboard for a selected mode",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("mode", "Select the server mode", playtimeModes...)},
		},
		{
			Name:        "guild",
			Description: "Show what guild a player is in",
			Options:     []*discordgo.ApplicationCommandOption{usernameOption("username", "Minecraft username")},
		},
		{
			Name:        "guildsearch",
			Description: "Search for guilds by name",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("query", "Guild name to search")},
		},
		{
			Name:        "compare",
			Description: "Compare two players' stats side by side",
			Options: []*discordgo.ApplicationCommandOption{
				usernameOption("player1", "First player username"),
				usernameOption("player2", "Second player username"),
				stringOption("mode", "Game mode to compare", statModes...),
			},
		},
		{
			Name:        "stats",
			Description: "Show ArchMC server stats and player peaks",
		},
		{
			Name:        "help",
			Description: "Show help for Archie commands",
		},
		{
			Name:        "invite",
			Description: "Get the invite link for Archie",
		},
	}
}

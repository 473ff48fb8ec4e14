package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/render"
)

// Embed colours.
const (
	ColorBlurple = 0x5865F2
	ColorGold    = 0xF1C40F
	ColorRed     = 0xE74C3C
	ColorBlue    = 0x3498DB
	ColorGreen   = 0x2ECC71
	ColorPurple  = 0x9B59B6
)

// Attachment file names referenced from embeds.
const (
	DailyChartName   = "daily_stats.png"
	WrappedChartName = "wrapped.png"
)

// ChartRenderer draws the recap bar charts.
type ChartRenderer interface {
	BarChart(counts map[string]uint64, opts render.BarOptions) ([]byte, error)
}

// Publisher posts the daily recap and the yearly wrapped to the stats
// destination.
type Publisher struct {
	sender    Sender
	channelID string
	charts    ChartRenderer
	pool      *render.Pool
}

// NewPublisher returns a publisher rendering charts on pool.
func NewPublisher(sender Sender, channelID string, charts ChartRenderer, pool *render.Pool) *Publisher {
	return &Publisher{sender: sender, channelID: channelID, charts: charts, pool: pool}
}

// DailyRecap posts today's counters with a usage chart when there is usage.
func (p *Publisher) DailyRecap(ctx context.Context, daily *models.UsageCounters) error {
	date := daily.WindowStart.Format("2006-01-02")
	msg := Message{Embed: DailyRecapEmbed(daily)}
	chart := p.chart(ctx, daily.CommandCounts, render.BarOptions{
		Title: "Daily Command Usage - " + date,
		Color: render.Blurple,
	})
	attach(&msg, DailyChartName, chart)

	if err := p.sender.Send(ctx, p.channelID, msg); err != nil {
		return fmt.Errorf("publish daily recap: %w", err)
	}
	return nil
}

// Wrapped posts the year in review.
func (p *Publisher) Wrapped(ctx context.Context, year int, yearly *models.UsageCounters) error {
	msg := Message{Embed: WrappedEmbed(year, yearly)}
	chart := p.chart(ctx, yearly.CommandCounts, render.BarOptions{
		Title:   fmt.Sprintf("Archie Wrapped %d", year),
		TopN:    10,
		Viridis: true,
	})
	attach(&msg, WrappedChartName, chart)

	if err := p.sender.Send(ctx, p.channelID, msg); err != nil {
		return fmt.Errorf("publish wrapped %d: %w", year, err)
	}
	return nil
}

// chart renders on the pool. A failed chart is logged and the recap goes
// out without it.
func (p *Publisher) chart(ctx context.Context, counts map[string]uint64, opts render.BarOptions) []byte {
	png, err := p.pool.Do(ctx, func() ([]byte, error) {
		return p.charts.BarChart(counts, opts)
	})
	if err != nil {
		logger.Warn("Failed to render recap chart", "title", opts.Title, "error", err)
		return nil
	}
	return png
}

func attach(msg *Message, name string, png []byte) {
	if len(png) == 0 {
		return
	}
	msg.File = &Attachment{Name: name, Data: png}
	msg.Embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + name}
}

// DailyRecapEmbed builds the daily recap embed.
func DailyRecapEmbed(daily *models.UsageCounters) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📈 Daily Stats Recap",
		Description: fmt.Sprintf("Stats for **%s**", daily.WindowStart.Format("2006-01-02")),
		Color:       ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Commands", Value: fmt.Sprintf("`%d`", daily.Total), Inline: true},
			{Name: "Active Servers", Value: fmt.Sprintf("`%d`", len(daily.ActiveGuilds)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Archie Daily Stats • Updates every 5 min"},
	}

	if top := daily.TopCommands(5); len(top) > 0 {
		lines := make([]string, len(top))
		for i, c := range top {
			lines[i] = fmt.Sprintf("`/%s` — %d", c.Key, c.Value)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Top Commands", Value: strings.Join(lines, "\n")})
	}
	if top := daily.TopGuilds(5); len(top) > 0 {
		lines := make([]string, len(top))
		for i, g := range top {
			lines[i] = fmt.Sprintf("**%s** — %d commands", daily.GuildName(g.Key), g.Value)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Top Servers", Value: strings.Join(lines, "\n")})
	}
	return embed
}

// WrappedEmbed builds the yearly wrapped embed.
func WrappedEmbed(year int, yearly *models.UsageCounters) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 Archie Wrapped %d 🎉", year),
		Description: "Here's your year in review!",
		Color:       ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📊 Total Commands", Value: fmt.Sprintf("`%s`", humanize.Comma(int64(yearly.Total))), Inline: true},
			{Name: "🌐 Servers Reached", Value: fmt.Sprintf("`%d`", len(yearly.GuildUsage)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Thank you for an amazing %d! 💜", year)},
	}

	if top := yearly.TopCommands(5); len(top) > 0 {
		lines := make([]string, len(top))
		for i, c := range top {
			lines[i] = fmt.Sprintf("**%d.** `/%s` — %s uses", i+1, c.Key, humanize.Comma(int64(c.Value)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🏆 Top Commands", Value: strings.Join(lines, "\n")})
	}
	if top := yearly.TopGuilds(5); len(top) > 0 {
		lines := make([]string, len(top))
		for i, g := range top {
			lines[i] = fmt.Sprintf("**%d.** %s — %s commands", i+1, yearly.GuildName(g.Key), humanize.Comma(int64(g.Value)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🏅 Top Servers", Value: strings.Join(lines, "\n")})
	}
	return embed
}

package usage

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/Archie-bot-stack/Archie/internal/app"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/ui/components"
	"github.com/Archie-bot-stack/Archie/internal/ui/styles"
)

const (
	topLimit     = 10
	maxLabelLen  = 24
	chartHours   = 24
	chartHeight  = 8
	minCardWidth = 40
)

// View renders the usage tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.frame(styles.HelpStyle.Render("Loading usage data..."))
	}
	snap := m.state.Snapshot()
	if snap == nil {
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Usage"),
			"",
			styles.HelpStyle.Render("No data yet. Start the bot to record command usage."),
		))
	}

	if snap.Yearly == nil {
		withYearly := *snap
		withYearly.Yearly = models.NewUsageCounters(snap.LoadedAt)
		snap = &withYearly
	}

	sections := []string{m.renderHeader(snap), m.renderSummary(snap)}
	if m.scope == ScopeToday {
		sections = append(sections,
			m.renderCommands(models.TopN(snap.Today, topLimit)),
			m.renderHourly(snap),
		)
	} else {
		sections = append(sections,
			m.renderCommands(snap.Yearly.TopCommands(topLimit)),
			m.renderGuilds(snap.Yearly),
		)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return m.frame(m.viewport.View())
}

func (m *Model) frame(content string) string {
	return styles.DocStyle.Width(m.width).Height(m.height).Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, minCardWidth)
}

func (m *Model) renderHeader(snap *app.Snapshot) string {
	title := styles.TitleStyle.Render("Command Usage")
	scope := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Render("[t] " + m.scope.String())
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", scope)
	sub := styles.HelpStyle.Render(fmt.Sprintf("Recap year %d", snap.Year))
	return lipgloss.JoinVertical(lipgloss.Left, header, sub, "")
}

func (m *Model) renderSummary(snap *app.Snapshot) string {
	stat := func(label string, value uint64) string {
		return styles.StatLabelStyle.Render(label) + " " + styles.StatValueStyle.Render(humanize.Comma(int64(value)))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Today:", snap.TodayTotal()), "    ",
		stat("This year:", snap.Yearly.Total), "    ",
		stat("Active guilds:", uint64(len(snap.Yearly.ActiveGuilds))),
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(row)
}

func (m *Model) renderCommands(top []models.Count) string {
	bars := lo.Map(top, func(c models.Count, _ int) components.Bar {
		return components.Bar{Label: "/" + c.Key, Value: c.Value}
	})
	return m.card("Top Commands", components.RenderBarChart(bars, m.cardWidth()-6))
}

func (m *Model) renderGuilds(yearly *models.UsageCounters) string {
	bars := lo.Map(yearly.TopGuilds(topLimit), func(c models.Count, _ int) components.Bar {
		return components.Bar{Label: ansi.Truncate(yearly.GuildName(c.Key), maxLabelLen, "…"), Value: c.Value}
	})
	return m.card("Top Guilds", components.RenderBarChart(bars, m.cardWidth()-6))
}

func (m *Model) renderHourly(snap *app.Snapshot) string {
	series := snap.HourlyCommandSeries(chartHours)
	chart := components.RenderLineChart(series, max(m.cardWidth()-14, 30), chartHeight,
		fmt.Sprintf("Commands per hour, last %d hours", chartHours))
	return m.card("Activity", chart)
}

func (m *Model) card(title, body string) string {
	rows := []string{styles.CardTitleStyle.Render(title), ""}
	for line := range strings.SplitSeq(body, "\n") {
		rows = append(rows, "  "+line)
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

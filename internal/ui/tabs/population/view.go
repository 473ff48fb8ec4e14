package population

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/Archie-bot-stack/Archie/internal/app"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/ui/components"
	"github.com/Archie-bot-stack/Archie/internal/ui/styles"
)

const (
	dailyBars   = 14
	chartHeight = 10
)

// View renders the population tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.frame(styles.HelpStyle.Render("Loading population data..."))
	}
	snap := m.state.Snapshot()
	if snap == nil {
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Population"),
			"",
			styles.HelpStyle.Render("No population recorded yet."),
		))
	}

	sections := []string{m.renderHeader(), m.renderSummary(snap)}
	if m.rng == RangeDay {
		sections = append(sections, m.renderDay(snap))
	} else {
		sections = append(sections, m.renderDaily(snap.Population))
	}
	return m.frame(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) frame(content string) string {
	return styles.DocStyle.Width(m.width).Height(m.height).Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("ArchMC Population")
	rng := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Render("[t] " + m.rng.String())
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rng), "")
}

func (m *Model) renderSummary(snap *app.Snapshot) string {
	current := styles.OfflineStyle.Render("offline")
	if cur, ok := snap.Current(); ok {
		current = styles.OnlineStyle.Render(humanize.Comma(int64(cur.Players)))
		if cur.MaxPlayers > 0 {
			current += styles.StatLabelStyle.Render(" / " + humanize.Comma(int64(cur.MaxPlayers)))
		}
	}

	pop := snap.Population
	peak24h := styles.StatValueStyle.Render(humanize.Comma(int64(pop.Peak24h)))
	if pop.Peak24hTimestamp != nil {
		peak24h += styles.StatLabelStyle.Render(" at " + pop.Peak24hTimestamp.In(m.loc).Format("15:04"))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.StatLabelStyle.Render("Online:")+" "+current, "    ",
		styles.StatLabelStyle.Render("Peak 24h:")+" "+peak24h, "    ",
		styles.StatLabelStyle.Render("All-time peak:")+" "+styles.PeakStyle.Render(humanize.Comma(int64(pop.PeakAllTime))),
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(row)
}

func (m *Model) renderDay(snap *app.Snapshot) string {
	series := snap.PopulationSeries()
	caption := "Players, last 24 hours"
	if len(series) == 0 {
		// fall back to the hourly samples of the JSON document
		series = lo.Map(snap.Population.HourlySeries(m.loc), func(p models.Point, _ int) float64 { return p.Value })
	}
	width := max(m.cardWidth()-14, 30)
	body := components.RenderLineChart(series, width, chartHeight, caption)
	if spark := components.RenderSparkline(series, width); spark != "" {
		body += "\n\n" + spark
	}
	return m.card("Players Online", body)
}

func (m *Model) renderDaily(pop models.PopulationHistory) string {
	points := pop.DailySeries()
	if len(points) > dailyBars {
		points = points[len(points)-dailyBars:]
	}
	bars := lo.Map(points, func(p models.Point, _ int) components.Bar {
		return components.Bar{Label: p.Label, Value: uint64(max(p.Value, 0))}
	})
	return m.card(fmt.Sprintf("Daily Players (last %d days)", len(bars)), components.RenderBarChart(bars, m.cardWidth()-6))
}

func (m *Model) card(title, body string) string {
	rows := []string{styles.CardTitleStyle.Render(title), ""}
	for line := range strings.SplitSeq(body, "\n") {
		rows = append(rows, "  "+line)
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

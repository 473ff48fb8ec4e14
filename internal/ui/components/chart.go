// Package components provides the chart widgets of the dashboard.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/Archie-bot-stack/Archie/internal/ui/styles"
)

// NoData is shown in place of an empty chart.
const NoData = "No data available"

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart draws a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoData)
	}
	width = max(width, 20)
	height = max(height, 3)

	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.SlateBlue),
	)
}

// Bar is one labelled row of a bar chart.
type Bar struct {
	Label string
	Value uint64
}

// RenderBarChart draws horizontal bars scaled to the largest value.
func RenderBarChart(bars []Bar, width int) string {
	if len(bars) == 0 {
		return styles.HelpStyle.Render(NoData)
	}

	var maxVal uint64
	labelLen := 0
	for _, b := range bars {
		maxVal = max(maxVal, b.Value)
		labelLen = max(labelLen, lipgloss.Width(b.Label))
	}
	if maxVal == 0 {
		maxVal = 1
	}

	barWidth := max(width-labelLen-12, 10)
	barStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	lines := make([]string, len(bars))
	for i, b := range bars {
		n := int(float64(b.Value) / float64(maxVal) * float64(barWidth))
		pad := strings.Repeat(" ", labelLen-lipgloss.Width(b.Label))
		lines[i] = fmt.Sprintf("%s%s │%s %s", pad, b.Label,
			barStyle.Render(strings.Repeat("█", n)), humanize.Comma(int64(b.Value)))
	}
	return strings.Join(lines, "\n")
}

// RenderSparkline draws values as a one-line sparkline at most width runes wide.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := max(float64(len(values))/float64(width), 1)
	var sb strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		v := values[int(float64(i)*step)]
		idx := int(v / maxVal * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Archie-bot-stack/Archie/internal/metrics"
	"github.com/Archie-bot-stack/Archie/internal/models"
)

// Blurple is the Discord brand colour used for the daily chart.
var Blurple = color.NRGBA{R: 0x58, G: 0x65, B: 0xF2, A: 0xFF}

var (
	chartBG   = color.NRGBA{R: 0x2B, G: 0x2D, B: 0x31, A: 0xFF}
	chartGrid = color.NRGBA{R: 0x4E, G: 0x50, B: 0x58, A: 0xFF}
)

// BarOptions configures BarChart.
type BarOptions struct {
	Title string
	// TopN keeps only the largest entries; zero keeps all.
	TopN int
	// Viridis colours bars along the viridis ramp instead of Color.
	Viridis bool
	Color   color.NRGBA
}

const (
	chartWidth  = 800
	barHeight   = 28
	barGap      = 12
	barLabelLen = 22
	chartTitleH = 60
)

// BarChart draws counts as horizontal bars, largest first, each annotated
// with its count. It returns nil for empty input.
func (r *Renderer) BarChart(counts map[string]uint64, opts BarOptions) ([]byte, error) {
	ranked := models.TopN(counts, opts.TopN)
	if len(ranked) == 0 {
		return nil, nil
	}
	defer metrics.ObserveRender("bar_chart", time.Now())

	if opts.Color == (color.NRGBA{}) {
		opts.Color = Blurple
	}

	p := newChart(opts.Title)
	p.Y.Padding = 0

	n := len(ranked)
	names := make([]string, n)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
	for i, entry := range ranked {
		// The largest entry sits on the top row.
		row := n - 1 - i
		names[row] = Truncate(entry.Key, barLabelLen)

		bar, err := plotter.NewBarChart(plotter.Values{float64(entry.Value)}, vg.Points(barHeight))
		if err != nil {
			return nil, fmt.Errorf("bar %q: %w", entry.Key, err)
		}
		bar.Horizontal = true
		bar.XMin = float64(row)
		bar.LineStyle.Width = 0
		bar.Color = opts.Color
		if opts.Viridis {
			bar.Color = viridis(rampPosition(i, n))
		}
		p.Add(bar)

		labels.XYs[i] = plotter.XY{X: float64(entry.Value), Y: float64(row)}
		labels.Labels[i] = strconv.FormatUint(entry.Value, 10)
	}

	values, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	values.Offset = vg.Point{X: vg.Points(8)}
	for i := range values.TextStyle {
		values.TextStyle[i].Color = White
		values.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(values)

	grid := plotter.NewGrid()
	grid.Horizontal.Width = 0
	grid.Vertical.Color = chartGrid
	p.Add(grid)

	p.NominalY(names...)
	p.X.Min = 0
	// Leave room to the right of the longest bar for its count.
	p.X.Max = math.Max(1, float64(ranked[0].Value)*1.15)

	h := chartTitleH + n*(barHeight+barGap) + 30
	return encodeChart(p, chartWidth, h)
}

// LineChart plots series in order. It returns nil for fewer than two points.
func (r *Renderer) LineChart(series []models.Point, title string) ([]byte, error) {
	if len(series) < 2 {
		return nil, nil
	}
	defer metrics.ObserveRender("line_chart", time.Now())

	p := newChart(title)

	xys := make(plotter.XYs, len(series))
	step := max(1, (len(series)+7)/8)
	var ticks plot.ConstantTicks
	for i, pt := range series {
		xys[i] = plotter.XY{X: float64(i), Y: pt.Value}
		if i%step == 0 {
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: pt.Label})
		}
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = Blurple

	marks, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	marks.GlyphStyle.Shape = draw.BoxGlyph{}
	marks.GlyphStyle.Radius = vg.Points(3)
	marks.GlyphStyle.Color = Aqua

	grid := plotter.NewGrid()
	grid.Vertical.Width = 0
	grid.Horizontal.Color = chartGrid

	p.Add(grid, line, marks)
	p.X.Tick.Marker = ticks
	p.Y.Min = 0
	p.Y.Max = math.Max(1, p.Y.Max)

	return encodeChart(p, 800, 400)
}

// PickSeries prefers the daily series once it has at least two points.
func PickSeries(hourly, daily []models.Point) []models.Point {
	if len(daily) >= 2 {
		return daily
	}
	return hourly
}

// newChart returns a plot styled for Discord's dark theme.
func newChart(title string) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = chartBG
	p.Title.Text = title
	p.Title.TextStyle.Color = White
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(12)
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.LineStyle.Color = chartGrid
		axis.Tick.LineStyle.Color = chartGrid
		axis.Tick.Label.Color = Gray
		axis.Label.TextStyle.Color = Gray
	}
	return p
}

// encodeChart draws p at one pixel per point and encodes it as PNG.
func encodeChart(p *plot.Plot, w, h int) ([]byte, error) {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(w), vg.Length(h)),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(chartBG),
	)
	p.Draw(draw.New(img))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func rampPosition(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

var viridisStops = []colorful.Color{
	mustHex("#440154"),
	mustHex("#3B528B"),
	mustHex("#21918C"),
	mustHex("#5EC962"),
	mustHex("#FDE725"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// viridis samples the viridis colour map at t in [0, 1].
func viridis(t float64) color.NRGBA {
	pos := math.Max(0, math.Min(1, t)) * float64(len(viridisStops)-1)
	i := min(int(pos), len(viridisStops)-2)
	c := viridisStops[i].BlendRgb(viridisStops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

package render

import (
	"image"
	"image/color"
	"strconv"
	"time"

	"github.com/Archie-bot-stack/Archie/internal/metrics"
	"github.com/Archie-bot-stack/Archie/internal/models"
)

// Column is one cell of a card row.
type Column struct {
	Label string
	Key   string
}

// Row is a band of equal-width columns. Rank rows show the leaderboard
// position of each key instead of its value.
type Row struct {
	Color   color.NRGBA
	Rank    bool
	Columns []Column
}

// CardSpec is the layout of a player stat card.
type CardSpec struct {
	Kind     string
	Width    int
	Height   int
	Template string
	Subtitle string
	Footer   string
	Rows     []Row
}

// Corner is the small label/value pair in the top right of a card.
type Corner struct {
	Label string
	Value string
}

// PlayerCard is the data drawn onto a CardSpec.
type PlayerCard struct {
	Username string
	Avatar   []byte
	Stats    models.Statistics
	Corner   *Corner
}

// LifestealCard is the lifesteal stat card layout.
var LifestealCard = CardSpec{
	Kind:     "lifestats",
	Width:    800,
	Height:   520,
	Template: TemplateLifesteal,
	Subtitle: "Lifesteal Player",
	Footer:   "ArchMC Lifesteal",
	Rows: []Row{
		{Color: Gold, Columns: []Column{
			{"Kills", "kills"}, {"Deaths", "deaths"}, {"K/D Ratio", "killDeathRatio"}, {"Best Streak", "killstreak"},
		}},
		{Color: Green, Columns: []Column{
			{"Blocks Mined", "blocksMined"}, {"Blocks Walked", "blocksWalked"}, {"Blocks Placed", "blocksPlaced"},
		}},
		{Color: Pink, Rank: true, Columns: []Column{
			{"Kills Rank", "kills"}, {"Deaths Rank", "deaths"}, {"K/D Rank", "killDeathRatio"}, {"Streak Rank", "killstreak"},
		}},
		{Color: Aqua, Rank: true, Columns: []Column{
			{"Mined Rank", "blocksMined"}, {"Walked Rank", "blocksWalked"}, {"Placed Rank", "blocksPlaced"},
		}},
	},
}

// Duel statistic keys.
const (
	KeyNoDebuffElo  = "elo:nodebuff:ranked:lifetime"
	KeySumoElo      = "elo:sumo:ranked:lifetime"
	KeyBridgeElo    = "elo:bridge:ranked:lifetime"
	KeyNoDebuffWins = "wins:nodebuff:ranked:lifetime"
	KeySumoWins     = "wins:sumo:ranked:lifetime"
	KeyBridgeWins   = "wins:bridge:ranked:lifetime"
)

// DuelCard is the duels stat card layout.
var DuelCard = CardSpec{
	Kind:     "duelstats",
	Width:    800,
	Height:   520,
	Template: TemplateDuels,
	Subtitle: "Duels Player",
	Footer:   "ArchMC Duels",
	Rows: []Row{
		{Color: Gold, Columns: []Column{
			{"NoDebuff ELO", KeyNoDebuffElo}, {"Sumo ELO", KeySumoElo}, {"Bridge ELO", KeyBridgeElo},
		}},
		{Color: Green, Columns: []Column{
			{"NoDebuff Wins", KeyNoDebuffWins}, {"Sumo Wins", KeySumoWins}, {"Bridge Wins", KeyBridgeWins},
		}},
		{Color: Pink, Rank: true, Columns: []Column{
			{"NoDebuff Rank", KeyNoDebuffElo}, {"Sumo Rank", KeySumoElo}, {"Bridge Rank", KeyBridgeElo},
		}},
		{Color: Aqua, Rank: true, Columns: []Column{
			{"NoDebuff Wins Rank", KeyNoDebuffWins}, {"Sumo Wins Rank", KeySumoWins}, {"Bridge Wins Rank", KeyBridgeWins},
		}},
	},
}

const (
	headerHeight = 100
	rowHeight    = 80
	margin       = 20
	avatarSize   = 80
)

// Renderer draws stat cards and charts.
type Renderer struct {
	assets *Assets
}

// NewRenderer returns a renderer drawing with assets.
func NewRenderer(assets *Assets) *Renderer {
	return &Renderer{assets: assets}
}

// PlayerCard renders card with spec and returns PNG bytes.
func (r *Renderer) PlayerCard(spec CardSpec, card PlayerCard) ([]byte, error) {
	defer metrics.ObserveRender(spec.Kind, time.Now())

	c := newCanvas(spec.Width, spec.Height, r.assets.fonts)
	defer c.close()
	c.panel()

	w := spec.Width
	c.hline(margin, w-margin, headerHeight)
	c.paste(decodeAvatar(card.Avatar, avatarSize), 25, 12)
	c.outline(image.Rect(24, 11, 106, 93), 2, borderColor)
	c.text(120, 25, card.Username, SizeLarge, White)
	c.text(120, 60, spec.Subtitle, SizeSmall, Green)
	if card.Corner != nil {
		c.text(w-200, 25, card.Corner.Label, SizeTiny, Gray)
		c.text(w-200, 45, card.Corner.Value, SizeMedium, Aqua)
	}

	for i, row := range spec.Rows {
		top := headerHeight + i*rowHeight
		c.hline(margin, w-margin, top+rowHeight)

		n := len(row.Columns)
		if n == 0 {
			continue
		}
		col := (w - 2*margin) / n
		for j, column := range row.Columns {
			cx := margin + col*j + col/2
			c.textCentered(cx, top+15, column.Label, SizeSmall, row.Color)
			c.textCentered(cx, top+40, cellValue(card.Stats, column.Key, row.Rank), SizeLarge, row.Color)
		}
		for j := 1; j < n; j++ {
			c.vline(margin+col*j, top+5, top+rowHeight-5)
		}
	}

	footerY := headerHeight + len(spec.Rows)*rowHeight + 20
	c.textCentered(w/2, footerY, spec.Footer, SizeSmall, Gray)

	bg := background(r.assets.Template(spec.Template), spec.Width, spec.Height, 80)
	return compose(bg, c)
}

func cellValue(stats models.Statistics, key string, rank bool) string {
	if rank {
		return FormatRank(stats.Position(key))
	}
	return FormatNumber(stats.Value(key))
}

// ServerCard is the data drawn onto the server status card.
type ServerCard struct {
	Report models.PopulationReport
	At     time.Time
}

// ServerStats renders the 600x380 server status card.
func (r *Renderer) ServerStats(card ServerCard) ([]byte, error) {
	defer metrics.ObserveRender("serverstats", time.Now())

	const w, h = 600, 380
	c := newCanvas(w, h, r.assets.fonts)
	defer c.close()
	c.panel()

	rep := card.Report
	c.textCentered(w/2, 20, "ArchMC Server Stats", SizeLarge, Gold)
	c.hline(margin, w-margin, 75)
	if rep.Online {
		c.textCentered(w/2, 85, "ONLINE", SizeMedium, Green)
	} else {
		c.textCentered(w/2, 85, "OFFLINE", SizeMedium, Red)
	}
	c.hline(margin, w-margin, 140)
	c.hline(margin, w-margin, 220)

	col3 := (w - 2*margin) / 3
	cells := []struct {
		label string
		value int
		color color.NRGBA
	}{
		{"Now Playing", rep.Current, Green},
		{"24h Peak", rep.Peak24h, Aqua},
		{"All-Time Peak", rep.PeakAllTime, Gold},
	}
	for i, cell := range cells {
		cx := margin + col3*i + col3/2
		c.textCentered(cx, 150, cell.label, SizeSmall, Gray)
		c.textCentered(cx, 180, strconv.Itoa(cell.value), SizeLarge, cell.color)
	}
	for i := 1; i < 3; i++ {
		c.vline(margin+col3*i, 145, 215)
	}

	c.hline(margin, w-margin, 295)
	col2 := (w - 2*margin) / 2
	version := rep.Version
	if version == "" {
		version = "Unknown"
	}
	c.textCentered(margin+col2/2, 235, "Max Players", SizeSmall, Gray)
	c.textCentered(margin+col2/2, 260, strconv.Itoa(rep.Max), SizeMedium, White)
	c.textCentered(margin+col2+col2/2, 235, "Version", SizeSmall, Gray)
	c.textCentered(margin+col2+col2/2, 260, version, SizeMedium, White)
	c.vline(margin+col2, 230, 290)

	at := card.At
	if at.IsZero() {
		at = time.Now()
	}
	c.textCentered(w/2, 310, "play.arch.mc", SizeMedium, Aqua)
	c.textCentered(w/2, 345, at.UTC().Format("2006-01-02 15:04")+" UTC", SizeTiny, Gray)

	bg := background(r.assets.Template(TemplateLifesteal), w, h, 100)
	return compose(bg, c)
}

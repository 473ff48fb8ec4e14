package render

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Archie-bot-stack/Archie/internal/models"
)

// FormatNumber renders a stat value for a card cell: fractional values with
// two decimals, millions as "1.23M", other integers with thousands grouping.
func FormatNumber(n models.Number) string {
	if n.IsFloat() {
		return fmt.Sprintf("%.2f", n.Float64())
	}
	v := n.Int64()
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", float64(v)/1_000_000)
	}
	return humanize.Comma(v)
}

// FormatGrouped renders a value with thousands grouping and no rounding.
func FormatGrouped(n models.Number) string {
	if n.IsFloat() {
		return humanize.Commaf(n.Float64())
	}
	return humanize.Comma(n.Int64())
}

// FormatRank renders a leaderboard position, or "N/A" when unranked.
func FormatRank(pos int64, ok bool) string {
	if !ok || pos <= 0 {
		return "N/A"
	}
	return "#" + humanize.Comma(pos)
}

// FormatPlaytime renders whole hours as "3d 4h".
func FormatPlaytime(hours int64) string {
	if hours < 0 {
		hours = 0
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

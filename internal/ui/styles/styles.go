// Package styles holds the lipgloss palette shared by the dashboard views.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Brand colors
	Primary   = lipgloss.Color("#5865F2") // Blurple
	Secondary = lipgloss.Color("#9B59B6") // Purple
	Subtle    = lipgloss.Color("240")

	// Status colors
	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("39")
	Gold    = lipgloss.Color("#F1C40F")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(0, 1)
)

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

var SubTitleStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

var DocStyle = lipgloss.NewStyle().
	Padding(1, 2)

var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1).
	MarginBottom(1)

var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// StatLabelStyle and StatValueStyle render the big numbers on each tab.
var StatLabelStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

var StatValueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

var PeakStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Gold)

var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(1, 2)

var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextSecondary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

var TableCellStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

var OnlineStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Success)

var OfflineStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Error)

var StaleStyle = lipgloss.NewStyle().
	Foreground(Warning)

// StatusStyle picks the style for the server status indicator.
func StatusStyle(online bool) lipgloss.Style {
	if online {
		return OnlineStyle
	}
	return OfflineStyle
}

// CenterBoth centers content in a width x height box.
func CenterBoth(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

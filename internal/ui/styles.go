package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/weather-terminal/internal/preferences"
)

// palette is the set of colors for one theme
type palette struct {
	primary lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
	danger  lipgloss.Color
	star    lipgloss.Color
}

var (
	lightPalette = palette{
		primary: lipgloss.Color("#1F6FB2"),
		text:    lipgloss.Color("#1B1B1B"),
		muted:   lipgloss.Color("#6C757D"),
		border:  lipgloss.Color("#4A90E2"),
		danger:  lipgloss.Color("#C0392B"),
		star:    lipgloss.Color("#D4A017"),
	}

	darkPalette = palette{
		primary: lipgloss.Color("#00BFFF"), // Deep sky blue
		text:    lipgloss.Color("#FFFFFF"),
		muted:   lipgloss.Color("#8C959D"),
		border:  lipgloss.Color("#4A90E2"),
		danger:  lipgloss.Color("#FF6B6B"),
		star:    lipgloss.Color("#FFD93D"),
	}
)

// styles holds every lipgloss style the views use, built for one theme
type styles struct {
	title         lipgloss.Style
	sectionHeader lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	muted         lipgloss.Style
	help          lipgloss.Style
	errorTitle    lipgloss.Style
	star          lipgloss.Style

	pane        lipgloss.Style
	activePane  lipgloss.Style
	searchBox   lipgloss.Style
	bigTemp     lipgloss.Style
	forecastDay lipgloss.Style
}

func newStyles(theme preferences.Theme) styles {
	p := lightPalette
	if theme == preferences.ThemeDark {
		p = darkPalette
	}

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary),

		sectionHeader: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			Padding(0, 0, 1, 0),

		label: lipgloss.NewStyle().
			Foreground(p.muted).
			Bold(true),

		value: lipgloss.NewStyle().
			Foreground(p.text),

		muted: lipgloss.NewStyle().
			Foreground(p.muted),

		help: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(1, 0, 0, 0),

		errorTitle: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),

		star: lipgloss.NewStyle().
			Foreground(p.star),

		// Padding 1,2 plus a border costs 6 columns of width
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2).
			MarginRight(1),

		activePane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.primary).
			Padding(1, 2).
			MarginRight(1),

		searchBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		bigTemp: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text),

		forecastDay: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1).
			Width(16).
			Align(lipgloss.Center),
	}
}

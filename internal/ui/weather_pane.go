package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/weather-terminal/internal/dashboard"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

// glyphs maps category icon ids to terminal symbols
var glyphs = map[string]string{
	"sun":                 "☀",
	"cloud-sun":           "⛅",
	"smog":                "≋",
	"cloud-rain":          "☂",
	"snowflake":           "❄",
	"cloud-showers-heavy": "☔",
	"bolt":                "⚡",
	"cloud":               "☁",
}

const (
	currentDateLayout = "Monday, 2 January 15:04"
	updatedLayout     = "15:04:05"
)

// glyph renders the category symbol in its color
func glyph(c models.WeatherCategory) string {
	g, ok := glyphs[c.IconID]
	if !ok {
		g = glyphs["cloud"]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(g)
}

// formatTemp rounds to whole degrees
func formatTemp(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

// formatSpeed keeps the upstream precision
func formatSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m Model) locationTitle(state dashboard.State) string {
	star := "☆"
	if state.Favorite {
		star = "★"
	}
	name := state.Location.DisplayName()
	if state.Pinned {
		name += " 📍"
	}
	return fmt.Sprintf("%s %s", m.styles.star.Render(star), m.styles.title.Render(name))
}

// renderCurrentPane renders the current conditions pane
func (m Model) renderCurrentPane(state dashboard.State, width int) string {
	snap := state.Snapshot
	units := state.SnapshotUnits

	var content strings.Builder

	content.WriteString(m.locationTitle(state))
	content.WriteString("\n")
	content.WriteString(m.styles.muted.Render(snap.ObservedAt.Local().Format(currentDateLayout)))
	content.WriteString("\n\n")

	content.WriteString(glyph(snap.Category))
	content.WriteString("  ")
	content.WriteString(m.styles.bigTemp.Render(formatTemp(snap.Temperature) + units.TemperatureSuffix()))
	content.WriteString("\n")
	content.WriteString(m.styles.value.Render(snap.Category.Description))
	content.WriteString("\n\n")

	content.WriteString(m.styles.label.Render("Wind: "))
	content.WriteString(m.styles.value.Render(fmt.Sprintf("%s %s", formatSpeed(snap.WindSpeed), units.SpeedSuffix())))
	content.WriteString("\n")
	content.WriteString(m.styles.label.Render("Humidity: "))
	content.WriteString(m.styles.value.Render(fmt.Sprintf("%d%%", snap.Humidity)))
	content.WriteString("\n\n")

	content.WriteString(m.styles.muted.Render("Last updated " + state.UpdatedAt.Local().Format(updatedLayout)))

	return m.styles.pane.Width(width).Render(content.String())
}

// renderForecastPane renders one box per upcoming day
func (m Model) renderForecastPane(state dashboard.State) string {
	if len(state.Forecast) == 0 {
		return m.styles.muted.Render("No forecast available")
	}

	days := make([]string, 0, len(state.Forecast))
	for _, day := range state.Forecast {
		card := strings.Join([]string{
			m.styles.value.Bold(true).Render(day.Date.Format("Mon")),
			m.styles.muted.Render(day.Date.Format("2 Jan")),
			glyph(day.Category),
			m.styles.value.Render(fmt.Sprintf("%s° / %s°", formatTemp(day.High), formatTemp(day.Low))),
			m.styles.muted.Render(day.Category.Description),
		}, "\n")
		days = append(days, m.styles.forecastDay.Render(card))
	}

	header := m.styles.sectionHeader.Render(fmt.Sprintf("%d-Day Forecast", len(state.Forecast)))
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, days...))
}

// renderFavoritesPane renders the favorites list, highlighted when focused
func (m Model) renderFavoritesPane() string {
	style := m.styles.pane
	if m.focus == FocusFavorites {
		style = m.styles.activePane
	}

	var body string
	if len(m.favorites.Items()) == 0 {
		body = m.styles.title.Render("Favorites") + "\n\n" +
			m.styles.muted.Width(favoritesWidth-6).Render("No favorites yet. Ctrl+F saves the current city.")
	} else {
		body = m.favorites.View()
	}
	return style.Width(favoritesWidth).Render(body)
}

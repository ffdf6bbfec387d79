package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/weather-terminal/internal/dashboard"
)

// renderWeatherSimple renders weather without borders or width constraints,
// for terminals too narrow for the pane layout
func (m Model) renderWeatherSimple(state dashboard.State) string {
	snap := state.Snapshot
	units := state.SnapshotUnits

	var lines []string

	lines = append(lines, m.locationTitle(state))
	lines = append(lines, m.styles.muted.Render(snap.ObservedAt.Local().Format(currentDateLayout)))
	lines = append(lines, fmt.Sprintf("%s %s%s  %s",
		glyph(snap.Category),
		formatTemp(snap.Temperature),
		units.TemperatureSuffix(),
		snap.Category.Description))
	lines = append(lines, fmt.Sprintf("Wind: %s %s • Humidity: %d%%",
		formatSpeed(snap.WindSpeed),
		units.SpeedSuffix(),
		snap.Humidity))

	if len(state.Forecast) > 0 {
		lines = append(lines, "", m.styles.label.Render("Forecast:"))
		for _, day := range state.Forecast {
			lines = append(lines, fmt.Sprintf("  %s %-6s %s %s° / %s°  %s",
				day.Date.Format("Mon"),
				day.Date.Format("2 Jan"),
				glyph(day.Category),
				formatTemp(day.High),
				formatTemp(day.Low),
				day.Category.Description))
		}
	}

	lines = append(lines, "", m.styles.muted.Render("Last updated "+state.UpdatedAt.Local().Format(updatedLayout)))

	return strings.Join(lines, "\n")
}

// renderFavoritesSimple renders favorites as a single line, or the list when
// it has focus
func (m Model) renderFavoritesSimple() string {
	if m.focus == FocusFavorites && len(m.favorites.Items()) > 0 {
		return m.favorites.View()
	}

	items := m.favorites.Items()
	if len(items) == 0 {
		return m.styles.muted.Render("No favorites yet. Ctrl+F saves the current city.")
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		if f, ok := it.(favoriteItem); ok {
			names = append(names, f.entry.Name)
		}
	}
	return m.styles.label.Render("Favorites: ") + m.styles.value.Render(strings.Join(names, " • "))
}

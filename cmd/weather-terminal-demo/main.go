package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/weather-terminal/internal/dashboard"
	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/favorites"
	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/preferences"
	"github.com/ngmaloney/weather-terminal/internal/ui"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

var demoCities = []models.Location{
	{Name: "Yogyakarta", Country: "Indonesia", Coordinate: models.Coordinate{Latitude: -7.797068, Longitude: 110.370529}},
	{Name: "Paris", Country: "France", Coordinate: models.Coordinate{Latitude: 48.85, Longitude: 2.35}},
	{Name: "Tokyo", Country: "Japan", Coordinate: models.Coordinate{Latitude: 35.68, Longitude: 139.69}},
	{Name: "Reykjavik", Country: "Iceland", Coordinate: models.Coordinate{Latitude: 64.15, Longitude: -21.94}},
	{Name: "Lima", Country: "Peru", Coordinate: models.Coordinate{Latitude: -12.04, Longitude: -77.03}},
}

// demoResolver answers from demoCities
type demoResolver struct{}

func (demoResolver) Resolve(ctx context.Context, name string) (models.Location, error) {
	for _, c := range demoCities {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return models.Location{}, fmt.Errorf("%w: '%s'", geocoding.ErrNotFound, name)
}

func (demoResolver) Suggest(ctx context.Context, partial string, limit int) []models.Suggestion {
	var out []models.Suggestion
	for _, c := range demoCities {
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(partial)) && len(out) < limit {
			out = append(out, models.Suggestion{Name: c.Name, Country: c.Country})
		}
	}
	return out
}

// demoWeather derives stable canned weather from the coordinate
type demoWeather struct{}

func (demoWeather) Fetch(ctx context.Context, coord models.Coordinate, policy units.Policy) (models.WeatherSnapshot, models.Forecast, error) {
	// Simulate network latency so the spinner shows
	time.Sleep(300 * time.Millisecond)

	base := 30 - coord.Latitude/3
	codes := []int{0, 2, 61, 95, 45, 81, 71}
	seed := int(coord.Latitude+coord.Longitude+360) % len(codes)

	convert := func(c float64) float64 {
		if policy.System == units.Imperial {
			return c*9/5 + 32
		}
		return c
	}
	wind := 11.3
	if policy.System == units.Imperial {
		wind = 7
	}

	now := time.Now()
	snapshot := models.WeatherSnapshot{
		Temperature: convert(base),
		WindSpeed:   wind,
		Humidity:    55 + seed*5,
		Category:    models.Classify(codes[seed]),
		ObservedAt:  now,
	}

	var forecast models.Forecast
	for i := 1; i <= models.MaxForecastDays; i++ {
		forecast = append(forecast, models.ForecastDay{
			Date:     now.AddDate(0, 0, i),
			Category: models.Classify(codes[(seed+i)%len(codes)]),
			High:     convert(base + float64(i%3)),
			Low:      convert(base - 6 + float64(i%2)),
		})
	}
	return snapshot, forecast, nil
}

// This demo shows the UI with canned data and no network access
func main() {
	db, err := database.Open(":memory:")
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := favorites.Open(db, nil)
	if err != nil {
		fmt.Printf("Error loading favorites: %v\n", err)
		os.Exit(1)
	}
	for _, c := range demoCities[1:3] {
		if _, err := store.Toggle(models.FavoriteEntry{Name: c.Name, Coordinate: c.Coordinate}); err != nil {
			fmt.Printf("Error seeding favorites: %v\n", err)
			os.Exit(1)
		}
	}

	controller := dashboard.NewController(
		demoResolver{},
		demoWeather{},
		geolocation.FixedLocator{Coordinate: demoCities[3].Coordinate},
		store,
		dashboard.Options{
			DefaultLocation: demoCities[0],
			Units:           units.Policy{System: units.Metric},
			SuggestionLimit: 5,
		},
		nil,
	)

	m := ui.NewModel(controller, preferences.NewRepository(db), ui.Options{})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running demo: %v\n", err)
		os.Exit(1)
	}
}

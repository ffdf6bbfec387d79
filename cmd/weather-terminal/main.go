package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ngmaloney/weather-terminal/internal/config"
	"github.com/ngmaloney/weather-terminal/internal/dashboard"
	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/favorites"
	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/observability"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
	"github.com/ngmaloney/weather-terminal/internal/preferences"
	"github.com/ngmaloney/weather-terminal/internal/ui"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file (optional)")
	city := flag.String("city", "", "City to load at startup instead of the default location (e.g., Paris)")
	unitSystem := flag.String("units", "", "Starting unit system: metric or imperial")
	flag.Parse()

	if err := run(*configPath, *city, *unitSystem); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, city, unitSystem string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if unitSystem != "" {
		cfg.Units = unitSystem
	}
	policy, err := units.Parse(cfg.Units)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := favorites.Open(db, logger)
	if err != nil {
		return err
	}

	geocoder := geocoding.NewGeocoder(geocoding.Options{
		BaseURL:   cfg.GeocodingURL,
		Language:  cfg.Language,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	}, logger)
	weather := openmeteo.NewClient(cfg.ForecastURL, cfg.HTTPTimeout, logger)

	var locator geolocation.Locator = geolocation.DisabledLocator{}
	if cfg.GeolocationEnabled {
		locator = geolocation.NewIPLocator(cfg.GeolocationURL, cfg.HTTPTimeout)
	}

	controller := dashboard.NewController(geocoder, weather, locator, store, dashboard.Options{
		DefaultLocation: models.Location{
			Name: cfg.DefaultLocation.Name,
			Coordinate: models.Coordinate{
				Latitude:  cfg.DefaultLocation.Latitude,
				Longitude: cfg.DefaultLocation.Longitude,
			},
		},
		Units:           policy,
		SuggestionLimit: cfg.SuggestionLimit,
	}, logger)

	logger.Info("starting weather terminal",
		zap.String("db", cfg.DatabasePath),
		zap.Stringer("units", policy.System),
		zap.Bool("geolocation", cfg.GeolocationEnabled),
	)

	m := ui.NewModel(controller, preferences.NewRepository(db), ui.Options{
		RefreshInterval: cfg.RefreshInterval,
		SuggestDebounce: cfg.SuggestDebounce,
		InitialQuery:    city,
		Logger:          logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
)

// DefaultPath is where Load looks for the YAML file when no path is given
const DefaultPath = "config/config.yaml"

var validate = validator.New()

// Config holds the dashboard configuration loaded from YAML, .env and env.
type Config struct {
	GeocodingURL    string        `validate:"required,url"`
	ForecastURL     string        `validate:"required,url"`
	Language        string        `validate:"required"`
	SuggestionLimit int           `validate:"gte=1,lte=20"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	RateLimitRPS    float64       `validate:"gt=0"`
	RateLimitBurst  int           `validate:"gte=1"`

	RefreshInterval time.Duration `validate:"gte=1s"`
	SuggestDebounce time.Duration `validate:"gt=0"`

	DefaultLocation DefaultLocation
	Units           string `validate:"oneof=metric imperial"`

	GeolocationEnabled bool
	GeolocationURL     string `validate:"omitempty,url"`

	DatabasePath string `validate:"required"`
	LogPath      string `validate:"required"`
	LogLevel     string
}

// DefaultLocation is the place shown at startup
type DefaultLocation struct {
	Name      string  `validate:"required"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

type fileConfig struct {
	Geocoding struct {
		URL             string  `yaml:"url"`
		Language        string  `yaml:"language"`
		SuggestionLimit int     `yaml:"suggestion_limit"`
		RateLimitRPS    float64 `yaml:"rate_limit_rps"`
		RateLimitBurst  int     `yaml:"rate_limit_burst"`
	} `yaml:"geocoding"`

	Forecast struct {
		URL string `yaml:"url"`
	} `yaml:"forecast"`

	HTTP struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"http"`

	Dashboard struct {
		RefreshInterval string `yaml:"refresh_interval"`
		SuggestDebounce string `yaml:"suggest_debounce"`
		Units           string `yaml:"units"`
		DefaultLocation struct {
			Name      string   `yaml:"name"`
			Latitude  *float64 `yaml:"latitude"`
			Longitude *float64 `yaml:"longitude"`
		} `yaml:"default_location"`
	} `yaml:"dashboard"`

	Geolocation struct {
		Enabled *bool  `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"geolocation"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Path  string `yaml:"path"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		GeocodingURL:    geocoding.DefaultBaseURL,
		ForecastURL:     openmeteo.DefaultBaseURL,
		Language:        geocoding.DefaultLanguage,
		SuggestionLimit: geocoding.DefaultSuggestionLimit,
		HTTPTimeout:     10 * time.Second,
		RateLimitRPS:    5,
		RateLimitBurst:  5,

		RefreshInterval: 5 * time.Minute,
		SuggestDebounce: 500 * time.Millisecond,

		DefaultLocation: DefaultLocation{
			Name:      "Yogyakarta",
			Latitude:  -7.797068,
			Longitude: 110.370529,
		},
		Units: "metric",

		GeolocationEnabled: true,
		GeolocationURL:     geolocation.DefaultURL,

		DatabasePath: database.DBPath(),
		LogPath:      "data/weather-terminal.log",
		LogLevel:     "INFO",
	}
}

// Load builds the configuration from defaults, the YAML file at path, a .env
// file in the working directory and environment overrides. A missing YAML file
// is not an error; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString(&cfg.GeocodingURL, fc.Geocoding.URL)
	setString(&cfg.Language, fc.Geocoding.Language)
	if fc.Geocoding.SuggestionLimit != 0 {
		cfg.SuggestionLimit = fc.Geocoding.SuggestionLimit
	}
	if fc.Geocoding.RateLimitRPS != 0 {
		cfg.RateLimitRPS = fc.Geocoding.RateLimitRPS
	}
	if fc.Geocoding.RateLimitBurst != 0 {
		cfg.RateLimitBurst = fc.Geocoding.RateLimitBurst
	}
	setString(&cfg.ForecastURL, fc.Forecast.URL)

	var err error
	if cfg.HTTPTimeout, err = parseDuration("http.timeout", fc.HTTP.Timeout, cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.RefreshInterval, err = parseDuration("dashboard.refresh_interval", fc.Dashboard.RefreshInterval, cfg.RefreshInterval); err != nil {
		return err
	}
	if cfg.SuggestDebounce, err = parseDuration("dashboard.suggest_debounce", fc.Dashboard.SuggestDebounce, cfg.SuggestDebounce); err != nil {
		return err
	}

	setString(&cfg.Units, strings.ToLower(fc.Dashboard.Units))

	loc := fc.Dashboard.DefaultLocation
	if loc.Name != "" || loc.Latitude != nil || loc.Longitude != nil {
		if loc.Name == "" || loc.Latitude == nil || loc.Longitude == nil {
			return fmt.Errorf("dashboard.default_location needs name, latitude and longitude")
		}
		cfg.DefaultLocation = DefaultLocation{Name: loc.Name, Latitude: *loc.Latitude, Longitude: *loc.Longitude}
	}

	if fc.Geolocation.Enabled != nil {
		cfg.GeolocationEnabled = *fc.Geolocation.Enabled
	}
	setString(&cfg.GeolocationURL, fc.Geolocation.URL)

	setString(&cfg.DatabasePath, fc.Storage.Path)
	setString(&cfg.LogPath, fc.Logging.Path)
	setString(&cfg.LogLevel, fc.Logging.Level)
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LogLevel, strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	setString(&cfg.DatabasePath, strings.TrimSpace(os.Getenv("WEATHER_DB_PATH")))
	setString(&cfg.Units, strings.ToLower(strings.TrimSpace(os.Getenv("WEATHER_UNITS"))))
}

// Validate checks field constraints
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseDuration returns def for an empty string and an error for a malformed one
func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

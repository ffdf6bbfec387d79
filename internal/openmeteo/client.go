package openmeteo

import (
	"context"
	"errors"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

// ErrFetch wraps every transport or payload failure of a weather fetch
var ErrFetch = errors.New("weather fetch failed")

// WeatherClient defines the interface for fetching weather data
type WeatherClient interface {
	// Fetch retrieves current conditions and the next days' forecast for a
	// coordinate, in the units of the given policy.
	Fetch(ctx context.Context, coord models.Coordinate, policy units.Policy) (models.WeatherSnapshot, models.Forecast, error)
}

package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

const (
	DefaultURL = "https://ipapi.co/json/"
	userAgent  = "WeatherTerminal/1.0"
)

// ErrGeolocation is returned when the device position cannot be determined,
// either because lookups are disabled or because the lookup failed.
var ErrGeolocation = errors.New("geolocation unavailable")

// Locator determines the coordinates of the device
type Locator interface {
	Locate(ctx context.Context) (models.Coordinate, error)
}

// IPLocator estimates the device position from its public IP address
type IPLocator struct {
	url        string
	httpClient *http.Client
}

// NewIPLocator creates a locator for the given lookup endpoint
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPLocator{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ipResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Locate looks up the public IP position
func (l *IPLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: creating request: %v", ErrGeolocation, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: %v", ErrGeolocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinate{}, fmt.Errorf("%w: lookup returned status %d", ErrGeolocation, resp.StatusCode)
	}

	var result ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: decoding response: %v", ErrGeolocation, err)
	}
	if result.Error {
		return models.Coordinate{}, fmt.Errorf("%w: %s", ErrGeolocation, result.Reason)
	}
	if result.Latitude == nil || result.Longitude == nil {
		return models.Coordinate{}, fmt.Errorf("%w: response has no coordinates", ErrGeolocation)
	}

	coord := models.Coordinate{Latitude: *result.Latitude, Longitude: *result.Longitude}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, fmt.Errorf("%w: %v", ErrGeolocation, err)
	}
	return coord, nil
}

// FixedLocator always reports the same position
type FixedLocator struct {
	Coordinate models.Coordinate
}

// Locate returns the configured coordinate
func (f FixedLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	return f.Coordinate, nil
}

// DisabledLocator reports that geolocation is not supported
type DisabledLocator struct{}

// Locate always fails with ErrGeolocation
func (DisabledLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	return models.Coordinate{}, fmt.Errorf("%w: disabled in configuration", ErrGeolocation)
}

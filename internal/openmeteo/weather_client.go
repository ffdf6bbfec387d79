package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/units"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultHumidity is used when the hourly series has no value for the current hour
	DefaultHumidity = 60

	userAgent = "WeatherTerminal/1.0"
)

// Client implements WeatherClient using the Open-Meteo forecast API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a new Open-Meteo client. An empty baseURL uses the public endpoint.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("openmeteo"),
		now:    time.Now,
	}
}

// Fetch retrieves the forecast and humidity series concurrently and only
// assembles a result once both have arrived. Any failure discards both.
func (c *Client) Fetch(ctx context.Context, coord models.Coordinate, policy units.Policy) (models.WeatherSnapshot, models.Forecast, error) {
	if err := coord.Validate(); err != nil {
		return models.WeatherSnapshot{}, nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	var (
		forecast forecastResponse
		humidity humidityResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, c.forecastParams(coord, policy), &forecast)
	})
	g.Go(func() error {
		return c.get(gctx, c.humidityParams(coord), &humidity)
	})
	if err := g.Wait(); err != nil {
		return models.WeatherSnapshot{}, nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if forecast.CurrentWeather == nil {
		return models.WeatherSnapshot{}, nil, fmt.Errorf("%w: response has no current_weather", ErrFetch)
	}

	now := c.now()
	snapshot := models.WeatherSnapshot{
		Temperature: forecast.CurrentWeather.Temperature,
		WindSpeed:   forecast.CurrentWeather.WindSpeed,
		Humidity:    humidity.currentHumidity(now),
		Category:    models.Classify(forecast.CurrentWeather.WeatherCode),
		ObservedAt:  now,
	}

	days, err := forecast.days()
	if err != nil {
		return models.WeatherSnapshot{}, nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	c.logger.Debug("fetched weather",
		zap.Stringer("coordinate", coord),
		zap.Stringer("units", policy.System),
		zap.Float64("temperature", snapshot.Temperature),
		zap.Int("humidity", snapshot.Humidity),
		zap.Int("forecast_days", len(days)),
	)

	return snapshot, days, nil
}

func (c *Client) forecastParams(coord models.Coordinate, policy units.Policy) url.Values {
	params := coordParams(coord)
	params.Set("current_weather", "true")
	params.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(models.MaxForecastDays+1))
	for k, v := range policy.QueryParams() {
		params[k] = v
	}
	return params
}

func (c *Client) humidityParams(coord models.Coordinate) url.Values {
	params := coordParams(coord)
	params.Set("hourly", "relativehumidity_2m")
	params.Set("timezone", "auto")
	params.Set("forecast_days", "1")
	return params
}

func coordParams(coord models.Coordinate) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	return params
}

// get issues a GET against the forecast endpoint and decodes the JSON body into out
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Internal types for Open-Meteo API responses

type forecastResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	CurrentWeather   *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// days converts daily entries 1..5 into a Forecast. Entry 0 is today and is
// skipped; conversion stops at the shortest daily array.
func (r *forecastResponse) days() (models.Forecast, error) {
	n := min(len(r.Daily.Time), len(r.Daily.WeatherCode), len(r.Daily.TempMax), len(r.Daily.TempMin))
	zone := time.FixedZone("", r.UTCOffsetSeconds)

	days := make(models.Forecast, 0, models.MaxForecastDays)
	for i := 1; i <= models.MaxForecastDays && i < n; i++ {
		date, err := time.ParseInLocation("2006-01-02", r.Daily.Time[i], zone)
		if err != nil {
			return nil, fmt.Errorf("parsing daily date %q: %w", r.Daily.Time[i], err)
		}
		days = append(days, models.ForecastDay{
			Date:     date,
			Category: models.Classify(r.Daily.WeatherCode[i]),
			High:     r.Daily.TempMax[i],
			Low:      r.Daily.TempMin[i],
		})
	}
	return days, nil
}

type humidityResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Hourly           struct {
		RelativeHumidity []*float64 `json:"relativehumidity_2m"`
	} `json:"hourly"`
}

// currentHumidity picks the entry for the current hour at the location.
// The series starts at local midnight, so the index is the local hour.
func (r *humidityResponse) currentHumidity(now time.Time) int {
	hour := now.In(time.FixedZone("", r.UTCOffsetSeconds)).Hour()
	series := r.Hourly.RelativeHumidity
	if hour >= len(series) || series[hour] == nil {
		return DefaultHumidity
	}
	h := int(math.Round(*series[hour]))
	return max(0, min(100, h))
}

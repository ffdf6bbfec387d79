package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL         = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultLanguage        = "en"
	DefaultSuggestionLimit = 5
	userAgent              = "WeatherTerminal/1.0"
)

// ErrNotFound is returned when a name resolves to zero candidates
var ErrNotFound = errors.New("location not found")

// ErrUnavailable is returned when the geocoding service could not be queried
var ErrUnavailable = errors.New("geocoding service unavailable")

// Geocoder resolves place names to coordinates using the Open-Meteo geocoding API
type Geocoder struct {
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Options configures a Geocoder. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Language   string
	Timeout    time.Duration
	RateLimit  float64 // requests per second shared by Resolve and Suggest
	RateBurst  int
	HTTPClient *http.Client
}

// NewGeocoder creates a new geocoder
func NewGeocoder(opts Options, logger *zap.Logger) *Geocoder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Geocoder{
		baseURL:    opts.BaseURL,
		language:   opts.Language,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		logger:     logger.Named("geocoding"),
	}
}

// searchResponse represents the geocoding API response
type searchResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Resolve converts a free-text place name to the top-ranked location.
// Lower-ranked candidates are discarded.
func (g *Geocoder) Resolve(ctx context.Context, name string) (models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Location{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	resp, err := g.search(ctx, name, 1)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(resp.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	result := resp.Results[0]
	loc := models.Location{
		Name:    result.Name,
		Country: result.Country,
		Coordinate: models.Coordinate{
			Latitude:  result.Latitude,
			Longitude: result.Longitude,
		},
	}
	if err := loc.Coordinate.Validate(); err != nil {
		return models.Location{}, fmt.Errorf("%w: geocoding '%s': %w", ErrUnavailable, name, err)
	}

	g.logger.Debug("resolved location",
		zap.String("query", name),
		zap.String("name", loc.Name),
		zap.Float64("lat", loc.Coordinate.Latitude),
		zap.Float64("lon", loc.Coordinate.Longitude),
	)
	return loc, nil
}

// Suggest returns up to limit candidates for a partial name.
// It never fails: any error yields an empty result.
func (g *Geocoder) Suggest(ctx context.Context, partial string, limit int) []models.Suggestion {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	resp, err := g.search(ctx, partial, limit)
	if err != nil {
		g.logger.Debug("suggestion lookup failed", zap.String("query", partial), zap.Error(err))
		return nil
	}

	suggestions := make([]models.Suggestion, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, models.Suggestion{Name: r.Name, Country: r.Country})
	}
	return suggestions
}

// search executes a rate-limited query against the geocoding endpoint
func (g *Geocoder) search(ctx context.Context, name string, count int) (*searchResponse, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", strconv.Itoa(count))
	params.Set("language", g.language)
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

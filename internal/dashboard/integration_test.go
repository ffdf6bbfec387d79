package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

// Resolve then fetch against mocked upstreams, with an empty humidity series
func TestIntegration_SearchParis(t *testing.T) {
	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Paris" {
			t.Errorf("geocoding name = %q, want Paris", r.URL.Query().Get("name"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"name":"Paris","latitude":48.85,"longitude":2.35,"country":"France"},
			{"name":"Paris","latitude":33.66,"longitude":-95.55,"country":"United States"}
		]}`))
	}))
	defer geoServer.Close()

	forecastServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("hourly") != "" {
			w.Write([]byte(`{"utc_offset_seconds":7200,"hourly":{"relativehumidity_2m":[]}}`))
			return
		}
		w.Write([]byte(`{"utc_offset_seconds":7200,"current_weather":{"temperature":20,"windspeed":10,"weathercode":0}}`))
	}))
	defer forecastServer.Close()

	logger := zaptest.NewLogger(t)
	c := NewController(
		geocoding.NewGeocoder(geocoding.Options{BaseURL: geoServer.URL}, logger),
		openmeteo.NewClient(forecastServer.URL, 5*time.Second, logger),
		geolocation.DisabledLocator{},
		&fakeFavorites{},
		Options{DefaultLocation: yogyakarta, Units: units.Policy{System: units.Metric}, SuggestionLimit: 5},
		logger,
	)

	applied, err := c.Apply(c.Execute(context.Background(), c.Search("Paris")))
	if err != nil || !applied {
		t.Fatalf("Apply() = %v, %v; want true, nil", applied, err)
	}

	s := c.State()
	if s.Location.Coordinate != (models.Coordinate{Latitude: 48.85, Longitude: 2.35}) {
		t.Errorf("Coordinate = %v, want top result 48.85, 2.35", s.Location.Coordinate)
	}
	if s.Snapshot.Category != models.CategoryClear {
		t.Errorf("Category = %+v, want Clear", s.Snapshot.Category)
	}
	if s.Snapshot.Temperature != 20 {
		t.Errorf("Temperature = %v, want 20", s.Snapshot.Temperature)
	}
	if s.Snapshot.Humidity != 60 {
		t.Errorf("Humidity = %d, want 60 fallback", s.Snapshot.Humidity)
	}
	if len(s.Forecast) != 0 {
		t.Errorf("Forecast length = %d, want 0 without daily data", len(s.Forecast))
	}
}

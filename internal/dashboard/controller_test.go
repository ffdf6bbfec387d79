package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

var (
	yogyakarta = models.Location{Name: "Yogyakarta", Coordinate: models.Coordinate{Latitude: -7.797068, Longitude: 110.370529}}
	paris      = models.Location{Name: "Paris", Country: "France", Coordinate: models.Coordinate{Latitude: 48.85, Longitude: 2.35}}
	observed   = time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
)

type fakeResolver struct {
	locations   map[string]models.Location
	err         error
	suggestions []models.Suggestion
	suggestCall []string
	lastLimit   int
}

func (f *fakeResolver) Resolve(ctx context.Context, name string) (models.Location, error) {
	if f.err != nil {
		return models.Location{}, f.err
	}
	loc, ok := f.locations[name]
	if !ok {
		return models.Location{}, fmt.Errorf("%w: '%s'", geocoding.ErrNotFound, name)
	}
	return loc, nil
}

func (f *fakeResolver) Suggest(ctx context.Context, partial string, limit int) []models.Suggestion {
	f.suggestCall = append(f.suggestCall, partial)
	f.lastLimit = limit
	return f.suggestions
}

type fetchCall struct {
	coord  models.Coordinate
	policy units.Policy
}

type fakeFetcher struct {
	err   error
	calls []fetchCall
}

// Fetch answers 20°C / 68°F so tests can tell which units were requested
func (f *fakeFetcher) Fetch(ctx context.Context, coord models.Coordinate, policy units.Policy) (models.WeatherSnapshot, models.Forecast, error) {
	f.calls = append(f.calls, fetchCall{coord: coord, policy: policy})
	if f.err != nil {
		return models.WeatherSnapshot{}, nil, f.err
	}
	temp := 20.0
	if policy.System == units.Imperial {
		temp = 68
	}
	snapshot := models.WeatherSnapshot{
		Temperature: temp,
		WindSpeed:   10,
		Humidity:    60,
		Category:    models.Classify(0),
		ObservedAt:  observed,
	}
	forecast := models.Forecast{
		{Date: observed.AddDate(0, 0, 1), Category: models.Classify(61), High: temp + 2, Low: temp - 5},
	}
	return snapshot, forecast, nil
}

type fakeFavorites struct {
	entries   []models.FavoriteEntry
	toggleErr error
}

func (f *fakeFavorites) IsFavorite(name string) bool {
	for _, e := range f.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeFavorites) Toggle(entry models.FavoriteEntry) (bool, error) {
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	for i, e := range f.entries {
		if e.Name == entry.Name {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return false, nil
		}
	}
	f.entries = append(f.entries, entry)
	return true, nil
}

func (f *fakeFavorites) List() []models.FavoriteEntry {
	return append([]models.FavoriteEntry(nil), f.entries...)
}

type harness struct {
	c         *Controller
	resolver  *fakeResolver
	fetcher   *fakeFetcher
	favorites *fakeFavorites
}

func newHarness(t *testing.T, locator geolocation.Locator) *harness {
	t.Helper()
	h := &harness{
		resolver:  &fakeResolver{locations: map[string]models.Location{"Paris": paris}},
		fetcher:   &fakeFetcher{},
		favorites: &fakeFavorites{},
	}
	h.c = NewController(h.resolver, h.fetcher, locator, h.favorites, Options{
		DefaultLocation: yogyakarta,
		Units:           units.Policy{System: units.Metric},
		SuggestionLimit: 5,
	}, zaptest.NewLogger(t))
	return h
}

// run executes and applies a request in one step
func (h *harness) run(t *testing.T, req Request) (bool, error) {
	t.Helper()
	return h.c.Apply(h.c.Execute(context.Background(), req))
}

func TestNewController_DefaultState(t *testing.T) {
	h := newHarness(t, nil)
	s := h.c.State()

	if s.Location != yogyakarta {
		t.Errorf("Location = %+v, want %+v", s.Location, yogyakarta)
	}
	if !s.Pinned {
		t.Error("default location should be pinned")
	}
	if s.Snapshot != nil {
		t.Error("Snapshot should be nil before the first fetch")
	}
	if s.Units.System != units.Metric {
		t.Errorf("Units = %v, want metric", s.Units.System)
	}
}

func TestController_Start(t *testing.T) {
	h := newHarness(t, nil)

	req := h.c.Start()
	if req.Location != yogyakarta {
		t.Errorf("Start() location = %+v", req.Location)
	}
	if req.ID == "" {
		t.Error("request should carry a correlation id")
	}

	applied, err := h.run(t, req)
	if err != nil || !applied {
		t.Fatalf("Apply() = %v, %v; want true, nil", applied, err)
	}

	s := h.c.State()
	if s.Snapshot == nil {
		t.Fatal("Snapshot should be set after Start")
	}
	if s.Snapshot.Temperature != 20 {
		t.Errorf("Temperature = %v, want 20", s.Snapshot.Temperature)
	}
	if len(s.Forecast) != 1 {
		t.Errorf("Forecast length = %d, want 1", len(s.Forecast))
	}
	if !s.UpdatedAt.Equal(observed) {
		t.Errorf("UpdatedAt = %v, want %v", s.UpdatedAt, observed)
	}
	if !s.Pinned {
		t.Error("default location should stay pinned after loading")
	}
}

func TestController_Search(t *testing.T) {
	h := newHarness(t, nil)

	applied, err := h.run(t, h.c.Search("  Paris "))
	if err != nil || !applied {
		t.Fatalf("Apply() = %v, %v; want true, nil", applied, err)
	}

	s := h.c.State()
	if s.Location != paris {
		t.Errorf("Location = %+v, want %+v", s.Location, paris)
	}
	if s.Pinned {
		t.Error("searched location should not be pinned")
	}
	if got := h.fetcher.calls[0].coord; got != paris.Coordinate {
		t.Errorf("fetched coordinate = %v, want %v", got, paris.Coordinate)
	}
}

func TestController_SearchNotFoundKeepsState(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run(t, h.c.Start()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	before := h.c.State()

	applied, err := h.run(t, h.c.Search("Atlantis"))
	if applied {
		t.Error("failed search should not apply")
	}
	if !errors.Is(err, geocoding.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(h.fetcher.calls) != 1 {
		t.Errorf("fetch calls = %d, want 1 (no fetch after failed resolve)", len(h.fetcher.calls))
	}

	after := h.c.State()
	if after.Location != before.Location || after.Snapshot != before.Snapshot {
		t.Error("failed search changed the displayed state")
	}
}

func TestController_FetchErrorKeepsSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run(t, h.c.Start()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	before := h.c.State()

	h.fetcher.err = fmt.Errorf("%w: API returned status 500", openmeteo.ErrFetch)
	applied, err := h.run(t, h.c.Search("Paris"))
	if applied {
		t.Error("failed fetch should not apply")
	}
	if !errors.Is(err, openmeteo.ErrFetch) {
		t.Errorf("error = %v, want ErrFetch", err)
	}

	after := h.c.State()
	if after.Location != yogyakarta {
		t.Errorf("Location = %+v, want unchanged Yogyakarta", after.Location)
	}
	if after.Snapshot != before.Snapshot {
		t.Error("Snapshot replaced after failed fetch")
	}
}

func TestController_StaleResultsDiscarded(t *testing.T) {
	t.Run("older result arrives last", func(t *testing.T) {
		h := newHarness(t, nil)
		older := h.c.Refresh()
		newer := h.c.Search("Paris")

		olderRes := h.c.Execute(context.Background(), older)
		newerRes := h.c.Execute(context.Background(), newer)

		if applied, err := h.c.Apply(newerRes); !applied || err != nil {
			t.Fatalf("Apply(newer) = %v, %v", applied, err)
		}
		if applied, err := h.c.Apply(olderRes); applied || err != nil {
			t.Errorf("Apply(older) = %v, %v; want false, nil", applied, err)
		}
		if h.c.State().Location != paris {
			t.Errorf("Location = %+v, want Paris", h.c.State().Location)
		}
	})

	t.Run("older result arrives first", func(t *testing.T) {
		h := newHarness(t, nil)
		older := h.c.Search("Paris")
		newer := h.c.Refresh()

		if applied, _ := h.c.Apply(h.c.Execute(context.Background(), older)); applied {
			t.Error("superseded search should be discarded")
		}
		if applied, _ := h.c.Apply(h.c.Execute(context.Background(), newer)); !applied {
			t.Error("latest refresh should apply")
		}
		if h.c.State().Location != yogyakarta {
			t.Errorf("Location = %+v, want Yogyakarta", h.c.State().Location)
		}
	})

	t.Run("stale error is dropped", func(t *testing.T) {
		h := newHarness(t, nil)
		older := h.c.Search("Atlantis")
		h.c.Refresh()

		applied, err := h.c.Apply(h.c.Execute(context.Background(), older))
		if applied || err != nil {
			t.Errorf("Apply(stale error) = %v, %v; want false, nil", applied, err)
		}
	})
}

func TestController_InFlightAndAutoRefresh(t *testing.T) {
	h := newHarness(t, nil)
	if !h.c.ShouldAutoRefresh() {
		t.Error("idle controller should allow auto-refresh")
	}

	r1 := h.c.Refresh()
	r2 := h.c.Refresh()
	if h.c.ShouldAutoRefresh() {
		t.Error("auto-refresh should be skipped while requests are in flight")
	}

	h.c.Apply(h.c.Execute(context.Background(), r2))
	if !h.c.InFlight() {
		t.Error("one request should still be in flight")
	}
	h.c.Apply(h.c.Execute(context.Background(), r1))
	if h.c.InFlight() || !h.c.ShouldAutoRefresh() {
		t.Error("all results applied, controller should be idle")
	}
}

func TestController_ToggleUnits(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run(t, h.c.Search("Paris")); err != nil {
		t.Fatalf("Search error = %v", err)
	}

	req := h.c.ToggleUnits()
	if req.Units.System != units.Imperial {
		t.Errorf("request units = %v, want imperial", req.Units.System)
	}
	if req.Location != paris {
		t.Errorf("request location = %+v, want the active location", req.Location)
	}

	// Displayed snapshot is still metric until the re-fetch lands
	s := h.c.State()
	if s.Units.System != units.Imperial || s.SnapshotUnits.System != units.Metric {
		t.Errorf("Units/SnapshotUnits = %v/%v, want imperial/metric", s.Units.System, s.SnapshotUnits.System)
	}

	if _, err := h.run(t, req); err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	s = h.c.State()
	if s.SnapshotUnits.System != units.Imperial {
		t.Errorf("SnapshotUnits = %v, want imperial", s.SnapshotUnits.System)
	}
	if s.Snapshot.Temperature != 68 {
		t.Errorf("Temperature = %v, want 68", s.Snapshot.Temperature)
	}
	last := h.fetcher.calls[len(h.fetcher.calls)-1]
	if last.coord != paris.Coordinate || last.policy.System != units.Imperial {
		t.Errorf("last fetch = %+v, want Paris imperial", last)
	}
}

func TestController_ToggleUnitsFetchFails(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run(t, h.c.Start()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	h.fetcher.err = fmt.Errorf("%w: timeout", openmeteo.ErrFetch)
	if _, err := h.run(t, h.c.ToggleUnits()); !errors.Is(err, openmeteo.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}

	s := h.c.State()
	if s.Units.System != units.Imperial {
		t.Error("unit toggle should stick even when the fetch fails")
	}
	if s.SnapshotUnits.System != units.Metric || s.Snapshot.Temperature != 20 {
		t.Error("old metric snapshot should remain displayed with metric suffixes")
	}
}

func TestController_Geolocate(t *testing.T) {
	here := models.Coordinate{Latitude: 51.5, Longitude: -0.12}
	h := newHarness(t, geolocation.FixedLocator{Coordinate: here})
	if _, err := h.run(t, h.c.Search("Paris")); err != nil {
		t.Fatalf("Search error = %v", err)
	}

	if _, err := h.run(t, h.c.Geolocate()); err != nil {
		t.Fatalf("Geolocate error = %v", err)
	}
	s := h.c.State()
	if s.Location.Name != GeolocatedName || s.Location.Coordinate != here {
		t.Errorf("Location = %+v, want %s at %v", s.Location, GeolocatedName, here)
	}
	if !s.Pinned {
		t.Error("geolocated location should be pinned")
	}
}

func TestController_GeolocateFailureLeavesState(t *testing.T) {
	h := newHarness(t, geolocation.DisabledLocator{})
	if _, err := h.run(t, h.c.Search("Paris")); err != nil {
		t.Fatalf("Search error = %v", err)
	}
	before := h.c.State()

	applied, err := h.run(t, h.c.Geolocate())
	if applied {
		t.Error("failed geolocation should not apply")
	}
	if !errors.Is(err, geolocation.ErrGeolocation) {
		t.Errorf("error = %v, want ErrGeolocation", err)
	}
	after := h.c.State()
	if after.Location != before.Location || after.Pinned != before.Pinned || after.Snapshot != before.Snapshot {
		t.Error("failed geolocation changed the displayed state")
	}
	if len(h.fetcher.calls) != 1 {
		t.Errorf("fetch calls = %d, want 1", len(h.fetcher.calls))
	}
}

func TestController_SelectFavorite(t *testing.T) {
	h := newHarness(t, nil)
	entry := models.FavoriteEntry{Name: "Lima", Coordinate: models.Coordinate{Latitude: -12.04, Longitude: -77.03}}
	h.favorites.entries = []models.FavoriteEntry{entry}

	req := h.c.SelectFavorite(entry)
	if _, err := h.run(t, req); err != nil {
		t.Fatalf("SelectFavorite error = %v", err)
	}

	s := h.c.State()
	if s.Location.Name != "Lima" || s.Location.Coordinate != entry.Coordinate {
		t.Errorf("Location = %+v, want Lima", s.Location)
	}
	if !s.Favorite {
		t.Error("Favorite = false for a saved location")
	}
	if s.Pinned {
		t.Error("favorite location should not be pinned")
	}
}

func TestController_ToggleFavorite(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.run(t, h.c.Search("Paris")); err != nil {
		t.Fatalf("Search error = %v", err)
	}
	fetches := len(h.fetcher.calls)

	on, err := h.c.ToggleFavorite()
	if err != nil || !on {
		t.Fatalf("ToggleFavorite() = %v, %v; want true, nil", on, err)
	}
	if !h.c.State().Favorite {
		t.Error("State().Favorite = false after adding")
	}
	if favs := h.c.Favorites(); len(favs) != 1 || favs[0].Name != "Paris" || favs[0].Coordinate != paris.Coordinate {
		t.Errorf("Favorites() = %+v, want [Paris]", favs)
	}

	on, err = h.c.ToggleFavorite()
	if err != nil || on {
		t.Fatalf("ToggleFavorite() = %v, %v; want false, nil", on, err)
	}
	if len(h.c.Favorites()) != 0 {
		t.Error("Favorites() should be empty after toggle pair")
	}
	if len(h.fetcher.calls) != fetches {
		t.Error("favorite toggle should not re-fetch")
	}
}

func TestController_ToggleFavoriteError(t *testing.T) {
	h := newHarness(t, nil)
	h.favorites.toggleErr = errors.New("disk full")

	on, err := h.c.ToggleFavorite()
	if err == nil {
		t.Fatal("ToggleFavorite() expected error")
	}
	if on || h.c.State().Favorite {
		t.Error("failed toggle should leave Favorite false")
	}
}

func TestController_Suggest(t *testing.T) {
	tests := []struct {
		input     string
		wantCalls int
	}{
		{"", 0},
		{"Pa", 0},
		{"  Pa  ", 0},
		{"東京", 0},
		{"Par", 1},
		{"東京都", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := newHarness(t, nil)
			h.resolver.suggestions = []models.Suggestion{{Name: "Paris", Country: "France"}}

			got := h.c.Suggest(context.Background(), tt.input)
			if len(h.resolver.suggestCall) != tt.wantCalls {
				t.Errorf("Suggest(%q) made %d lookups, want %d", tt.input, len(h.resolver.suggestCall), tt.wantCalls)
			}
			if tt.wantCalls == 0 && len(got) != 0 {
				t.Errorf("Suggest(%q) = %v, want empty", tt.input, got)
			}
			if tt.wantCalls == 1 && h.resolver.lastLimit != 5 {
				t.Errorf("limit = %d, want 5", h.resolver.lastLimit)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if KindUnits.String() != "units" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}

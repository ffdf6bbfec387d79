package dashboard

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
	"github.com/ngmaloney/weather-terminal/internal/units"
)

const (
	// DefaultRefreshInterval is how often the active location is re-fetched
	DefaultRefreshInterval = 5 * time.Minute

	// DefaultSuggestDebounce is the quiet period before suggestions are requested
	DefaultSuggestDebounce = 500 * time.Millisecond

	// MinSuggestLength is the shortest input that triggers suggestions
	MinSuggestLength = 3

	// GeolocatedName labels the location found by geolocation
	GeolocatedName = "My Location"
)

// Resolver turns place names into locations
type Resolver interface {
	Resolve(ctx context.Context, name string) (models.Location, error)
	Suggest(ctx context.Context, partial string, limit int) []models.Suggestion
}

// FavoriteStore is the persisted favorites set
type FavoriteStore interface {
	IsFavorite(name string) bool
	Toggle(entry models.FavoriteEntry) (bool, error)
	List() []models.FavoriteEntry
}

// Kind identifies what started a request
type Kind int

const (
	KindStart Kind = iota
	KindRefresh
	KindSearch
	KindGeolocate
	KindFavorite
	KindUnits
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindRefresh:
		return "refresh"
	case KindSearch:
		return "search"
	case KindGeolocate:
		return "geolocate"
	case KindFavorite:
		return "favorite"
	case KindUnits:
		return "units"
	}
	return "unknown"
}

// Request is everything Execute needs. It is a value so it can cross into a
// goroutine without touching controller state.
type Request struct {
	ID       string
	Gen      uint64
	Kind     Kind
	Query    string          // KindSearch only
	Location models.Location // ignored for KindSearch and KindGeolocate
	Pinned   bool
	Units    units.Policy
}

// Result is the outcome of executing a Request
type Result struct {
	Request  Request
	Location models.Location
	Pinned   bool
	Snapshot models.WeatherSnapshot
	Forecast models.Forecast
	Err      error
}

// State is what the dashboard currently shows
type State struct {
	Location models.Location
	Pinned   bool // geolocated or the startup default

	// Units is the active policy for the next fetch. SnapshotUnits is the
	// policy the displayed snapshot was fetched with; they differ after a
	// unit toggle whose fetch failed.
	Units         units.Policy
	SnapshotUnits units.Policy

	Snapshot  *models.WeatherSnapshot
	Forecast  models.Forecast
	Favorite  bool
	UpdatedAt time.Time
}

// Options configures a Controller
type Options struct {
	DefaultLocation models.Location
	Units           units.Policy
	SuggestionLimit int
}

// Controller owns the dashboard state. Every method except Execute and
// Suggest must be called from the UI event loop.
type Controller struct {
	resolver  Resolver
	fetcher   openmeteo.WeatherClient
	locator   geolocation.Locator
	favorites FavoriteStore
	logger    *zap.Logger

	suggestionLimit int

	state    State
	issued   uint64
	inFlight int
}

// NewController creates a controller showing opts.DefaultLocation, pinned
func NewController(resolver Resolver, fetcher openmeteo.WeatherClient, locator geolocation.Locator, favorites FavoriteStore, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locator == nil {
		locator = geolocation.DisabledLocator{}
	}
	return &Controller{
		resolver:        resolver,
		fetcher:         fetcher,
		locator:         locator,
		favorites:       favorites,
		logger:          logger.Named("dashboard"),
		suggestionLimit: opts.SuggestionLimit,
		state: State{
			Location:      opts.DefaultLocation,
			Pinned:        true,
			Units:         opts.Units,
			SnapshotUnits: opts.Units,
			Favorite:      favorites.IsFavorite(opts.DefaultLocation.Name),
		},
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	s := c.state
	s.Forecast = append(models.Forecast(nil), c.state.Forecast...)
	return s
}

// Favorites lists saved locations in insertion order
func (c *Controller) Favorites() []models.FavoriteEntry {
	return c.favorites.List()
}

// InFlight reports whether any issued request has not been applied yet
func (c *Controller) InFlight() bool {
	return c.inFlight > 0
}

// ShouldAutoRefresh reports whether the periodic refresh should fire now
func (c *Controller) ShouldAutoRefresh() bool {
	return c.inFlight == 0
}

// Start loads the startup location
func (c *Controller) Start() Request {
	return c.issue(KindStart, func(r *Request) {
		r.Location = c.state.Location
		r.Pinned = c.state.Pinned
	})
}

// Refresh re-fetches the active location
func (c *Controller) Refresh() Request {
	return c.issue(KindRefresh, func(r *Request) {
		r.Location = c.state.Location
		r.Pinned = c.state.Pinned
	})
}

// Search resolves query by name and fetches it
func (c *Controller) Search(query string) Request {
	return c.issue(KindSearch, func(r *Request) {
		r.Query = strings.TrimSpace(query)
	})
}

// Geolocate fetches the device position
func (c *Controller) Geolocate() Request {
	return c.issue(KindGeolocate, nil)
}

// SelectFavorite loads a saved location by its stored coordinate
func (c *Controller) SelectFavorite(entry models.FavoriteEntry) Request {
	return c.issue(KindFavorite, func(r *Request) {
		r.Location = entry.Location()
	})
}

// ToggleUnits flips the unit system and re-fetches the same coordinate.
// The displayed snapshot keeps its old units until the fetch lands.
func (c *Controller) ToggleUnits() Request {
	c.state.Units = c.state.Units.Toggle()
	return c.issue(KindUnits, func(r *Request) {
		r.Location = c.state.Location
		r.Pinned = c.state.Pinned
	})
}

func (c *Controller) issue(kind Kind, fill func(*Request)) Request {
	c.issued++
	c.inFlight++

	req := Request{
		ID:    uuid.NewString(),
		Gen:   c.issued,
		Kind:  kind,
		Units: c.state.Units,
	}
	if fill != nil {
		fill(&req)
	}

	c.logger.Debug("request issued",
		zap.String("request_id", req.ID),
		zap.Uint64("gen", req.Gen),
		zap.Stringer("kind", req.Kind),
	)
	return req
}

// Execute performs the network work for req. It is safe to call off the
// event loop because it reads only req and immutable collaborators.
func (c *Controller) Execute(ctx context.Context, req Request) Result {
	res := Result{Request: req, Location: req.Location, Pinned: req.Pinned}
	log := c.logger.With(zap.String("request_id", req.ID), zap.Stringer("kind", req.Kind))

	switch req.Kind {
	case KindSearch:
		loc, err := c.resolver.Resolve(ctx, req.Query)
		if err != nil {
			log.Info("search failed", zap.String("query", req.Query), zap.Error(err))
			res.Err = err
			return res
		}
		res.Location = loc
		res.Pinned = false
	case KindGeolocate:
		coord, err := c.locator.Locate(ctx)
		if err != nil {
			log.Info("geolocation failed", zap.Error(err))
			res.Err = err
			return res
		}
		res.Location = models.Location{Name: GeolocatedName, Coordinate: coord}
		res.Pinned = true
	}

	snapshot, forecast, err := c.fetcher.Fetch(ctx, res.Location.Coordinate, req.Units)
	if err != nil {
		log.Warn("fetch failed", zap.String("location", res.Location.Name), zap.Error(err))
		res.Err = err
		return res
	}
	res.Snapshot = snapshot
	res.Forecast = forecast

	log.Info("weather loaded",
		zap.String("location", res.Location.Name),
		zap.Stringer("coordinate", res.Location.Coordinate),
	)
	return res
}

// Apply folds a result into the state. Results from requests older than the
// newest issued one are dropped, errors included. A failed result leaves the
// state untouched and returns its error for the user.
func (c *Controller) Apply(res Result) (bool, error) {
	if c.inFlight > 0 {
		c.inFlight--
	}

	if res.Request.Gen < c.issued {
		c.logger.Debug("discarding stale result",
			zap.String("request_id", res.Request.ID),
			zap.Uint64("gen", res.Request.Gen),
			zap.Uint64("latest", c.issued),
		)
		return false, nil
	}
	if res.Err != nil {
		return false, res.Err
	}

	snapshot := res.Snapshot
	c.state.Location = res.Location
	c.state.Pinned = res.Pinned
	c.state.Snapshot = &snapshot
	c.state.Forecast = res.Forecast
	c.state.SnapshotUnits = res.Request.Units
	c.state.Favorite = c.favorites.IsFavorite(res.Location.Name)
	c.state.UpdatedAt = snapshot.ObservedAt
	return true, nil
}

// ToggleFavorite adds or removes the active location from favorites
func (c *Controller) ToggleFavorite() (bool, error) {
	entry := models.FavoriteEntry{
		Name:       c.state.Location.Name,
		Coordinate: c.state.Location.Coordinate,
	}
	on, err := c.favorites.Toggle(entry)
	if err != nil {
		c.logger.Error("favorite toggle failed", zap.String("name", entry.Name), zap.Error(err))
		return c.state.Favorite, err
	}
	c.state.Favorite = on
	return on, nil
}

// Suggest returns completion candidates for text. Input shorter than
// MinSuggestLength characters yields nothing and makes no request.
func (c *Controller) Suggest(ctx context.Context, text string) []models.Suggestion {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinSuggestLength {
		return nil
	}
	return c.resolver.Suggest(ctx, text, c.suggestionLimit)
}

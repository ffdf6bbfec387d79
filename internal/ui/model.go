package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ngmaloney/weather-terminal/internal/dashboard"
	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/geolocation"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openmeteo"
	"github.com/ngmaloney/weather-terminal/internal/preferences"
)

// AppState represents the current state of the application
type AppState int

const (
	StateLoading AppState = iota // Waiting for the first snapshot
	StateDisplay                 // Showing weather
	StateError                   // Blocking error notice
)

// Focus is the component receiving keystrokes
type Focus int

const (
	FocusSearch Focus = iota
	FocusFavorites
)

const (
	wideLayoutWidth = 100
	favoritesWidth  = 30
	favoritesHeight = 12
)

// ThemeStore persists the display theme
type ThemeStore interface {
	Theme() (preferences.Theme, error)
	SetTheme(theme preferences.Theme) error
}

// Options configures a Model
type Options struct {
	RefreshInterval time.Duration
	SuggestDebounce time.Duration
	InitialQuery    string // searched instead of loading the default location
	Logger          *zap.Logger
}

// Model represents the application's state
type Model struct {
	state  AppState
	focus  Focus
	width  int
	height int
	err    error

	controller *dashboard.Controller
	themes     ThemeStore
	theme      preferences.Theme
	styles     styles
	logger     *zap.Logger

	refreshInterval time.Duration
	suggestDebounce time.Duration
	initialQuery    string

	// Search
	searchInput textinput.Model
	suggestSeq  int
	suggestions []models.Suggestion

	favorites list.Model
	spinner   spinner.Model
}

// NewModel creates a new application model
func NewModel(controller *dashboard.Controller, themes ThemeStore, opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = dashboard.DefaultRefreshInterval
	}
	if opts.SuggestDebounce <= 0 {
		opts.SuggestDebounce = dashboard.DefaultSuggestDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("ui")

	theme := preferences.ThemeLight
	if themes != nil {
		t, err := themes.Theme()
		if err != nil {
			logger.Warn("loading theme", zap.Error(err))
		}
		theme = t
	}

	ti := textinput.New()
	ti.Placeholder = "Search city (e.g. Paris, Tokyo, Yogyakarta)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50
	ti.ShowSuggestions = true

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		state:           StateLoading,
		focus:           FocusSearch,
		controller:      controller,
		themes:          themes,
		theme:           theme,
		styles:          newStyles(theme),
		logger:          logger,
		refreshInterval: opts.RefreshInterval,
		suggestDebounce: opts.SuggestDebounce,
		initialQuery:    strings.TrimSpace(opts.InitialQuery),
		searchInput:     ti,
		favorites:       createFavoritesList(controller.Favorites(), favoritesWidth-6, favoritesHeight),
		spinner:         s,
	}
}

// Init loads the startup location and arms the auto-refresh timer
func (m Model) Init() tea.Cmd {
	req := m.controller.Start()
	if m.initialQuery != "" {
		req = m.controller.Search(m.initialQuery)
	}

	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.run(req),
		scheduleRefresh(m.refreshInterval),
	)
}

func (m Model) run(req dashboard.Request) tea.Cmd {
	return executeRequest(m.controller, req)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.favorites.SetSize(favoritesWidth-6, max(favoritesHeight, msg.Height-24))
		return m, nil

	case weatherLoadedMsg:
		return m.handleResult(msg.result)

	case suggestTickMsg:
		// A newer keystroke superseded this one
		if msg.seq != m.suggestSeq {
			return m, nil
		}
		return m, fetchSuggestions(m.controller, msg.seq, msg.text)

	case suggestionsMsg:
		if msg.seq != m.suggestSeq {
			return m, nil
		}
		m.setSuggestions(msg.suggestions)
		return m, nil

	case refreshTickMsg:
		next := scheduleRefresh(m.refreshInterval)
		if !m.controller.ShouldAutoRefresh() {
			m.logger.Debug("auto-refresh skipped, request in flight")
			return m, next
		}
		return m, tea.Batch(next, m.run(m.controller.Refresh()))

	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and friends
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleResult applies a finished request to the dashboard
func (m Model) handleResult(res dashboard.Result) (tea.Model, tea.Cmd) {
	applied, err := m.controller.Apply(res)
	if err != nil {
		m.err = err
		m.state = StateError
		return m, nil
	}
	if !applied {
		return m, nil
	}

	m.state = StateDisplay
	// Keep anything typed while the search was in flight
	if res.Request.Kind == dashboard.KindSearch &&
		strings.TrimSpace(m.searchInput.Value()) == res.Request.Query {
		m.searchInput.SetValue("")
		m.clearSuggestions()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Any key dismisses the error notice; the previous display remains
	if m.state == StateError {
		m.err = nil
		m.state = StateDisplay
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlR:
		return m, m.run(m.controller.Refresh())

	case tea.KeyCtrlU:
		return m, m.run(m.controller.ToggleUnits())

	case tea.KeyCtrlL:
		return m, m.run(m.controller.Geolocate())

	case tea.KeyCtrlF:
		if _, err := m.controller.ToggleFavorite(); err != nil {
			m.err = err
			m.state = StateError
			return m, nil
		}
		cmd := m.favorites.SetItems(favoriteItems(m.controller.Favorites()))
		return m, cmd

	case tea.KeyCtrlT:
		return m.toggleTheme()

	case tea.KeyTab:
		if m.focus == FocusSearch && m.canAcceptSuggestion() {
			break
		}
		return m.switchFocus(), nil
	}

	if m.focus == FocusFavorites {
		return m.handleFavoritesKey(msg)
	}
	return m.handleSearchInput(msg)
}

// handleSearchInput handles keyboard input in the search box
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		// Drop any pending suggestion lookup
		m.suggestSeq++
		m.clearSuggestions()
		return m, m.run(m.controller.Search(query))
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	value := m.searchInput.Value()
	if value == before {
		return m, cmd
	}

	m.suggestSeq++
	if utf8.RuneCountInString(strings.TrimSpace(value)) < dashboard.MinSuggestLength {
		m.clearSuggestions()
		return m, cmd
	}
	return m, tea.Batch(cmd, scheduleSuggest(m.suggestDebounce, m.suggestSeq, value))
}

// handleFavoritesKey handles keyboard input in the favorites list
func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if item, ok := m.favorites.SelectedItem().(favoriteItem); ok {
			return m, m.run(m.controller.SelectFavorite(item.entry))
		}
		return m, nil
	case tea.KeyEsc:
		return m.switchFocus(), nil
	}

	var cmd tea.Cmd
	m.favorites, cmd = m.favorites.Update(msg)
	return m, cmd
}

func (m Model) switchFocus() Model {
	if m.focus == FocusSearch {
		m.focus = FocusFavorites
		m.searchInput.Blur()
	} else {
		m.focus = FocusSearch
		m.searchInput.Focus()
	}
	return m
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	next := m.theme.Toggle()
	m.theme = next
	m.styles = newStyles(next)
	m.logger.Debug("theme changed", zap.String("theme", string(next)))
	return m, saveTheme(m.themes, next)
}

func (m *Model) canAcceptSuggestion() bool {
	s := m.searchInput.CurrentSuggestion()
	return s != "" && !strings.EqualFold(s, m.searchInput.Value())
}

func (m *Model) setSuggestions(suggestions []models.Suggestion) {
	m.suggestions = suggestions

	// The input completes to the bare name
	names := make([]string, 0, len(suggestions))
	seen := make(map[string]bool, len(suggestions))
	for _, s := range suggestions {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	m.searchInput.SetSuggestions(names)
}

func (m *Model) clearSuggestions() {
	m.suggestions = nil
	m.searchInput.SetSuggestions(nil)
}

// errorMessage turns a failure into the text shown to the user
func errorMessage(err error) string {
	switch {
	case errors.Is(err, geocoding.ErrNotFound):
		return "City not found. Check the spelling and try again."
	case errors.Is(err, geocoding.ErrUnavailable):
		return "City search is unavailable right now. Try again shortly."
	case errors.Is(err, openmeteo.ErrFetch):
		return "Could not load weather data. Press Ctrl+R to try again."
	case errors.Is(err, geolocation.ErrGeolocation):
		return "Your location is unavailable."
	}
	return "Something went wrong."
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.state == StateError {
		return m.viewError()
	}
	return m.viewDashboard()
}

// viewError renders the error view
func (m Model) viewError() string {
	title := m.styles.errorTitle.Render("✗ Error")

	var detail string
	if m.err != nil {
		detail = m.styles.muted.Render(m.err.Error())
	}

	help := m.styles.help.Render("Press any key to continue • Ctrl+C: Quit")

	var sections []string
	sections = append(sections, title)
	sections = append(sections, "")
	sections = append(sections, errorMessage(m.err))
	if detail != "" {
		sections = append(sections, detail)
	}
	sections = append(sections, "")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewDashboard renders the search box, weather and favorites
func (m Model) viewDashboard() string {
	state := m.controller.State()

	var sections []string
	sections = append(sections, m.viewHeader(state))
	sections = append(sections, m.styles.searchBox.Render(m.searchInput.View()))
	if line := m.viewSuggestions(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, "")

	switch {
	case state.Snapshot == nil && m.state == StateLoading:
		sections = append(sections, fmt.Sprintf("%s Loading weather for %s...", m.spinner.View(), state.Location.Name))
	case state.Snapshot == nil:
		sections = append(sections, m.styles.muted.Render("No weather data available"))
	case m.width >= wideLayoutWidth:
		sections = append(sections, m.viewWide(state))
	default:
		sections = append(sections, m.renderWeatherSimple(state))
	}

	if m.width < wideLayoutWidth {
		sections = append(sections, "", m.renderFavoritesSimple())
	}

	help := m.styles.help.Render("Enter: Search • Tab: Favorites • Ctrl+R: Refresh • Ctrl+U: °C/°F • Ctrl+F: Favorite • Ctrl+L: My location • Ctrl+T: Theme • Ctrl+C: Quit")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader(state dashboard.State) string {
	title := m.styles.title.Render("☀ Weather Terminal")

	status := m.styles.muted.Render(fmt.Sprintf("%s • %s", state.Units.TemperatureSuffix(), m.theme))
	if m.controller.InFlight() {
		status = fmt.Sprintf("%s %s", m.spinner.View(), status)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", status)
}

func (m Model) viewSuggestions() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	parts := make([]string, len(m.suggestions))
	for i, s := range m.suggestions {
		parts[i] = s.String()
	}
	return m.styles.muted.Render("  " + strings.Join(parts, " | "))
}

func (m Model) viewWide(state dashboard.State) string {
	currentWidth := m.width - favoritesWidth - 2
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCurrentPane(state, currentWidth),
		m.renderFavoritesPane(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.renderForecastPane(state))
}

package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/weather-terminal/internal/dashboard"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/preferences"
)

// Message types for async operations

// weatherLoadedMsg carries the outcome of one dashboard request
type weatherLoadedMsg struct {
	result dashboard.Result
}

// suggestTickMsg fires when the debounce window for seq has elapsed
type suggestTickMsg struct {
	seq  int
	text string
}

// suggestionsMsg carries the suggestions looked up for seq
type suggestionsMsg struct {
	seq         int
	suggestions []models.Suggestion
}

// refreshTickMsg is the periodic auto-refresh timer
type refreshTickMsg time.Time

// errMsg reports a background failure outside the weather requests
type errMsg struct {
	err error
}

const (
	requestTimeout = 30 * time.Second
	suggestTimeout = 10 * time.Second
)

// executeRequest runs a dashboard request in the background
func executeRequest(c *dashboard.Controller, req dashboard.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return weatherLoadedMsg{result: c.Execute(ctx, req)}
	}
}

// scheduleSuggest waits out the debounce window before asking for suggestions
func scheduleSuggest(delay time.Duration, seq int, text string) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return suggestTickMsg{seq: seq, text: text}
	})
}

// fetchSuggestions looks up completions in the background
func fetchSuggestions(c *dashboard.Controller, seq int, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
		defer cancel()

		return suggestionsMsg{seq: seq, suggestions: c.Suggest(ctx, text)}
	}
}

// scheduleRefresh arms the next auto-refresh tick
func scheduleRefresh(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// saveTheme persists the theme choice in the background
func saveTheme(store ThemeStore, theme preferences.Theme) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.SetTheme(theme); err != nil {
			return errMsg{err: fmt.Errorf("saving theme: %w", err)}
		}
		return nil
	}
}

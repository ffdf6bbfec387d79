package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// favoriteItem wraps a FavoriteEntry for use in a list
type favoriteItem struct {
	entry models.FavoriteEntry
}

// FilterValue implements list.Item
func (f favoriteItem) FilterValue() string {
	return f.entry.Name
}

// Title implements list.DefaultItem
func (f favoriteItem) Title() string {
	return f.entry.Name
}

// Description implements list.DefaultItem
func (f favoriteItem) Description() string {
	return f.entry.Coordinate.String()
}

func favoriteItems(entries []models.FavoriteEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = favoriteItem{entry: e}
	}
	return items
}

// createFavoritesList creates a list.Model from saved favorites
func createFavoritesList(entries []models.FavoriteEntry, width, height int) list.Model {
	l := list.New(favoriteItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Favorites"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("favorite", "favorites")

	return l
}

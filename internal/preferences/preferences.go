package preferences

import (
	"database/sql"
	"errors"
	"fmt"
)

// Theme is the stored display theme token
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	themeKey = "theme"
)

// Toggle returns the other theme
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts only the two literal tokens
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Repository reads and writes preferences in the sqlite preferences table
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new preferences repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Theme returns the saved theme, or ThemeLight when none is saved or the
// stored value is not a known token.
func (r *Repository) Theme() (Theme, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE key = ?", themeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, fmt.Errorf("reading theme: %w", err)
	}

	theme, err := ParseTheme(value)
	if err != nil {
		return ThemeLight, nil
	}
	return theme, nil
}

// SetTheme persists the theme
func (r *Repository) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		themeKey, string(theme),
	)
	if err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

package favorites

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"go.uber.org/zap"
)

// Store is the persisted list of favorite locations, unique by name and
// iterated in insertion order. Every mutation is committed before it returns.
type Store struct {
	db      *sql.DB
	logger  *zap.Logger
	mu      sync.RWMutex
	entries []models.FavoriteEntry
}

// Open loads the saved favorites from db
func Open(db *sql.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{db: db, logger: logger.Named("favorites")}

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	s.entries = entries
	s.logger.Debug("loaded favorites", zap.Int("count", len(entries)))
	return s, nil
}

func (s *Store) load() ([]models.FavoriteEntry, error) {
	rows, err := s.db.Query("SELECT name, latitude, longitude FROM favorites ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var entries []models.FavoriteEntry
	for rows.Next() {
		var e models.FavoriteEntry
		if err := rows.Scan(&e.Name, &e.Coordinate.Latitude, &e.Coordinate.Longitude); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading favorites: %w", err)
	}
	return entries, nil
}

// IsFavorite reports whether a favorite with this name exists
func (s *Store) IsFavorite(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(name) >= 0
}

// Toggle removes the entry if its name is already saved, otherwise adds it.
// It returns the new membership state.
func (s *Store) Toggle(entry models.FavoriteEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(entry.Name); i >= 0 {
		if _, err := s.db.Exec("DELETE FROM favorites WHERE name = ?", entry.Name); err != nil {
			return true, fmt.Errorf("deleting favorite: %w", err)
		}
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		s.logger.Info("removed favorite", zap.String("name", entry.Name))
		return false, nil
	}

	if err := entry.Coordinate.Validate(); err != nil {
		return false, fmt.Errorf("saving favorite %q: %w", entry.Name, err)
	}

	_, err := s.db.Exec(
		"INSERT INTO favorites (name, latitude, longitude) VALUES (?, ?, ?)",
		entry.Name, entry.Coordinate.Latitude, entry.Coordinate.Longitude,
	)
	if err != nil {
		return false, fmt.Errorf("saving favorite: %w", err)
	}
	s.entries = append(s.entries, entry)
	s.logger.Info("added favorite", zap.String("name", entry.Name))
	return true, nil
}

// List returns the favorites in insertion order
func (s *Store) List() []models.FavoriteEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FavoriteEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) indexOf(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

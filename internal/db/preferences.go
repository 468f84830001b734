package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"nosh/internal/match"
)

// ErrInvalidPreferences is returned when a preference value is out of range.
var ErrInvalidPreferences = errors.New("invalid preferences")

// DefaultPreferences is what a fresh install starts with: no constraints.
func DefaultPreferences() match.Preferences {
	return match.Preferences{
		DietaryRestrictions: []match.DietaryRestriction{},
		Cuisines:            []match.CuisinePreference{},
		Sort:                match.SortBestMatch,
	}
}

// ValidatePreferences checks every field against its allowed range.
func ValidatePreferences(p match.Preferences) error {
	if p.PriceCeiling < match.PriceUnknown || p.PriceCeiling > match.PriceVeryExpensive {
		return fmt.Errorf("%w: price ceiling %d is outside 0-4", ErrInvalidPreferences, p.PriceCeiling)
	}
	if math.IsNaN(p.MinimumRating) || p.MinimumRating < 0 || p.MinimumRating > match.MaxRating {
		return fmt.Errorf("%w: minimum rating %v is outside 0-5", ErrInvalidPreferences, p.MinimumRating)
	}
	if d := p.MaxDistanceMeters; d != nil && (math.IsNaN(*d) || math.IsInf(*d, 0) || *d < 0) {
		return fmt.Errorf("%w: max distance %v is not a non-negative number", ErrInvalidPreferences, *d)
	}
	for _, r := range p.DietaryRestrictions {
		if !r.Valid() {
			return fmt.Errorf("%w: unknown dietary restriction %q", ErrInvalidPreferences, r)
		}
	}
	for _, c := range p.Cuisines {
		if match.NormalizeTag(c.Tag) == "" {
			return fmt.Errorf("%w: empty cuisine tag", ErrInvalidPreferences)
		}
		if w := c.Weight; w != nil && (math.IsNaN(*w) || *w < 0 || *w > 1) {
			return fmt.Errorf("%w: cuisine %q weight %v is outside 0-1", ErrInvalidPreferences, c.Tag, *w)
		}
	}
	if !p.Sort.Valid() {
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidPreferences, p.Sort)
	}
	return nil
}

// LoadPreferences returns the stored preferences, or DefaultPreferences when
// none have been saved yet.
func LoadPreferences(db *sql.DB) (match.Preferences, error) {
	query := `
		SELECT dietary, cuisines, price_ceiling, minimum_rating, max_distance_meters, sort
		FROM preferences
		WHERE id = 1
	`

	var dietaryJSON, cuisinesJSON, sortBy string
	var ceiling int
	var minRating float64
	var maxDistance sql.NullFloat64

	err := db.QueryRow(query).Scan(&dietaryJSON, &cuisinesJSON, &ceiling, &minRating, &maxDistance, &sortBy)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return match.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	p := match.Preferences{
		PriceCeiling:  match.PriceTier(ceiling),
		MinimumRating: minRating,
		Sort:          match.SortPreference(sortBy),
	}
	if err := json.Unmarshal([]byte(dietaryJSON), &p.DietaryRestrictions); err != nil {
		return match.Preferences{}, fmt.Errorf("failed to decode dietary restrictions: %w", err)
	}
	if err := json.Unmarshal([]byte(cuisinesJSON), &p.Cuisines); err != nil {
		return match.Preferences{}, fmt.Errorf("failed to decode cuisines: %w", err)
	}
	if maxDistance.Valid {
		p.MaxDistanceMeters = match.Float(maxDistance.Float64)
	}
	if p.DietaryRestrictions == nil {
		p.DietaryRestrictions = []match.DietaryRestriction{}
	}
	if p.Cuisines == nil {
		p.Cuisines = []match.CuisinePreference{}
	}
	if p.Sort == "" {
		p.Sort = match.SortBestMatch
	}

	return p, nil
}

// SavePreferences validates and upserts the single preferences row.
func SavePreferences(db *sql.DB, p match.Preferences) error {
	if err := ValidatePreferences(p); err != nil {
		return err
	}

	dietary := p.DietaryRestrictions
	if dietary == nil {
		dietary = []match.DietaryRestriction{}
	}
	cuisines := p.Cuisines
	if cuisines == nil {
		cuisines = []match.CuisinePreference{}
	}
	dietaryJSON, err := json.Marshal(dietary)
	if err != nil {
		return fmt.Errorf("failed to encode dietary restrictions: %w", err)
	}
	cuisinesJSON, err := json.Marshal(cuisines)
	if err != nil {
		return fmt.Errorf("failed to encode cuisines: %w", err)
	}

	sortBy := p.Sort
	if sortBy == "" {
		sortBy = match.SortBestMatch
	}

	query := `
		INSERT INTO preferences (id, dietary, cuisines, price_ceiling, minimum_rating, max_distance_meters, sort, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			dietary = excluded.dietary,
			cuisines = excluded.cuisines,
			price_ceiling = excluded.price_ceiling,
			minimum_rating = excluded.minimum_rating,
			max_distance_meters = excluded.max_distance_meters,
			sort = excluded.sort,
			updated_at = excluded.updated_at
	`
	if _, err := db.Exec(query, string(dietaryJSON), string(cuisinesJSON), int(p.PriceCeiling), p.MinimumRating,
		nullFloat(p.MaxDistanceMeters), string(sortBy), now()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Store exposes the preferences row to services that should not see *sql.DB.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadPreferences implements feed.PreferenceStore.
func (s *Store) LoadPreferences() (match.Preferences, error) {
	return LoadPreferences(s.db)
}

// SavePreferences implements feed.PreferenceStore.
func (s *Store) SavePreferences(p match.Preferences) error {
	return SavePreferences(s.db, p)
}

package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"nosh/internal/model"
)

// ErrFavoriteNotFound is returned when no favorite has the requested id.
var ErrFavoriteNotFound = fmt.Errorf("favorite not found: %w", sql.ErrNoRows)

const favoriteColumns = `id, business_id, name, address, phone, price_range, rating, review_count,
	categories, latitude, longitude, image_url, url, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListFavorites returns saved favorites, newest first, optionally filtered by
// name, address, or category.
func ListFavorites(db *sql.DB, filter string) ([]model.FavoriteRow, error) {
	query := `
		SELECT ` + favoriteColumns + `
		FROM favorites
		WHERE (? = '' OR name LIKE '%' || ? || '%' OR address LIKE '%' || ? || '%' OR categories LIKE '%' || ? || '%')
		ORDER BY created_at DESC, id DESC
	`

	filter = strings.TrimSpace(filter)
	rows, err := db.Query(query, filter, filter, filter, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	results := []model.FavoriteRow{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, model.FavoriteRow{
			ID:          f.ID,
			BusinessID:  f.BusinessID,
			Name:        f.Name,
			Address:     f.Address,
			Cuisine:     model.PrimaryCuisine(f.Categories),
			PriceRange:  f.PriceRange,
			Rating:      f.Rating,
			ReviewCount: f.ReviewCount,
			Notes:       f.Notes,
			CreatedAt:   f.CreatedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}

	return results, nil
}

// GetFavorite retrieves a single favorite by ID.
func GetFavorite(db *sql.DB, id int64) (model.Favorite, error) {
	row := db.QueryRow(`SELECT `+favoriteColumns+` FROM favorites WHERE id = ?`, id)
	f, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Favorite{}, ErrFavoriteNotFound
	}
	return f, err
}

// GetFavoriteByBusinessID retrieves the favorite saved for a Yelp business.
func GetFavoriteByBusinessID(db *sql.DB, businessID string) (model.Favorite, error) {
	row := db.QueryRow(`SELECT `+favoriteColumns+` FROM favorites WHERE business_id = ?`, businessID)
	f, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Favorite{}, ErrFavoriteNotFound
	}
	return f, err
}

// FavoriteBusinessIDs returns the set of saved business ids for marking results.
func FavoriteBusinessIDs(db *sql.DB) (map[string]int64, error) {
	rows, err := db.Query(`SELECT id, business_id FROM favorites`)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var businessID string
		if err := rows.Scan(&id, &businessID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite id: %w", err)
		}
		ids[businessID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite ids: %w", err)
	}
	return ids, nil
}

// InsertFavorite saves a business. Saving one that is already a favorite
// refreshes the snapshot and keeps its notes and id.
func InsertFavorite(db *sql.DB, f model.NewFavorite) (int64, error) {
	if strings.TrimSpace(f.BusinessID) == "" {
		return 0, fmt.Errorf("failed to insert favorite: business id is empty")
	}
	categories, err := encodeCategories(f.Categories)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO favorites (business_id, name, address, phone, price_range, rating, review_count,
			categories, latitude, longitude, image_url, url, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(business_id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			phone = excluded.phone,
			price_range = excluded.price_range,
			rating = excluded.rating,
			review_count = excluded.review_count,
			categories = excluded.categories,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			image_url = excluded.image_url,
			url = excluded.url,
			notes = COALESCE(excluded.notes, favorites.notes)
		RETURNING id
	`

	var id int64
	err = db.QueryRow(query,
		f.BusinessID, f.Name, nullString(f.Address), nullString(f.Phone), nullString(f.PriceRange),
		nullFloat(f.Rating), f.ReviewCount, categories, nullFloat(f.Latitude), nullFloat(f.Longitude),
		nullString(f.ImageURL), nullString(f.URL), nullString(f.Notes), now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert favorite: %w", err)
	}
	return id, nil
}

// InsertFavoriteWithID restores a deleted favorite with its original id and timestamp.
func InsertFavoriteWithID(db *sql.DB, f model.Favorite) error {
	categories, err := encodeCategories(f.Categories)
	if err != nil {
		return err
	}
	createdAt := now()
	if !f.CreatedAt.IsZero() {
		createdAt = f.CreatedAt.UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO favorites (` + favoriteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(query,
		f.ID, f.BusinessID, f.Name, nullString(f.Address), nullString(f.Phone), nullString(f.PriceRange),
		nullFloat(f.Rating), f.ReviewCount, categories, nullFloat(f.Latitude), nullFloat(f.Longitude),
		nullString(f.ImageURL), nullString(f.URL), nullString(f.Notes), createdAt,
	); err != nil {
		return fmt.Errorf("failed to insert favorite with id: %w", err)
	}
	return nil
}

// UpdateFavoriteNotes replaces the notes on a favorite.
func UpdateFavoriteNotes(db *sql.DB, id int64, notes string) error {
	result, err := db.Exec(`UPDATE favorites SET notes = ? WHERE id = ?`, nullString(strings.TrimSpace(notes)), id)
	if err != nil {
		return fmt.Errorf("failed to update favorite notes: %w", err)
	}
	return requireAffected(result)
}

// DeleteFavorite removes a favorite.
func DeleteFavorite(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func scanFavorite(row rowScanner) (model.Favorite, error) {
	var f model.Favorite
	var address, phone, priceRange, imageURL, url, notes sql.NullString
	var rating, latitude, longitude sql.NullFloat64
	var categories, createdAt string

	if err := row.Scan(
		&f.ID, &f.BusinessID, &f.Name, &address, &phone, &priceRange, &rating, &f.ReviewCount,
		&categories, &latitude, &longitude, &imageURL, &url, &notes, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Favorite{}, err
		}
		return model.Favorite{}, fmt.Errorf("failed to scan favorite: %w", err)
	}

	f.Address = address.String
	f.Phone = phone.String
	f.PriceRange = priceRange.String
	f.ImageURL = imageURL.String
	f.URL = url.String
	f.Notes = notes.String
	if rating.Valid {
		f.Rating = &rating.Float64
	}
	if latitude.Valid {
		f.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		f.Longitude = &longitude.Float64
	}
	if err := json.Unmarshal([]byte(categories), &f.Categories); err != nil {
		return model.Favorite{}, fmt.Errorf("failed to decode favorite categories: %w", err)
	}
	f.CreatedAt = parseTime(createdAt)

	return f, nil
}

func encodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	return string(data), nil
}

package db

import (
	"database/sql"
	"fmt"
	"strings"

	"nosh/internal/model"
)

// DefaultRecentSearches is how many searches the search tab lists.
const DefaultRecentSearches = 10

const keepRecentSearches = 50

// RecordSearch remembers a search. Re-running an existing search moves it to the top.
func RecordSearch(db *sql.DB, term, location string) error {
	term = strings.TrimSpace(term)
	location = strings.TrimSpace(location)
	if term == "" && location == "" {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO recent_searches (term, location, seq, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM recent_searches), ?)
		ON CONFLICT(term, location) DO UPDATE SET
			seq = excluded.seq,
			created_at = excluded.created_at
	`
	if _, err := tx.Exec(query, term, location, now()); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM recent_searches
		WHERE id NOT IN (SELECT id FROM recent_searches ORDER BY seq DESC LIMIT ?)
	`, keepRecentSearches); err != nil {
		return fmt.Errorf("failed to prune recent searches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, most recent first.
func RecentSearches(db *sql.DB, limit int) ([]model.RecentSearch, error) {
	if limit <= 0 {
		limit = DefaultRecentSearches
	}

	rows, err := db.Query(`
		SELECT id, term, location, created_at
		FROM recent_searches
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	defer rows.Close()

	results := []model.RecentSearch{}
	for rows.Next() {
		var r model.RecentSearch
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Term, &r.Location, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent search: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent searches: %w", err)
	}
	return results, nil
}

// ClearRecentSearches forgets every recorded search.
func ClearRecentSearches(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM recent_searches`); err != nil {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	return nil
}

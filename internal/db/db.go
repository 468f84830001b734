package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    id                  INTEGER PRIMARY KEY CHECK(id = 1),
    dietary             TEXT NOT NULL DEFAULT '[]',
    cuisines            TEXT NOT NULL DEFAULT '[]',
    price_ceiling       INTEGER NOT NULL DEFAULT 0 CHECK(price_ceiling BETWEEN 0 AND 4),
    minimum_rating      REAL NOT NULL DEFAULT 0 CHECK(minimum_rating BETWEEN 0 AND 5),
    max_distance_meters REAL CHECK(max_distance_meters >= 0 OR max_distance_meters IS NULL),
    sort                TEXT NOT NULL DEFAULT 'best_match',
    updated_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS favorites (
    id           INTEGER PRIMARY KEY,
    business_id  TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    address      TEXT,
    phone        TEXT,
    price_range  TEXT CHECK(price_range IN ('$','$$','$$$','$$$$') OR price_range IS NULL),
    rating       REAL CHECK(rating BETWEEN 0 AND 5 OR rating IS NULL),
    review_count INTEGER NOT NULL DEFAULT 0,
    categories   TEXT NOT NULL DEFAULT '[]',
    latitude     REAL,
    longitude    REAL,
    image_url    TEXT,
    url          TEXT,
    notes        TEXT,
    created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS recent_searches (
    id         INTEGER PRIMARY KEY,
    term       TEXT NOT NULL DEFAULT '',
    location   TEXT NOT NULL DEFAULT '',
    seq        INTEGER NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    UNIQUE(term, location)
);

CREATE INDEX IF NOT EXISTS idx_favorites_created_at ON favorites(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_recent_searches_seq ON recent_searches(seq DESC);
`

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// uiPrefsVersion is bumped when the ui_prefs.json layout changes. Files
// written by a newer nosh are ignored rather than half-read.
const uiPrefsVersion = 1

// TablePrefs stores per-table UI preferences.
type TablePrefs struct {
	SortKey       string   `json:"sort_key"`
	SortDesc      bool     `json:"sort_desc"`
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// sanitized drops column keys the table no longer has. It never hides every column.
func (p TablePrefs) sanitized(columns []string, fallback TablePrefs) TablePrefs {
	out := TablePrefs{SortDesc: p.SortDesc}
	if slices.Contains(columns, p.SortKey) {
		out.SortKey = p.SortKey
	} else {
		out.SortKey, out.SortDesc = fallback.SortKey, fallback.SortDesc
	}
	if slices.Contains(columns, p.ActiveColumn) {
		out.ActiveColumn = p.ActiveColumn
	}
	for _, c := range p.HiddenColumns {
		if slices.Contains(columns, c) && !slices.Contains(out.HiddenColumns, c) {
			out.HiddenColumns = append(out.HiddenColumns, c)
		}
	}
	if len(out.HiddenColumns) >= len(columns) {
		out.HiddenColumns = nil
	}
	return out
}

// UIPreferences stores persisted layout preferences. Matching preferences
// live in the database, not here.
type UIPreferences struct {
	Version   int        `json:"version"`
	Favorites TablePrefs `json:"favorites"`
}

// defaultUIPreferences lists favorites newest first.
func defaultUIPreferences() UIPreferences {
	return UIPreferences{
		Version:   uiPrefsVersion,
		Favorites: TablePrefs{SortKey: "saved", SortDesc: true},
	}
}

func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".nosh", "ui_prefs.json"), nil
}

func loadUIPreferences() UIPreferences {
	path, err := prefsPath()
	if err != nil {
		return defaultUIPreferences()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultUIPreferences()
	}
	return decodeUIPreferences(data)
}

// decodeUIPreferences accepts unversioned files from before the version
// field existed.
func decodeUIPreferences(data []byte) UIPreferences {
	defaults := defaultUIPreferences()

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaults
	}
	if prefs.Version > uiPrefsVersion {
		return defaults
	}

	prefs.Version = uiPrefsVersion
	prefs.Favorites = prefs.Favorites.sanitized(favoriteColumnKeys(), defaults.Favorites)
	return prefs
}

func saveUIPreferences(prefs UIPreferences) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	prefs.Version = uiPrefsVersion
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file behind.
	tmp, err := os.CreateTemp(dir, "ui_prefs-*.json")
	if err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}

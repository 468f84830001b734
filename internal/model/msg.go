package model

import (
	"image"

	"nosh/internal/match"
)

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// FeedSource says which tab asked for a feed page.
type FeedSource int

const (
	FeedHome FeedSource = iota
	FeedSearch
)

// FeedLoadedMsg is sent when a ranked page arrives.
type FeedLoadedMsg struct {
	Source   FeedSource
	Term     string
	Location string
	Results  []match.Result
	Page     int
	PageSize int
	Total    int
	HasMore  bool
	// Generation is the feed generation the page was ranked under.
	Generation uint64
}

// FavoritesLoadedMsg is sent when favorites are loaded.
type FavoritesLoadedMsg struct {
	Favorites []FavoriteRow
	Saved     map[string]int64 // business id -> favorite id
}

// RecentSearchesLoadedMsg is sent when the recent search list is loaded.
type RecentSearchesLoadedMsg struct {
	Searches []RecentSearch
}

// BusinessDetailLoadedMsg is sent when a business detail is loaded.
type BusinessDetailLoadedMsg struct {
	Business  match.Business
	Score     *float64
	Breakdown *match.Breakdown
	Favorite  *Favorite
	FromSaved bool // loaded from the favorites snapshot, not Yelp
}

// BusinessImageLoadedMsg carries the decoded photo for a detail view.
type BusinessImageLoadedMsg struct {
	BusinessID string
	Image      image.Image
}

// FavoriteSavedMsg is sent when a business is saved as a favorite.
type FavoriteSavedMsg struct {
	ID       int64
	Favorite Favorite
	Existed  bool
}

// DeleteFavoriteMsg is sent when a favorite is deleted.
type DeleteFavoriteMsg struct {
	ID      int64
	Deleted Favorite
}

// FavoriteNotesSavedMsg is sent after notes are edited.
type FavoriteNotesSavedMsg struct {
	ID     int64
	Before string
	After  string
}

// PreferencesSavedMsg is sent when preferences are persisted.
type PreferencesSavedMsg struct {
	Before match.Preferences
	After  match.Preferences
}

// PreferencesChangedMsg is delivered from the feed subscription.
type PreferencesChangedMsg struct {
	Preferences match.Preferences
}

// SearchSubmittedMsg is sent by the search form.
type SearchSubmittedMsg struct {
	Term     string
	Location string
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenSearch
	ScreenFavorites
	ScreenPreferences
	ScreenBusinessDetail
	ScreenNotesForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)

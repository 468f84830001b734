package model

import (
	"strings"
	"time"

	"nosh/internal/match"
)

// Favorite is a saved business. The business fields are a snapshot taken
// when it was saved, so the row stays readable offline.
type Favorite struct {
	ID          int64
	BusinessID  string
	Name        string
	Address     string
	Phone       string
	PriceRange  string // $, $$, $$$, $$$$ or empty
	Rating      *float64
	ReviewCount int
	Categories  []string
	Latitude    *float64
	Longitude   *float64
	ImageURL    string
	URL         string
	Notes       string
	CreatedAt   time.Time
}

// FavoriteRow is a favorite shaped for list display.
type FavoriteRow struct {
	ID          int64
	BusinessID  string
	Name        string
	Address     string
	Cuisine     string
	PriceRange  string
	Rating      *float64
	ReviewCount int
	Notes       string
	CreatedAt   time.Time
}

// NewFavorite represents data for creating a favorite.
type NewFavorite struct {
	BusinessID  string
	Name        string
	Address     string
	Phone       string
	PriceRange  string
	Rating      *float64
	ReviewCount int
	Categories  []string
	Latitude    *float64
	Longitude   *float64
	ImageURL    string
	URL         string
	Notes       string
}

// RecentSearch is a previously run search.
type RecentSearch struct {
	ID        int64
	Term      string
	Location  string
	CreatedAt time.Time
}

// Label renders the search as it appears in the recent list.
func (r RecentSearch) Label() string {
	switch {
	case r.Term == "":
		return r.Location
	case r.Location == "":
		return r.Term
	default:
		return r.Term + " · " + r.Location
	}
}

// NewFavoriteFromBusiness snapshots b for saving.
func NewFavoriteFromBusiness(b match.Business) NewFavorite {
	nf := NewFavorite{
		BusinessID:  b.ID,
		Name:        b.Name,
		Address:     b.Address,
		Phone:       b.Phone,
		PriceRange:  b.Price.String(),
		ReviewCount: b.ReviewCount,
		Categories:  append([]string(nil), b.Categories...),
		ImageURL:    b.ImageURL,
		URL:         b.URL,
	}
	if b.Rating > 0 {
		nf.Rating = match.Float(b.Rating)
	}
	if b.Coordinates != (match.Coordinates{}) {
		nf.Latitude = match.Float(b.Coordinates.Latitude)
		nf.Longitude = match.Float(b.Coordinates.Longitude)
	}
	return nf
}

// Business rebuilds a business record from the snapshot. Distance and open
// state are not stored and come back unknown.
func (f Favorite) Business() match.Business {
	b := match.Business{
		ID:          f.BusinessID,
		Name:        f.Name,
		Address:     f.Address,
		Phone:       f.Phone,
		Price:       match.ParsePriceTier(f.PriceRange),
		ReviewCount: f.ReviewCount,
		Categories:  append([]string(nil), f.Categories...),
		ImageURL:    f.ImageURL,
		URL:         f.URL,
	}
	if f.Rating != nil {
		b.Rating = *f.Rating
	}
	if f.Latitude != nil && f.Longitude != nil {
		b.Coordinates = match.Coordinates{Latitude: *f.Latitude, Longitude: *f.Longitude}
	}
	return b
}

// PrimaryCuisine is the first category, or "" when there are none.
func PrimaryCuisine(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	return strings.TrimSpace(categories[0])
}

package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nosh/internal/db"
	"nosh/internal/feed"
	"nosh/internal/logging"
	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/search"
)

// requestTimeout bounds every provider call made from the UI.
const requestTimeout = 10 * time.Second

// detailFavoriteMsg refreshes the saved snapshot shown on an open detail.
type detailFavoriteMsg struct {
	businessID string
	favorite   *model.Favorite
}

func loadFeedCmd(svc *feed.Service, source model.FeedSource, req feed.Request, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		p, err := svc.Page(ctx, req, page)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.FeedLoadedMsg{
			Source:   source,
			Term:     req.Term,
			Location: req.Location,
			Results:  p.Results,
			Page:     p.Page,
			PageSize: p.PageSize,
			Total:      p.Total,
			HasMore:    p.HasMore,
			Generation: p.Generation,
		}
	}
}

func refreshFeedCmd(svc *feed.Service, source model.FeedSource, req feed.Request) tea.Cmd {
	load := loadFeedCmd(svc, source, req, 0)
	return func() tea.Msg {
		svc.Refresh()
		return load()
	}
}

func loadFavoritesCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		favorites, err := db.ListFavorites(database, "")
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		saved, err := db.FavoriteBusinessIDs(database)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.FavoritesLoadedMsg{Favorites: favorites, Saved: saved}
	}
}

func loadRecentSearchesCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		recent, err := db.RecentSearches(database, db.DefaultRecentSearches)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RecentSearchesLoadedMsg{Searches: recent}
	}
}

func recordSearchCmd(database *sql.DB, term, location string) tea.Cmd {
	return func() tea.Msg {
		if err := db.RecordSearch(database, term, location); err != nil {
			return model.ErrorMsg{Err: err}
		}
		recent, err := db.RecentSearches(database, db.DefaultRecentSearches)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RecentSearchesLoadedMsg{Searches: recent}
	}
}

// loadBusinessDetailCmd refetches the business for fresh hours. The ranked
// copy is shown when the lookup fails or no client is configured.
func loadBusinessDetailCmd(client *search.YelpClient, svc *feed.Service, database *sql.DB, log logging.Logger, r match.Result) tea.Cmd {
	return func() tea.Msg {
		b := r.Business
		if client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			fresh, err := client.GetBusiness(ctx, b.ID)
			cancel()
			if err != nil {
				log.WithError(err).Warn("business lookup failed, using ranked copy", map[string]interface{}{"business_id": b.ID})
			} else {
				if fresh.DistanceMeters == nil {
					fresh.DistanceMeters = b.DistanceMeters
				}
				b = fresh
			}
		}

		var favorite *model.Favorite
		f, err := db.GetFavoriteByBusinessID(database, b.ID)
		switch {
		case err == nil:
			favorite = &f
		case !errors.Is(err, db.ErrFavoriteNotFound):
			return model.ErrorMsg{Err: fmt.Errorf("failed to load favorite: %w", err)}
		}

		breakdown := match.Explain(r.Business, svc.Preferences())
		score := r.Score
		return model.BusinessDetailLoadedMsg{
			Business:  b,
			Score:     &score,
			Breakdown: &breakdown,
			Favorite:  favorite,
		}
	}
}

func loadSavedDetailCmd(database *sql.DB, svc *feed.Service, favoriteID int64) tea.Cmd {
	return func() tea.Msg {
		f, err := db.GetFavorite(database, favoriteID)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load favorite: %w", err)}
		}
		b := f.Business()
		breakdown := match.Explain(b, svc.Preferences())
		score := breakdown.Total()
		return model.BusinessDetailLoadedMsg{
			Business:  b,
			Score:     &score,
			Breakdown: &breakdown,
			Favorite:  &f,
			FromSaved: true,
		}
	}
}

func loadDetailFavoriteCmd(database *sql.DB, businessID string) tea.Cmd {
	return func() tea.Msg {
		f, err := db.GetFavoriteByBusinessID(database, businessID)
		if errors.Is(err, db.ErrFavoriteNotFound) {
			return detailFavoriteMsg{businessID: businessID}
		}
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load favorite: %w", err)}
		}
		return detailFavoriteMsg{businessID: businessID, favorite: &f}
	}
}

func loadPhotoCmd(client *search.YelpClient, log logging.Logger, businessID, imageURL string) tea.Cmd {
	if client == nil || imageURL == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		img, err := client.FetchImage(ctx, imageURL)
		if err != nil {
			log.WithError(err).Debug("photo unavailable", map[string]interface{}{"business_id": businessID})
			return nil
		}
		return model.BusinessImageLoadedMsg{BusinessID: businessID, Image: img}
	}
}

func saveFavoriteCmd(database *sql.DB, b match.Business) tea.Cmd {
	return func() tea.Msg {
		_, err := db.GetFavoriteByBusinessID(database, b.ID)
		existed := err == nil
		if err != nil && !errors.Is(err, db.ErrFavoriteNotFound) {
			return model.ErrorMsg{Err: fmt.Errorf("failed to check favorite: %w", err)}
		}

		id, err := db.InsertFavorite(database, model.NewFavoriteFromBusiness(b))
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		saved, err := db.GetFavorite(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to reload favorite: %w", err)}
		}
		return model.FavoriteSavedMsg{ID: id, Favorite: saved, Existed: existed}
	}
}

func deleteFavoriteCmd(database *sql.DB, favoriteID int64) tea.Cmd {
	return func() tea.Msg {
		f, err := db.GetFavorite(database, favoriteID)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load favorite before delete: %w", err)}
		}
		if err := db.DeleteFavorite(database, favoriteID); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to delete favorite: %w", err)}
		}
		return model.DeleteFavoriteMsg{ID: favoriteID, Deleted: f}
	}
}

// waitForPreferencesCmd blocks until the feed reports a preference change.
func waitForPreferencesCmd(events <-chan match.Preferences) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-events
		if !ok {
			return nil
		}
		return model.PreferencesChangedMsg{Preferences: p}
	}
}

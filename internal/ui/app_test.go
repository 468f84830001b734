package ui

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosh/internal/db"
	"nosh/internal/feed"
	"nosh/internal/logging"
	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/search"
)

type stubProvider struct {
	businesses []match.Business
}

func (p stubProvider) SearchAll(ctx context.Context, q search.Query, maxResults int) ([]match.Business, error) {
	return p.businesses, nil
}

func newTestModel(t *testing.T) (Model, *sql.DB) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	database, err := db.Open(filepath.Join(t.TempDir(), "nosh.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	provider := stubProvider{businesses: []match.Business{
		{ID: "souvla", Name: "Souvla", Rating: 4.5, ReviewCount: 1200, Price: match.PriceModerate, Categories: []string{"greek"}, DistanceMeters: match.Float(400)},
		{ID: "nopa", Name: "Nopa", Rating: 4.3, ReviewCount: 5000, Price: match.PriceExpensive, Categories: []string{"american"}, DistanceMeters: match.Float(900)},
	}}
	svc := feed.New(provider, db.NewStore(database), feed.Options{PageSize: 1})
	require.NoError(t, svc.Load())

	m := New(Options{
		DB:     database,
		Feed:   svc,
		Logger: logging.NewTestLogger(t),
		Home:   feed.Request{Location: "Hayes Valley"},
	})
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model), database
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAppRoutesHomeFeed(t *testing.T) {
	m, _ := newTestModel(t)

	msg := loadFeedCmd(m.feed, model.FeedHome, m.home, 0)()
	loaded, ok := msg.(model.FeedLoadedMsg)
	require.True(t, ok, "got %T", msg)
	assert.True(t, loaded.HasMore)

	m, _ = update(t, m, loaded)
	assert.False(t, m.loading)
	r, ok := m.homeResults.Selected()
	require.True(t, ok)
	assert.Equal(t, "souvla", r.Business.ID)
	assert.Contains(t, m.View(), "Souvla")

	stale := loaded
	stale.Location = "Somewhere else"
	stale.Results = nil
	m, _ = update(t, m, stale)
	_, ok = m.homeResults.Selected()
	assert.True(t, ok, "a page for another request is ignored")
}

func TestAppNextPageLoadsFollowingPage(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, loadFeedCmd(m.feed, model.FeedHome, m.home, 0)())

	m, cmd := update(t, m, keyRune(']'))
	require.NotNil(t, cmd)

	m, _ = update(t, m, loadFeedCmd(m.feed, model.FeedHome, m.home, 1)())
	assert.Equal(t, 1, m.homeResults.Page())
	r, ok := m.homeResults.Selected()
	require.True(t, ok)
	assert.Equal(t, "nopa", r.Business.ID)

	m, _ = update(t, m, keyRune(']'))
	assert.Equal(t, "Last page", m.info)
}

func TestAppTabsWrap(t *testing.T) {
	m, _ := newTestModel(t)
	require.Equal(t, model.ScreenHome, m.screen)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, model.ScreenSearch, m.screen)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, model.ScreenPreferences, m.screen)
	assert.Contains(t, m.View(), "Preferences")
}

func TestAppSearchFallsBackToHomeLocation(t *testing.T) {
	m, database := newTestModel(t)

	m, cmd := update(t, m, model.SearchSubmittedMsg{Term: "gyro"})
	require.NotNil(t, cmd)
	require.NotNil(t, m.searchResults)
	assert.Equal(t, feed.Request{Term: "gyro", Location: "Hayes Valley"}, m.searchResults.Request())
	assert.Equal(t, model.ModeNav, m.mode)

	loaded := loadFeedCmd(m.feed, model.FeedSearch, m.searchResults.Request(), 0)()
	m, _ = update(t, m, loaded)
	_, ok := m.searchResults.Selected()
	assert.True(t, ok)

	recorded, ok := recordSearchCmd(database, "gyro", "")().(model.RecentSearchesLoadedMsg)
	require.True(t, ok)
	m, _ = update(t, m, recorded)
	require.Len(t, m.searchForm.recent, 1)
	assert.Equal(t, "gyro", m.searchForm.recent[0].Term)
}

func TestAppSaveFavoriteAndUndo(t *testing.T) {
	m, database := newTestModel(t)
	m, _ = update(t, m, loadFeedCmd(m.feed, model.FeedHome, m.home, 0)())

	_, cmd := update(t, m, keyRune('f'))
	require.NotNil(t, cmd)
	saved, ok := cmd().(model.FavoriteSavedMsg)
	require.True(t, ok)
	assert.False(t, saved.Existed)

	m, cmd = update(t, m, saved)
	require.NotNil(t, cmd)
	assert.Equal(t, saved.ID, m.saved["souvla"])
	require.Len(t, m.undoStack, 1)

	m, cmd = update(t, m, keyRune('u'))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.info, "Undid")
	assert.Len(t, m.redoStack, 1)

	_, err := db.GetFavorite(database, saved.ID)
	assert.ErrorIs(t, err, db.ErrFavoriteNotFound)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.info, "Redid")

	restored, err := db.GetFavorite(database, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Souvla", restored.Name)
}

func TestAppResavingDoesNotPushUndo(t *testing.T) {
	m, _ := newTestModel(t)

	b := match.Business{ID: "souvla", Name: "Souvla", Rating: 4.5}
	first, ok := saveFavoriteCmd(m.db, b)().(model.FavoriteSavedMsg)
	require.True(t, ok)
	m, _ = update(t, m, first)

	again, ok := saveFavoriteCmd(m.db, b)().(model.FavoriteSavedMsg)
	require.True(t, ok)
	assert.True(t, again.Existed)
	assert.Equal(t, first.ID, again.ID)

	m, _ = update(t, m, again)
	assert.Len(t, m.undoStack, 1)
}

func TestAppPreferenceChangeReloadsFeeds(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, loadFeedCmd(m.feed, model.FeedHome, m.home, 0)())
	m, _ = update(t, m, model.SearchSubmittedMsg{Term: "gyro", Location: "Mission"})

	require.NoError(t, m.feed.UpdatePreferences(match.Preferences{MinimumRating: 4.4, Sort: match.SortBestMatch}))
	changed := waitForPreferencesCmd(m.prefEvents)()
	require.IsType(t, model.PreferencesChangedMsg{}, changed)

	m, cmd := update(t, m, changed)
	require.NotNil(t, cmd)
	_, ok := m.homeResults.Selected()
	assert.False(t, ok, "home list is reset until the new page arrives")
	assert.Equal(t, feed.Request{Term: "gyro", Location: "Mission"}, m.searchResults.Request())

	m, _ = update(t, m, loadFeedCmd(m.feed, model.FeedHome, m.home, 0)())
	assert.Equal(t, 1, m.homeResults.total, "only Souvla clears 4.4")
}

func TestAppDropsPageRankedUnderOldPreferences(t *testing.T) {
	m, _ := newTestModel(t)

	// Ranked before the change, delivered after the fresh page.
	old := loadFeedCmd(m.feed, model.FeedHome, m.home, 0)()
	require.IsType(t, model.FeedLoadedMsg{}, old)
	require.Equal(t, 2, old.(model.FeedLoadedMsg).Total)

	require.NoError(t, m.feed.UpdatePreferences(match.Preferences{MinimumRating: 4.4, Sort: match.SortBestMatch}))
	m, _ = update(t, m, waitForPreferencesCmd(m.prefEvents)())

	fresh := loadFeedCmd(m.feed, model.FeedHome, m.home, 0)()
	m, _ = update(t, m, fresh)
	require.Equal(t, 1, m.homeResults.total)

	m, _ = update(t, m, old)
	assert.Equal(t, 1, m.homeResults.total, "older page must not replace the fresh one")
	for _, r := range m.homeResults.results {
		assert.NotEqual(t, "nopa", r.Business.ID, "nopa is below the minimum rating")
	}
	assert.NotContains(t, m.View(), "Nopa")
}

func TestAppErrorBanner(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, model.ErrorMsg{Err: feed.ErrNoLocation})
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "no location")
}

func TestAppNotesEditFlow(t *testing.T) {
	m, database := newTestModel(t)
	saved, ok := saveFavoriteCmd(m.db, match.Business{ID: "nopa", Name: "Nopa"})().(model.FavoriteSavedMsg)
	require.True(t, ok)
	m, _ = update(t, m, saved)

	m, _ = update(t, m, loadFavoritesCmd(m.db)())
	m.screen = model.ScreenFavorites

	m, _ = update(t, m, keyRune('e'))
	require.Equal(t, model.ScreenNotesForm, m.screen)
	require.Equal(t, model.ModeInsert, m.mode)

	for _, r := range "burger" {
		m, _ = update(t, m, keyRune(r))
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, model.ScreenFavorites, m.screen)
	assert.Equal(t, model.ModeNav, m.mode)
	f, err := db.GetFavorite(database, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "burger", f.Notes)
}

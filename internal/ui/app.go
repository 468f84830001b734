package ui

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nosh/internal/feed"
	"nosh/internal/logging"
	"nosh/internal/match"
	"nosh/internal/model"
	"nosh/internal/search"
)

// Options wires the root model to its services.
type Options struct {
	DB       *sql.DB
	Feed     *feed.Service
	Client   *search.YelpClient
	Logger   logging.Logger
	Home     feed.Request // where the Home tab looks
	TermCaps TerminalCapabilities
}

// Model is the root Bubble Tea model.
type Model struct {
	db               *sql.DB
	feed             *feed.Service
	client           *search.YelpClient
	log              logging.Logger
	home             feed.Request
	termCapabilities TerminalCapabilities

	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool
	loading     bool
	spinner     spinner.Model

	// Screen models
	homeResults   *ResultsModel
	searchResults *ResultsModel
	favorites     *FavoritesModel
	detail        *BusinessDetailModel
	searchForm    *SearchFormModel
	prefsForm     *PreferencesFormModel
	notesForm     *NotesFormModel

	saved        map[string]int64 // business id -> favorite id
	detailReturn model.Screen
	notesReturn  model.Screen

	prefEvents  chan match.Preferences
	unsubscribe func()

	keys      KeyMap
	prefs     UIPreferences
	undoStack []undoAction
	redoStack []undoAction
}

var tabOrder = []model.Screen{
	model.ScreenHome,
	model.ScreenSearch,
	model.ScreenFavorites,
	model.ScreenPreferences,
}

// New creates a new root model. Call Close after the program exits.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	events := make(chan match.Preferences, 1)
	unsubscribe := opts.Feed.Subscribe(func(p match.Preferences) {
		// A pending event already triggers a reload of the latest preferences.
		select {
		case events <- p:
		default:
		}
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = HelpKeyStyle

	var generation uint64
	if opts.Feed != nil {
		generation = opts.Feed.Generation()
	}

	return Model{
		db:               opts.DB,
		feed:             opts.Feed,
		client:           opts.Client,
		log:              opts.Logger,
		home:             opts.Home,
		termCapabilities: opts.TermCaps,
		screen:           model.ScreenHome,
		mode:             model.ModeNav,
		gState:           GStateIdle,
		loading:          true,
		spinner:          sp,
		homeResults:      NewResultsModel(model.FeedHome, opts.Home, generation),
		searchForm:       NewSearchFormModel(opts.Home.Location),
		saved:            make(map[string]int64),
		prefEvents:       events,
		unsubscribe:      unsubscribe,
		keys:             DefaultKeyMap(),
		prefs:            loadUIPreferences(),
	}
}

// Close detaches the model from the feed service.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadFeedCmd(m.feed, model.FeedHome, m.home, 0),
		loadFavoritesCmd(m.db),
		loadRecentSearchesCmd(m.db),
		waitForPreferencesCmd(m.prefEvents),
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == model.ModeNav && m.columnJump {
			if msg.String() == "esc" {
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if res, ok := jumpToColumn(m.currentTable(), msg.String()); ok {
				m.applyTableResult(res)
				return m, nil
			}
		}

		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		m.loading = false
		m.log.WithError(msg.Err).Warn("action failed", map[string]interface{}{"screen": int(m.screen)})
		return m, nil

	case model.FeedLoadedMsg:
		target := m.homeResults
		if msg.Source == model.FeedSearch {
			target = m.searchResults
		}
		if target == nil || !target.Accepts(msg) {
			return m, nil
		}
		target.SetPage(msg)
		m.loading = false
		m.error = ""
		return m, nil

	case model.FavoritesLoadedMsg:
		m.favorites = NewFavoritesModel(msg.Favorites)
		m.favorites.ApplyPrefs(m.prefs.Favorites)
		m.saved = msg.Saved
		if m.saved == nil {
			m.saved = make(map[string]int64)
		}
		if m.detail != nil {
			return m, loadDetailFavoriteCmd(m.db, m.detail.business.ID)
		}
		return m, nil

	case detailFavoriteMsg:
		if m.detail != nil && m.detail.business.ID == msg.businessID {
			m.detail.SetFavorite(msg.favorite)
		}
		return m, nil

	case model.RecentSearchesLoadedMsg:
		m.searchForm.SetRecent(msg.Searches)
		return m, nil

	case model.BusinessDetailLoadedMsg:
		m.detail = NewBusinessDetailModel(msg)
		if m.screen != model.ScreenBusinessDetail {
			m.detailReturn = m.screen
		}
		m.screen = model.ScreenBusinessDetail
		m.loading = false
		m.error = ""
		return m, loadPhotoCmd(m.client, m.log, msg.Business.ID, msg.Business.ImageURL)

	case model.BusinessImageLoadedMsg:
		if m.detail != nil && m.detail.business.ID == msg.BusinessID {
			m.detail.SetPhoto(RenderBusinessPhoto(msg.Image, m.termCapabilities, photoWidth, photoHeight))
		}
		return m, nil

	case model.FavoriteSavedMsg:
		if action := m.buildFavoriteSaveAction(msg); action != nil {
			m.pushUndoAction(*action)
		}
		saved := msg.Favorite
		m.saved[saved.BusinessID] = msg.ID
		if m.detail != nil && m.detail.business.ID == saved.BusinessID {
			m.detail.SetFavorite(&saved)
		}
		if msg.Existed {
			m.info = "Refreshed saved copy of " + saved.Name
		} else {
			m.info = "Saved " + saved.Name + " (u to undo)"
		}
		m.error = ""
		return m, loadFavoritesCmd(m.db)

	case model.DeleteFavoriteMsg:
		m.pushUndoAction(m.buildDeleteFavoriteAction(msg))
		delete(m.saved, msg.Deleted.BusinessID)
		if m.detail != nil && m.detail.business.ID == msg.Deleted.BusinessID {
			if m.detail.fromSaved {
				m.screen = model.ScreenFavorites
				m.detail = nil
			} else {
				m.detail.SetFavorite(nil)
			}
		}
		m.info = "Removed " + msg.Deleted.Name + " (u to undo)"
		m.error = ""
		return m, loadFavoritesCmd(m.db)

	case model.FavoriteNotesSavedMsg:
		m.pushUndoAction(m.buildNotesAction(msg))
		m.mode = model.ModeNav
		m.screen = m.notesReturn
		m.notesForm = nil
		if m.detail != nil && m.detail.favorite != nil && m.detail.favorite.ID == msg.ID {
			updated := *m.detail.favorite
			updated.Notes = msg.After
			m.detail.SetFavorite(&updated)
		}
		m.info = "Notes saved"
		m.error = ""
		return m, loadFavoritesCmd(m.db)

	case model.PreferencesSavedMsg:
		m.pushUndoAction(m.buildPreferencesAction(msg))
		m.mode = model.ModeNav
		m.prefsForm = nil
		m.info = "Preferences saved (u to undo)"
		m.error = ""
		return m, nil

	case model.PreferencesChangedMsg:
		cmd := m.reloadFeeds()
		return m, cmd

	case model.SearchSubmittedMsg:
		m.mode = model.ModeNav
		m.searchForm.Blur()
		req := m.searchRequest(msg.Term, msg.Location)
		m.searchResults = NewResultsModel(model.FeedSearch, req, m.feedGeneration())
		m.error = ""
		spin := m.startLoading()
		return m, tea.Batch(
			recordSearchCmd(m.db, msg.Term, msg.Location),
			loadFeedCmd(m.feed, model.FeedSearch, req, 0),
			spin,
		)

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		switch m.screen {
		case model.ScreenSearch:
			m.searchForm.Blur()
		case model.ScreenPreferences:
			m.prefsForm = nil
		case model.ScreenNotesForm:
			m.notesForm = nil
			m.screen = m.notesReturn
		}
		return m, nil

	case undoAppliedMsg:
		cmd := m.applyUndoResult(msg)
		return m, cmd

	default:
		// Cursor blink and similar messages belong to the active form.
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

// reloadFeeds refetches the first page of every open feed after a
// preference change and waits for the next change.
func (m *Model) reloadFeeds() tea.Cmd {
	cmds := []tea.Cmd{waitForPreferencesCmd(m.prefEvents)}

	gen := m.feedGeneration()
	m.homeResults = NewResultsModel(model.FeedHome, m.home, gen)
	cmds = append(cmds, loadFeedCmd(m.feed, model.FeedHome, m.home, 0))

	if m.searchResults != nil {
		req := m.searchResults.Request()
		m.searchResults = NewResultsModel(model.FeedSearch, req, gen)
		cmds = append(cmds, loadFeedCmd(m.feed, model.FeedSearch, req, 0))
	}

	cmds = append(cmds, m.startLoading())
	return tea.Batch(cmds...)
}

func (m *Model) feedGeneration() uint64 {
	if m.feed == nil {
		return 0
	}
	return m.feed.Generation()
}

// searchRequest falls back to the home location when none was typed.
func (m *Model) searchRequest(term, location string) feed.Request {
	req := feed.Request{Term: strings.TrimSpace(term), Location: strings.TrimSpace(location)}
	if req.Location == "" {
		req.Location = m.home.Location
		req.Latitude = m.home.Latitude
		req.Longitude = m.home.Longitude
	}
	return req
}

func (m *Model) startLoading() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	return m.spinner.Tick
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	showTabs := isTopLevel(m.screen)

	// Header and footer take 2 lines each, tabs 2 more.
	contentHeight := m.height - 4
	if showTabs {
		contentHeight -= 2
	}
	if m.error != "" {
		contentHeight--
	}
	if m.info != "" {
		contentHeight--
	}
	contentHeight = max(contentHeight, 3)

	var content string
	var breadcrumbParts []string

	switch m.screen {
	case model.ScreenHome:
		breadcrumbParts = []string{"Home"}
		if label := requestLabel(m.home); label != "" {
			breadcrumbParts = append(breadcrumbParts, label)
		}
		content = m.homeResults.View(m.width, contentHeight, m.saved)
	case model.ScreenSearch:
		breadcrumbParts = []string{"Search"}
		form := m.searchForm.View(m.width)
		resultsHeight := max(3, contentHeight-lipgloss.Height(form))
		results := EmptyStateStyle.Width(m.width).Render("    Search for a dish or a place, near here or anywhere.")
		if m.searchResults != nil {
			if label := requestLabel(m.searchResults.Request()); label != "" {
				breadcrumbParts = append(breadcrumbParts, label)
			}
			results = m.searchResults.View(m.width, resultsHeight, m.saved)
		}
		content = lipgloss.JoinVertical(lipgloss.Left, form, results)
	case model.ScreenFavorites:
		breadcrumbParts = []string{"Favorites"}
		if m.favorites != nil {
			content = m.favorites.View(m.width, contentHeight)
		}
	case model.ScreenPreferences:
		breadcrumbParts = []string{"Preferences"}
		if m.prefsForm != nil {
			breadcrumbParts = append(breadcrumbParts, "Edit")
			content = m.prefsForm.View(m.width, contentHeight)
		} else {
			content = renderPreferencesSummary(m.feed.Preferences(), m.width, contentHeight)
		}
	case model.ScreenBusinessDetail:
		breadcrumbParts = []string{screenTitle(m.detailReturn), "Detail"}
		if m.detail != nil {
			breadcrumbParts[1] = m.detail.business.Name
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenNotesForm:
		breadcrumbParts = []string{screenTitle(m.notesReturn), "Notes"}
		if m.notesForm != nil {
			breadcrumbParts = []string{screenTitle(m.notesReturn), m.notesForm.name, "Notes"}
			content = m.notesForm.View(m.width, contentHeight)
		}
	}

	status := ""
	if m.loading {
		status = m.spinner.View() + " loading"
	}
	header := renderHeader(breadcrumbParts, status, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func isTopLevel(screen model.Screen) bool {
	for _, s := range tabOrder {
		if s == screen {
			return true
		}
	}
	return false
}

func screenTitle(screen model.Screen) string {
	switch screen {
	case model.ScreenSearch:
		return "Search"
	case model.ScreenFavorites:
		return "Favorites"
	case model.ScreenPreferences:
		return "Preferences"
	case model.ScreenBusinessDetail:
		return "Detail"
	default:
		return "Home"
	}
}

func requestLabel(req feed.Request) string {
	where := strings.TrimSpace(req.Location)
	if where == "" && req.Latitude != nil && req.Longitude != nil {
		where = fmt.Sprintf("%.3f, %.3f", *req.Latitude, *req.Longitude)
	}
	switch term := strings.TrimSpace(req.Term); {
	case term == "":
		return where
	case where == "":
		return term
	default:
		return term + " near " + where
	}
}

func renderTabs(screen model.Screen, width int) string {
	var tabStrings []string
	for _, tab := range tabOrder {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(screenTitle(tab)))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, status string, width int) string {
	title := HeaderStyle.Render("nosh")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	if status != "" {
		right = status + "   " + right
	}

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t := m.currentTable(); t != nil {
		if res, ok := applyTableControl(t, m.keys, msg); ok {
			m.applyTableResult(res)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			m.info = "Nothing to undo"
			return m, nil
		}
		cmd := m.undoCmd()
		return m, cmd
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			m.info = "Nothing to redo"
			return m, nil
		}
		cmd := m.redoCmd()
		return m, cmd
	}

	// Handle "gg" state machine
	if msg.String() == "g" {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			return m.handleJumpToTop()
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	if isTopLevel(m.screen) {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PrevTab):
			return m.switchTab(-1)
		case key.Matches(msg, m.keys.NextTab):
			return m.switchTab(1)
		}
	}

	switch m.screen {
	case model.ScreenHome:
		return m.handleResultsNav(msg, m.homeResults)
	case model.ScreenSearch:
		if key.Matches(msg, m.keys.Search) {
			m.mode = model.ModeInsert
			m.info = ""
			m.searchForm.Focus()
			return m, textinput.Blink
		}
		return m.handleResultsNav(msg, m.searchResults)
	case model.ScreenFavorites:
		return m.handleFavoritesNav(msg)
	case model.ScreenPreferences:
		return m.handlePreferencesNav(msg)
	case model.ScreenBusinessDetail:
		return m.handleDetailNav(msg)
	}

	return m, nil
}

func (m Model) switchTab(step int) (tea.Model, tea.Cmd) {
	idx := 0
	for i, s := range tabOrder {
		if s == m.screen {
			idx = i
		}
	}
	m.screen = tabOrder[(idx+step+len(tabOrder))%len(tabOrder)]
	m.info = ""
	if m.screen == model.ScreenFavorites && m.favorites == nil {
		return m, loadFavoritesCmd(m.db)
	}
	return m, nil
}

func (m *Model) currentTable() tableController {
	if m.screen == model.ScreenFavorites && m.favorites != nil {
		return m.favorites
	}
	return nil
}

func (m *Model) applyTableResult(res tableControlResult) {
	m.info = res.info
	if res.startJump {
		m.columnJump = true
	}
	if res.jumped {
		m.columnJump = false
	}
	if res.persist {
		m.persistCurrentTablePrefs()
	}
}

func (m *Model) persistCurrentTablePrefs() {
	if m.screen != model.ScreenFavorites || m.favorites == nil {
		return
	}
	m.prefs.Favorites = m.favorites.Prefs()
	if err := saveUIPreferences(m.prefs); err != nil {
		m.log.WithError(err).Warn("failed to save table prefs", nil)
	}
}

// handleInsertMode handles insert/edit mode input.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenSearch:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			newForm, cmd := m.searchForm.Update(keyMsg)
			m.searchForm = &newForm
			return m, cmd
		}
	case model.ScreenPreferences:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && m.prefsForm != nil {
			newForm, cmd := m.prefsForm.Update(keyMsg)
			m.prefsForm = &newForm
			return m, cmd
		}
	case model.ScreenNotesForm:
		if m.notesForm != nil {
			newForm, cmd := m.notesForm.Update(msg)
			m.notesForm = &newForm
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleJumpToTop() (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenHome:
		m.homeResults.JumpToTop()
	case model.ScreenSearch:
		if m.searchResults != nil {
			m.searchResults.JumpToTop()
		}
	case model.ScreenFavorites:
		if m.favorites != nil {
			m.favorites.JumpToTop()
		}
	}
	return m, nil
}

func (m Model) handleResultsNav(msg tea.KeyMsg, list *ResultsModel) (tea.Model, tea.Cmd) {
	if list == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if r, ok := list.Selected(); ok {
			spin := m.startLoading()
			return m, tea.Batch(loadBusinessDetailCmd(m.client, m.feed, m.db, m.log, r), spin)
		}
		return m, nil
	case key.Matches(msg, m.keys.Favorite):
		if r, ok := list.Selected(); ok {
			return m, saveFavoriteCmd(m.db, r.Business)
		}
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		page, ok := list.NextPage()
		if !ok {
			m.info = "Last page"
			return m, nil
		}
		m.info = ""
		spin := m.startLoading()
		return m, tea.Batch(loadFeedCmd(m.feed, list.source, list.Request(), page), spin)
	case key.Matches(msg, m.keys.PrevPage):
		page, ok := list.PrevPage()
		if !ok {
			m.info = "First page"
			return m, nil
		}
		m.info = ""
		spin := m.startLoading()
		return m, tea.Batch(loadFeedCmd(m.feed, list.source, list.Request(), page), spin)
	case key.Matches(msg, m.keys.Refresh):
		m.info = "Refreshing from Yelp"
		spin := m.startLoading()
		return m, tea.Batch(refreshFeedCmd(m.feed, list.source, list.Request()), spin)
	case key.Matches(msg, m.keys.Down):
		list.MoveDown()
	case key.Matches(msg, m.keys.Up):
		list.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		list.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		list.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		list.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handleFavoritesNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.favorites == nil {
		return m, nil
	}

	row, hasRow := m.favorites.Selected()
	switch {
	case key.Matches(msg, m.keys.Select):
		if hasRow {
			spin := m.startLoading()
			return m, tea.Batch(loadSavedDetailCmd(m.db, m.feed, row.ID), spin)
		}
	case key.Matches(msg, m.keys.Delete):
		if hasRow {
			return m, deleteFavoriteCmd(m.db, row.ID)
		}
	case key.Matches(msg, m.keys.Edit):
		if hasRow {
			return m.openNotes(row.ID, row.Name, row.Notes)
		}
	case key.Matches(msg, m.keys.Down):
		m.favorites.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.favorites.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.favorites.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.favorites.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.favorites.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handlePreferencesNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Edit) || msg.String() == "enter" {
		m.prefsForm = NewPreferencesFormModel(m.feed, m.feed.Preferences())
		m.mode = model.ModeInsert
		m.info = ""
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.screen = m.detailReturn
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = m.detailReturn
		m.detail = nil
	case key.Matches(msg, m.keys.Favorite):
		return m, saveFavoriteCmd(m.db, m.detail.business)
	case key.Matches(msg, m.keys.Delete):
		if f := m.detail.favorite; f != nil {
			return m, deleteFavoriteCmd(m.db, f.ID)
		}
		m.info = "Not a favorite"
	case key.Matches(msg, m.keys.Edit):
		if f := m.detail.favorite; f != nil {
			return m.openNotes(f.ID, f.Name, f.Notes)
		}
		m.info = "Save it with f to add notes"
	}
	return m, nil
}

func (m Model) openNotes(favoriteID int64, name, notes string) (tea.Model, tea.Cmd) {
	m.notesForm = NewNotesFormModel(m.db, favoriteID, name, notes)
	m.notesReturn = m.screen
	m.screen = model.ScreenNotesForm
	m.mode = model.ModeInsert
	m.info = ""
	return m, textarea.Blink
}

func (m *Model) reloadFavoritesCmd() tea.Cmd {
	return loadFavoritesCmd(m.db)
}

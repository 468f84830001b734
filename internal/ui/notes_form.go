package ui

import (
	"database/sql"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nosh/internal/db"
	"nosh/internal/model"
)

// NotesFormModel edits the notes on a favorite.
type NotesFormModel struct {
	db         *sql.DB
	keys       FormKeyMap
	favoriteID int64
	name       string
	before     string
	area       textarea.Model
}

// NewNotesFormModel creates a notes editor for a favorite.
func NewNotesFormModel(database *sql.DB, favoriteID int64, name, notes string) *NotesFormModel {
	area := textarea.New()
	area.Placeholder = "What to order, who to bring, when to go…"
	area.CharLimit = 2000
	area.ShowLineNumbers = false
	area.SetValue(notes)
	area.Focus()

	return &NotesFormModel{
		db:         database,
		keys:       DefaultFormKeyMap(),
		favoriteID: favoriteID,
		name:       name,
		before:     notes,
		area:       area,
	}
}

// Update handles input.
func (m NotesFormModel) Update(msg tea.Msg) (NotesFormModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			return m, func() tea.Msg {
				return model.FormCancelledMsg{}
			}
		case key.Matches(keyMsg, m.keys.Save):
			return m, m.save()
		}
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m NotesFormModel) save() tea.Cmd {
	id := m.favoriteID
	before := m.before
	after := strings.TrimSpace(m.area.Value())
	return func() tea.Msg {
		if err := db.UpdateFavoriteNotes(m.db, id, after); err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.FavoriteNotesSavedMsg{ID: id, Before: before, After: after}
	}
}

// View renders the editor.
func (m *NotesFormModel) View(width, height int) string {
	m.area.SetWidth(max(20, width-10))
	m.area.SetHeight(max(3, height-10))

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render("Notes for "+m.name),
		"",
		m.area.View(),
	)
	return PanelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(body)
}

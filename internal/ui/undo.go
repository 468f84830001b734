package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"nosh/internal/db"
	"nosh/internal/model"
)

type undoAction struct {
	label string
	undo  func() error
	redo  func() error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo()
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo()
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

// buildFavoriteSaveAction returns nil when the business was already saved;
// re-saving only refreshes the snapshot.
func (m *Model) buildFavoriteSaveAction(msg model.FavoriteSavedMsg) *undoAction {
	if msg.Existed {
		return nil
	}
	saved := msg.Favorite
	database := m.db
	return &undoAction{
		label: "saved " + saved.Name,
		undo: func() error {
			return db.DeleteFavorite(database, saved.ID)
		},
		redo: func() error {
			return db.InsertFavoriteWithID(database, saved)
		},
	}
}

func (m *Model) buildDeleteFavoriteAction(msg model.DeleteFavoriteMsg) undoAction {
	deleted := msg.Deleted
	database := m.db
	return undoAction{
		label: "removed " + deleted.Name,
		undo: func() error {
			return db.InsertFavoriteWithID(database, deleted)
		},
		redo: func() error {
			return db.DeleteFavorite(database, deleted.ID)
		},
	}
}

func (m *Model) buildNotesAction(msg model.FavoriteNotesSavedMsg) undoAction {
	id, before, after := msg.ID, msg.Before, msg.After
	database := m.db
	return undoAction{
		label: "notes edit",
		undo: func() error {
			return db.UpdateFavoriteNotes(database, id, before)
		},
		redo: func() error {
			return db.UpdateFavoriteNotes(database, id, after)
		},
	}
}

func (m *Model) buildPreferencesAction(msg model.PreferencesSavedMsg) undoAction {
	before, after := msg.Before, msg.After
	svc := m.feed
	return undoAction{
		label: "preferences change",
		undo: func() error {
			return svc.UpdatePreferences(before)
		},
		redo: func() error {
			return svc.UpdatePreferences(after)
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		return nil
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return m.reloadFavoritesCmd()
}

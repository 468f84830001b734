package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosh/internal/model"
)

func typeInto(form SearchFormModel, text string) SearchFormModel {
	for _, r := range text {
		form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return form
}

func submitted(t *testing.T, cmd tea.Cmd) model.SearchSubmittedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(model.SearchSubmittedMsg)
	require.True(t, ok)
	return msg
}

func TestSearchFormSubmitsTyped(t *testing.T) {
	form := NewSearchFormModel("Oakland")
	form.Focus()

	f := typeInto(*form, "ramen")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f = typeInto(f, " Temescal ")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, model.SearchSubmittedMsg{Term: "ramen", Location: "Temescal"}, submitted(t, cmd))
}

func TestSearchFormSkipsEmptyRecentList(t *testing.T) {
	form := NewSearchFormModel("")
	form.Focus()

	f, _ := form.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, searchFieldLocation, f.focusedField)
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, searchFieldTerm, f.focusedField)
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, searchFieldLocation, f.focusedField)
}

func TestSearchFormPicksRecent(t *testing.T) {
	form := NewSearchFormModel("")
	form.SetRecent([]model.RecentSearch{
		{ID: 2, Term: "tacos", Location: "Mission"},
		{ID: 1, Term: "dim sum", Location: "Richmond"},
	})
	form.Focus()

	f, _ := form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, searchFieldRecent, f.focusedField)
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, f.recentCursor, "cursor stops at the last entry")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, model.SearchSubmittedMsg{Term: "dim sum", Location: "Richmond"}, submitted(t, cmd))
}

func TestSearchFormSetRecentResetsCursor(t *testing.T) {
	form := NewSearchFormModel("")
	form.SetRecent([]model.RecentSearch{{Term: "a"}, {Term: "b"}})
	form.recentCursor = 1
	form.SetRecent([]model.RecentSearch{{Term: "c"}})
	assert.Zero(t, form.recentCursor)
}

func TestSearchFormCancel(t *testing.T) {
	form := NewSearchFormModel("")
	form.Focus()
	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, model.FormCancelledMsg{}, cmd())
}

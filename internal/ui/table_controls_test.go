package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTableControl(t *testing.T) {
	keys := DefaultKeyMap()
	m := NewFavoritesModel(sampleFavoriteRows())

	res, ok := applyTableControl(m, keys, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, ok)
	assert.True(t, res.persist)
	assert.Equal(t, "cuisine", m.Prefs().ActiveColumn)

	res, ok = applyTableControl(m, keys, keyRune('S'))
	require.True(t, ok)
	assert.Equal(t, "Sorted descending", res.info)
	assert.Equal(t, []string{"La Taqueria", "Zazie", "Burma Superstar"}, rowNames(m))

	res, ok = applyTableControl(m, keys, keyRune('/'))
	require.True(t, ok)
	assert.True(t, res.startJump)
	assert.False(t, res.persist)

	res, ok = applyTableControl(m, keys, keyRune('N'))
	require.True(t, ok, "clear filter is consumed even without a filter")
	assert.Empty(t, res.info)

	_, ok = applyTableControl(m, keys, keyRune('x'))
	assert.False(t, ok)
}

func TestApplyTableControlRefusesHidingLastColumn(t *testing.T) {
	keys := DefaultKeyMap()
	m := NewFavoritesModel(sampleFavoriteRows())
	for range favoriteColumnKeys()[1:] {
		res, ok := applyTableControl(m, keys, keyRune('c'))
		require.True(t, ok)
		require.Equal(t, "Column hidden", res.info)
	}

	res, ok := applyTableControl(m, keys, keyRune('c'))
	require.True(t, ok)
	assert.Equal(t, "Cannot hide last visible column", res.info)
	assert.False(t, res.persist)
}

func TestJumpToColumn(t *testing.T) {
	m := NewFavoritesModel(sampleFavoriteRows())

	res, ok := jumpToColumn(m, "3")
	require.True(t, ok)
	assert.True(t, res.jumped)
	assert.Equal(t, "Jumped to column 3", res.info)
	assert.Equal(t, "price", m.Prefs().ActiveColumn)

	res, ok = jumpToColumn(m, "9")
	require.True(t, ok)
	assert.False(t, res.jumped)
	assert.Equal(t, "Column 9 unavailable", res.info)

	res, ok = jumpToColumn(nil, "2")
	require.True(t, ok)
	assert.Equal(t, "Column 2 unavailable", res.info)

	_, ok = jumpToColumn(m, "q")
	assert.False(t, ok)
}

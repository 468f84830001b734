package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosh/internal/match"
	"nosh/internal/model"
)

func TestPreferencesFormRoundTrip(t *testing.T) {
	want := match.Preferences{
		DietaryRestrictions: []match.DietaryRestriction{match.Vegan, match.GlutenFree},
		Cuisines:            []match.CuisinePreference{{Tag: "thai"}, {Tag: "italian", Weight: match.Float(0.5)}},
		PriceCeiling:        match.PriceModerate,
		MinimumRating:       4.5,
		MaxDistanceMeters:   match.Float(1500),
		Sort:                match.SortRating,
	}

	form := NewPreferencesFormModel(nil, want)
	got, err := form.Preferences()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPreferencesFormEmptyMeansNoLimits(t *testing.T) {
	form := NewPreferencesFormModel(nil, match.Preferences{})
	form.inputs[prefsFieldPrice].SetValue("any")

	got, err := form.Preferences()
	require.NoError(t, err)
	assert.False(t, got.PriceCeiling.Known())
	assert.Zero(t, got.MinimumRating)
	assert.Nil(t, got.MaxDistanceMeters)
	assert.Empty(t, got.Cuisines)
	assert.Empty(t, got.DietaryRestrictions)
	assert.Equal(t, match.SortBestMatch, got.Sort)
}

func TestPreferencesFormRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		field int
		value string
	}{
		{"price", prefsFieldPrice, "cheap"},
		{"rating above five", prefsFieldRating, "6"},
		{"negative distance", prefsFieldDistance, "-1"},
		{"cuisine weight", prefsFieldCuisines, "thai:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewPreferencesFormModel(nil, match.Preferences{})
			form.inputs[tt.field].SetValue(tt.value)
			_, err := form.Preferences()
			assert.Error(t, err)
		})
	}
}

func TestPreferencesFormDietaryAndSortKeys(t *testing.T) {
	form := *NewPreferencesFormModel(nil, match.Preferences{})
	tab := tea.KeyMsg{Type: tea.KeyTab}

	for i := 0; i < prefsFieldDietary; i++ {
		form, _ = form.Update(tab)
	}
	require.Equal(t, prefsFieldDietary, form.focusedField)

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeySpace})

	form, _ = form.Update(tab)
	require.Equal(t, prefsFieldSort, form.focusedField)
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})

	got, err := form.Preferences()
	require.NoError(t, err)
	assert.Equal(t, []match.DietaryRestriction{match.AllDietaryRestrictions[1]}, got.DietaryRestrictions)
	assert.Equal(t, match.AllSortPreferences[1], got.Sort)

	form, _ = form.Update(tab)
	assert.Equal(t, prefsFieldPrice, form.focusedField, "focus wraps to the first field")
}

func TestPreferencesFormCancel(t *testing.T) {
	form := *NewPreferencesFormModel(nil, match.Preferences{})
	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, model.FormCancelledMsg{}, cmd())
}

package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUIPreferencesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	prefs := loadUIPreferences()
	assert.Equal(t, defaultUIPreferences(), prefs)
	assert.Equal(t, "saved", prefs.Favorites.SortKey)
	assert.True(t, prefs.Favorites.SortDesc)
}

func TestSaveUIPreferencesRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := UIPreferences{Favorites: TablePrefs{SortKey: "rating", HiddenColumns: []string{"address"}, ActiveColumn: "notes"}}
	require.NoError(t, saveUIPreferences(want))

	got := loadUIPreferences()
	want.Version = uiPrefsVersion
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Join(home, ".nosh"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "ui_prefs.json", entries[0].Name())
}

func TestDecodeUIPreferences(t *testing.T) {
	tests := []struct {
		name string
		data string
		want TablePrefs
	}{
		{
			name: "unversioned file is kept",
			data: `{"favorites":{"sort_key":"name","hidden_columns":["notes"]}}`,
			want: TablePrefs{SortKey: "name", HiddenColumns: []string{"notes"}},
		},
		{
			name: "unknown columns are dropped",
			data: `{"version":1,"favorites":{"sort_key":"visits","hidden_columns":["dish","price","price"],"active_column":"companions"}}`,
			want: TablePrefs{SortKey: "saved", SortDesc: true, HiddenColumns: []string{"price"}},
		},
		{
			name: "every column hidden shows them all",
			data: `{"version":1,"favorites":{"sort_key":"name","hidden_columns":["name","cuisine","price","rating","reviews","address","notes","saved"]}}`,
			want: TablePrefs{SortKey: "name"},
		},
		{
			name: "newer version falls back to defaults",
			data: `{"version":99,"favorites":{"sort_key":"name"}}`,
			want: defaultUIPreferences().Favorites,
		},
		{
			name: "corrupt file falls back to defaults",
			data: `{"favorites":`,
			want: defaultUIPreferences().Favorites,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeUIPreferences([]byte(tt.data))
			assert.Equal(t, uiPrefsVersion, got.Version)
			assert.Equal(t, tt.want, got.Favorites)
		})
	}
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearNoshEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"YELP_API_KEY", "NOSH_YELP_KEY", "NOSH_DB", "NOSH_LOCATION", "NOSH_LAT", "NOSH_LON",
		"NOSH_PAGE_SIZE", "NOSH_LOG_LEVEL", "NOSH_LOG_FILE", "NOSH_SYNONYMS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearNoshEnv(t)
	dir := t.TempDir()

	config, err := loadConfig(nil, dir, OnboardingSettings{})
	require.NoError(t, err)

	assert.Equal(t, dir, config.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "nosh.db"), config.DBPath)
	assert.Equal(t, filepath.Join(dir, "nosh.log"), config.LogFile)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.YelpAPIKey)
	assert.Empty(t, config.Location)
	assert.False(t, config.HasCoordinates())
	assert.Zero(t, config.PageSize)
}

func TestLoadConfigLayering(t *testing.T) {
	clearNoshEnv(t)
	dir := t.TempDir()
	yaml := "location: Berkeley\npage_size: 7\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	t.Run("config file over defaults", func(t *testing.T) {
		config, err := loadConfig(nil, dir, OnboardingSettings{Location: "Oakland"})
		require.NoError(t, err)
		assert.Equal(t, "Berkeley", config.Location)
		assert.Equal(t, 7, config.PageSize)
		assert.Equal(t, "debug", config.LogLevel)
	})

	t.Run("environment over config file", func(t *testing.T) {
		t.Setenv("NOSH_LOCATION", "Alameda")
		t.Setenv("NOSH_PAGE_SIZE", "3")
		config, err := loadConfig(nil, dir, OnboardingSettings{})
		require.NoError(t, err)
		assert.Equal(t, "Alameda", config.Location)
		assert.Equal(t, 3, config.PageSize)
	})

	t.Run("flags over environment", func(t *testing.T) {
		t.Setenv("NOSH_LOCATION", "Alameda")
		config, err := loadConfig([]string{"-location", "Mission District, San Francisco", "-page-size", "12"}, dir, OnboardingSettings{})
		require.NoError(t, err)
		assert.Equal(t, "Mission District, San Francisco", config.Location)
		assert.Equal(t, 12, config.PageSize)
	})
}

func TestLoadConfigOnboardingLocationIsDefault(t *testing.T) {
	clearNoshEnv(t)

	config, err := loadConfig(nil, t.TempDir(), OnboardingSettings{Completed: true, Location: "Oakland"})
	require.NoError(t, err)
	assert.Equal(t, "Oakland", config.Location)
}

func TestLoadConfigYelpKey(t *testing.T) {
	clearNoshEnv(t)
	dir := t.TempDir()

	t.Setenv("YELP_API_KEY", " from-env ")
	config, err := loadConfig(nil, dir, OnboardingSettings{})
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.YelpAPIKey)

	config, err = loadConfig([]string{"-yelp-key", "from-flag"}, dir, OnboardingSettings{})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", config.YelpAPIKey)
}

func TestLoadConfigCoordinates(t *testing.T) {
	clearNoshEnv(t)
	dir := t.TempDir()

	config, err := loadConfig([]string{"-lat", "37.76", "-lon", "-122.42"}, dir, OnboardingSettings{})
	require.NoError(t, err)
	require.True(t, config.HasCoordinates())
	assert.InDelta(t, 37.76, *config.Latitude, 1e-9)
	assert.InDelta(t, -122.42, *config.Longitude, 1e-9)

	tests := []struct {
		name string
		args []string
	}{
		{"lat without lon", []string{"-lat", "37.76"}},
		{"not a number", []string{"-lat", "north", "-lon", "1"}},
		{"out of range", []string{"-lat", "91", "-lon", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.args, dir, OnboardingSettings{})
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigRejectsNegativePageSize(t *testing.T) {
	clearNoshEnv(t)

	_, err := loadConfig([]string{"-page-size", "-1"}, t.TempDir(), OnboardingSettings{})
	assert.Error(t, err)
}

func TestLoadConfigVersionFlag(t *testing.T) {
	clearNoshEnv(t)

	config, err := loadConfig([]string{"-version"}, t.TempDir(), OnboardingSettings{})
	require.NoError(t, err)
	assert.True(t, config.ShowVersion)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOSH_TEST_A=file\nNOSH_TEST_B=file\n"), 0600))

	t.Setenv("NOSH_TEST_A", "shell")
	t.Setenv("NOSH_TEST_B", "")
	require.NoError(t, os.Unsetenv("NOSH_TEST_B"))

	loadDotEnv(envPath, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "shell", os.Getenv("NOSH_TEST_A"))
	assert.Equal(t, "file", os.Getenv("NOSH_TEST_B"))
}

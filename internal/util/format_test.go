package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosh/internal/match"
)

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "—", FormatDistance(nil))
	assert.Equal(t, "350 m", FormatDistance(match.Float(349.6)))
	assert.Equal(t, "1.2 km", FormatDistance(match.Float(1234)))
	assert.Equal(t, "3 km", FormatDistance(match.Float(3000)))
}

func TestFormatRatingAndPrice(t *testing.T) {
	assert.Equal(t, "4.5 ★", FormatRating(4.5))
	assert.Equal(t, "4 ★", FormatRating(4))
	assert.Equal(t, "—", FormatRating(0))
	assert.Equal(t, "★★★★☆", FormatRatingStars(4.4))
	assert.Equal(t, "★★★★★", FormatRatingStars(7))
	assert.Equal(t, "$$", FormatPrice(match.PriceModerate))
	assert.Equal(t, "—", FormatPrice(match.PriceUnknown))
	assert.Equal(t, "Any", FormatPriceCeiling(match.PriceUnknown))
	assert.Equal(t, "up to $$$", FormatPriceCeiling(match.PriceExpensive))
}

func TestFormatReviewCount(t *testing.T) {
	assert.Equal(t, "1 review", FormatReviewCount(1))
	assert.Equal(t, "0 reviews", FormatReviewCount(0))
	assert.Equal(t, "12,345 reviews", FormatReviewCount(12345))
}

func TestFormatSaved(t *testing.T) {
	assert.Equal(t, "—", FormatSaved(time.Time{}))
	assert.Equal(t, "3 days ago", FormatSaved(time.Now().Add(-72*time.Hour-time.Minute)))
}

func TestParseCuisines(t *testing.T) {
	got, err := ParseCuisines(" Thai, italian:0.5,, sushi:1 , thai:0.25")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "thai", got[0].Tag)
	require.NotNil(t, got[0].Weight)
	assert.Equal(t, 0.25, *got[0].Weight)
	assert.Equal(t, "italian", got[1].Tag)
	assert.Equal(t, 0.5, *got[1].Weight)
	assert.Equal(t, "sushi", got[2].Tag)

	assert.Equal(t, "thai:0.25, italian:0.5, sushi", FormatCuisines(got))

	empty, err := ParseCuisines("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"thai:2", "thai:-1", "thai:lots", ":0.5"} {
		_, err := ParseCuisines(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDistanceKm(t *testing.T) {
	d, err := ParseDistanceKm("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDistanceKm(" 2.5 km")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.InDelta(t, 2500, *d, 1e-9)
	assert.Equal(t, "2.5", FormatDistanceKm(d))

	_, err = ParseDistanceKm("-1")
	assert.Error(t, err)
	_, err = ParseDistanceKm("far")
	assert.Error(t, err)
}

func TestParseMinimumRating(t *testing.T) {
	v, err := ParseMinimumRating("")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = ParseMinimumRating("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = ParseMinimumRating("6")
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 5))
	assert.Equal(t, "he...", TruncateString("hello world", 5))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "café", TruncateString("café", 4))
}

package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"nosh/internal/match"
)

// FormatPrice formats a price tier as "$$" or "—" when unknown.
func FormatPrice(tier match.PriceTier) string {
	if !tier.Known() {
		return "—"
	}
	return tier.String()
}

// FormatPriceCeiling formats a preference ceiling, where unknown means no limit.
func FormatPriceCeiling(tier match.PriceTier) string {
	if !tier.Known() {
		return "Any"
	}
	return "up to " + tier.String()
}

// FormatDistance formats meters as "350 m" or "1.2 km", or "—" if nil.
func FormatDistance(meters *float64) string {
	if meters == nil {
		return "—"
	}
	m := *meters
	if m < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(m)))
	}
	return formatNumber(m/1000, 1) + " km"
}

// FormatRating formats a 0-5 rating as "4.5 ★".
func FormatRating(rating float64) string {
	if rating <= 0 {
		return "—"
	}
	return formatNumber(rating, 1) + " ★"
}

// FormatRatingPtr is FormatRating for optional ratings.
func FormatRatingPtr(rating *float64) string {
	if rating == nil {
		return "—"
	}
	return FormatRating(*rating)
}

// FormatRatingStars formats a 0-5 rating as stars (e.g., "★★★★☆").
func FormatRatingStars(rating float64) string {
	stars := int(math.Round(rating))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatReviewCount formats a review count as "1,234 reviews".
func FormatReviewCount(n int) string {
	if n == 1 {
		return "1 review"
	}
	return humanize.Comma(int64(n)) + " reviews"
}

// FormatScore formats a match score in [0,100].
func FormatScore(score float64) string {
	return strconv.Itoa(int(math.Round(score)))
}

// FormatOpen formats the open flag.
func FormatOpen(open bool) string {
	if open {
		return "Open"
	}
	return "Closed"
}

// FormatSaved formats a timestamp relative to now, e.g. "3 days ago".
func FormatSaved(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return humanize.Time(t)
}

// FormatCuisines renders cuisine preferences as "thai, italian:0.5".
func FormatCuisines(cuisines []match.CuisinePreference) string {
	parts := make([]string, 0, len(cuisines))
	for _, c := range cuisines {
		if c.Weight == nil || *c.Weight == 1 {
			parts = append(parts, c.Tag)
			continue
		}
		parts = append(parts, c.Tag+":"+strconv.FormatFloat(*c.Weight, 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// ParseCuisines parses "thai, italian:0.5" into cuisine preferences. Tags are
// lower-cased; a repeated tag keeps its last weight.
func ParseCuisines(input string) ([]match.CuisinePreference, error) {
	out := []match.CuisinePreference{}
	index := map[string]int{}
	for _, raw := range strings.Split(input, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		tag, weightText, hasWeight := strings.Cut(raw, ":")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return nil, fmt.Errorf("cuisine %q has no name", raw)
		}

		c := match.CuisinePreference{Tag: tag}
		if hasWeight {
			w, err := strconv.ParseFloat(strings.TrimSpace(weightText), 64)
			if err != nil || math.IsNaN(w) || w < 0 || w > 1 {
				return nil, fmt.Errorf("cuisine %q weight must be between 0 and 1", tag)
			}
			c.Weight = match.Float(w)
		}

		if i, ok := index[tag]; ok {
			out[i] = c
			continue
		}
		index[tag] = len(out)
		out = append(out, c)
	}
	return out, nil
}

// ParseDistanceKm parses a kilometer value into meters. Empty input means no limit.
func ParseDistanceKm(input string) (*float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(input)), "km"))
	if s == "" {
		return nil, nil
	}
	km, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return nil, fmt.Errorf("distance must be a non-negative number of kilometers")
	}
	return match.Float(km * 1000), nil
}

// FormatDistanceKm renders a meter limit for the kilometer input, "" when unset.
func FormatDistanceKm(meters *float64) string {
	if meters == nil {
		return ""
	}
	return strconv.FormatFloat(*meters/1000, 'f', -1, 64)
}

// ParseMinimumRating parses a 0-5 rating. Empty input means 0.
func ParseMinimumRating(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > match.MaxRating {
		return 0, fmt.Errorf("minimum rating must be between 0 and 5")
	}
	return v, nil
}

// SortLabel is the display name of a sort preference.
func SortLabel(s match.SortPreference) string {
	switch s {
	case match.SortDistance:
		return "Distance"
	case match.SortRating:
		return "Rating"
	case match.SortReviewCount:
		return "Review count"
	default:
		return "Best match"
	}
}

func formatNumber(v float64, decimals int) string {
	// Avoid trailing .0 for whole values.
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	return strings.TrimSuffix(s, ".0")
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

package match

import "math"

// Component weights. They sum to MaxScore.
const (
	RatingWeight   = 30.0
	DistanceWeight = 20.0
	PriceWeight    = 20.0
	CuisineWeight  = 30.0

	MaxScore  = 100.0
	MaxRating = 5.0
)

// Breakdown is the per-component contribution to a score.
type Breakdown struct {
	Rating   float64
	Distance float64
	Price    float64
	Cuisine  float64
}

// Total sums the components and clamps to [0, MaxScore].
func (b Breakdown) Total() float64 {
	return clamp(b.Rating+b.Distance+b.Price+b.Cuisine, 0, MaxScore)
}

// Score returns the match score of b under prefs. It does not apply the hard
// filters; callers rank only businesses that passed them.
func Score(b Business, prefs Preferences) float64 {
	return Explain(b, prefs).Total()
}

// Explain returns the per-component score of b under prefs.
func Explain(b Business, prefs Preferences) Breakdown {
	return Breakdown{
		Rating:   ratingScore(b),
		Distance: distanceScore(b, prefs),
		Price:    priceScore(b, prefs),
		Cuisine:  cuisineScore(b, prefs),
	}
}

func ratingScore(b Business) float64 {
	return clamp(b.Rating, 0, MaxRating) / MaxRating * RatingWeight
}

// distanceScore needs a ceiling to normalize against; without one it contributes nothing.
func distanceScore(b Business, prefs Preferences) float64 {
	if prefs.MaxDistanceMeters == nil || *prefs.MaxDistanceMeters <= 0 || b.DistanceMeters == nil {
		return 0
	}
	ratio := *b.DistanceMeters / *prefs.MaxDistanceMeters
	return math.Max(0, 1-ratio) * DistanceWeight
}

func priceScore(b Business, prefs Preferences) float64 {
	if !prefs.PriceCeiling.Known() || !b.Price.Known() {
		return 0
	}
	if b.Price <= prefs.PriceCeiling {
		return PriceWeight
	}
	return 0
}

func cuisineScore(b Business, prefs Preferences) float64 {
	if len(prefs.Cuisines) == 0 || len(b.Categories) == 0 {
		return 0
	}

	weights := make(map[string]float64, len(prefs.Cuisines))
	for _, c := range prefs.Cuisines {
		tag := NormalizeTag(c.Tag)
		if tag == "" {
			continue
		}
		// Duplicate tags keep the strongest affinity.
		if w := clamp(c.weight(), 0, 1); w > weights[tag] {
			weights[tag] = w
		} else if _, ok := weights[tag]; !ok {
			weights[tag] = w
		}
	}

	total := 0.0
	per := CuisineWeight / float64(len(b.Categories))
	for _, cat := range b.Categories {
		if w, ok := weights[NormalizeTag(cat)]; ok {
			total += w * per
		}
	}
	return math.Min(total, CuisineWeight)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

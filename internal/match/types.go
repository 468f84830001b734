package match

import "strings"

// PriceTier is the ordinal price level of a business, 1 ("$") through 4 ("$$$$").
// The zero value means the provider did not report a price.
type PriceTier int

const (
	PriceUnknown PriceTier = iota
	PriceInexpensive
	PriceModerate
	PriceExpensive
	PriceVeryExpensive
)

// Known reports whether the tier is one of the four valid levels.
func (p PriceTier) Known() bool {
	return p >= PriceInexpensive && p <= PriceVeryExpensive
}

// String renders the tier as dollar signs, or "" when unknown.
func (p PriceTier) String() string {
	if !p.Known() {
		return ""
	}
	return strings.Repeat("$", int(p))
}

// ParsePriceTier converts "$".."$$$$" to a tier. Anything else is PriceUnknown.
func ParsePriceTier(s string) PriceTier {
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "$") != "" || len(s) > 4 {
		return PriceUnknown
	}
	return PriceTier(len(s))
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Business is a restaurant record as returned by the search provider.
type Business struct {
	ID             string
	Name           string
	Rating         float64
	ReviewCount    int
	Price          PriceTier
	Categories     []string // lower-cased tags
	Coordinates    Coordinates
	DistanceMeters *float64 // nil when the provider did not compute it
	IsOpen         bool
	Address        string
	Phone          string
	ImageURL       string
	URL            string
}

// DietaryRestriction is one of the supported dietary tags.
type DietaryRestriction string

const (
	Vegetarian DietaryRestriction = "vegetarian"
	Vegan      DietaryRestriction = "vegan"
	GlutenFree DietaryRestriction = "gluten-free"
	DairyFree  DietaryRestriction = "dairy-free"
	NutFree    DietaryRestriction = "nut-free"
	Halal      DietaryRestriction = "halal"
	Kosher     DietaryRestriction = "kosher"
)

// AllDietaryRestrictions lists the restrictions in display order.
var AllDietaryRestrictions = []DietaryRestriction{
	Vegetarian, Vegan, GlutenFree, DairyFree, NutFree, Halal, Kosher,
}

// Valid reports whether r is a supported restriction.
func (r DietaryRestriction) Valid() bool {
	for _, known := range AllDietaryRestrictions {
		if r == known {
			return true
		}
	}
	return false
}

// CuisinePreference is a cuisine tag with an optional affinity weight in [0,1].
// A nil weight counts as 1.0.
type CuisinePreference struct {
	Tag    string   `json:"tag"`
	Weight *float64 `json:"weight,omitempty"`
}

func (c CuisinePreference) weight() float64 {
	if c.Weight == nil {
		return 1.0
	}
	return *c.Weight
}

// SortPreference selects the primary ordering of results.
type SortPreference string

const (
	SortBestMatch   SortPreference = "best_match"
	SortDistance    SortPreference = "distance"
	SortRating      SortPreference = "rating"
	SortReviewCount SortPreference = "review_count"
)

// AllSortPreferences lists the sort options in display order.
var AllSortPreferences = []SortPreference{SortBestMatch, SortDistance, SortRating, SortReviewCount}

// Valid reports whether s is a supported sort option. The empty value is
// treated as best match and is valid.
func (s SortPreference) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range AllSortPreferences {
		if s == known {
			return true
		}
	}
	return false
}

// Preferences holds the user's constraints for one matching call.
type Preferences struct {
	DietaryRestrictions []DietaryRestriction
	Cuisines            []CuisinePreference
	PriceCeiling        PriceTier // PriceUnknown means no ceiling
	MinimumRating       float64
	MaxDistanceMeters   *float64 // nil means no ceiling
	Sort                SortPreference
}

// Result is a business with its transient match score.
type Result struct {
	Business Business
	Score    float64
}

// Float returns a pointer to v. Handy for the optional fields above.
func Float(v float64) *float64 {
	return &v
}

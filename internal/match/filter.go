package match

// Reason names the hard filter that rejected a business.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonPrice    Reason = "price"
	ReasonRating   Reason = "rating"
	ReasonDistance Reason = "distance"
	ReasonDietary  Reason = "dietary"
)

// Rejections counts businesses dropped per filter.
type Rejections map[Reason]int

// Total is the number of rejected businesses.
func (r Rejections) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

func (r Rejections) add(other Rejections) {
	for reason, c := range other {
		r[reason] += c
	}
}

// Passes applies the hard filters using the built-in synonym table.
func Passes(b Business, prefs Preferences) (bool, Reason) {
	return passes(b, prefs, DefaultSynonyms(), categorySet(b))
}

func passes(b Business, prefs Preferences, syn Synonyms, cats map[string]struct{}) (bool, Reason) {
	// Unknown price never fails here; missing data is not penalized at the filter stage.
	if prefs.PriceCeiling.Known() && b.Price.Known() && b.Price > prefs.PriceCeiling {
		return false, ReasonPrice
	}

	if b.Rating < prefs.MinimumRating {
		return false, ReasonRating
	}

	if prefs.MaxDistanceMeters != nil && b.DistanceMeters != nil && *b.DistanceMeters > *prefs.MaxDistanceMeters {
		return false, ReasonDistance
	}

	for _, r := range prefs.DietaryRestrictions {
		if !syn.Matches(r, cats) {
			return false, ReasonDietary
		}
	}

	return true, ReasonNone
}

func categorySet(b Business) map[string]struct{} {
	set := make(map[string]struct{}, len(b.Categories))
	for _, c := range b.Categories {
		if n := NormalizeTag(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

package match

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Synonyms maps each dietary restriction to the category tags that satisfy it.
// Tags are stored normalized (see NormalizeTag).
type Synonyms map[DietaryRestriction][]string

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() Synonyms {
	table := Synonyms{
		Vegetarian: {"vegetarian", "vegan", "vegetarian friendly", "veggie"},
		Vegan:      {"vegan", "plant based", "vegan friendly"},
		GlutenFree: {"gluten free", "gluten friendly", "celiac"},
		DairyFree:  {"dairy free", "lactose free", "vegan"},
		NutFree:    {"nut free", "peanut free", "allergy friendly"},
		Halal:      {"halal"},
		Kosher:     {"kosher"},
	}
	for r, tags := range table {
		table[r] = normalizeAll(tags)
	}
	return table
}

// LoadSynonyms reads a YAML file of extra synonyms and merges it over the
// built-in table. The file maps restriction names to tag lists:
//
//	vegan: [plant-based, "vegan options"]
//	halal: [zabiha]
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	table := DefaultSynonyms()
	for name, tags := range raw {
		r := DietaryRestriction(strings.ToLower(strings.TrimSpace(name)))
		if !r.Valid() {
			return nil, fmt.Errorf("unknown dietary restriction %q in synonyms file", name)
		}
		table[r] = appendUnique(table[r], normalizeAll(tags)...)
	}
	return table, nil
}

// Matches reports whether any synonym of r appears in the normalized category set.
func (s Synonyms) Matches(r DietaryRestriction, categories map[string]struct{}) bool {
	terms, ok := s[r]
	if !ok {
		terms = []string{NormalizeTag(string(r))}
	}
	for _, term := range terms {
		if _, hit := categories[term]; hit {
			return true
		}
	}
	return false
}

// NormalizeTag lower-cases a tag and folds '-' and '_' to spaces so that
// "Gluten-Free" and "gluten_free" compare equal.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.NewReplacer("-", " ", "_", " ").Replace(tag)
	return strings.Join(strings.Fields(tag), " ")
}

func normalizeAll(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := NormalizeTag(t); n != "" {
			out = appendUnique(out, n)
		}
	}
	return out
}

func appendUnique(dst []string, tags ...string) []string {
	for _, t := range tags {
		found := false
		for _, d := range dst {
			if d == t {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, t)
		}
	}
	return dst
}

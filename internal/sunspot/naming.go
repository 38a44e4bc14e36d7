package sunspot

import "strings"

// excludedTerms rejects labels that are not settlements. The water terms
// guard against open-sea and loch-side points; the institutional terms guard
// against reverse-geocoders occasionally returning news-event or POI names
// instead of place names.
var excludedTerms = []string{
	"sea", "ocean", "bay", "firth", "channel", "loch", "estuary", "gulf",
	"sound", "harbour", "harbor", "marina", "water", "lake",
	"school", "station", "memorial", "incident", "murder", "academy",
	"college", "campus",
}

// nameSuffixes are trailing admin-area qualifiers stripped before dedup
// comparison so "Dunbar, Scotland" and "Dunbar" collapse.
var nameSuffixes = []string{
	", scotland", ", england", ", wales", ", northern ireland",
	", united kingdom", ", uk",
}

// hasAnyTerm reports whether s contains any of the terms. Case handling is
// the caller's job.
func hasAnyTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ExcludedLabel reports whether the label matches the exclusion set.
func ExcludedLabel(text string) bool {
	return hasAnyTerm(strings.ToLower(text), excludedTerms)
}

// NormalizeName produces the dedup-comparison form of a place label:
// lowercased, "city of" prefix dropped, trailing country/region suffixes
// dropped.
func NormalizeName(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimPrefix(s, "city of ")
	for changed := true; changed; {
		changed = false
		for _, suf := range nameSuffixes {
			if strings.HasSuffix(s, suf) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suf))
				changed = true
			}
		}
	}
	return s
}

package sunspot

import "fmt"

// Interest is a closed enumeration of POI categories that can bias candidate
// generation. Unknown strings are rejected at parse time rather than
// silently falling back to an unfiltered search.
type Interest string

const (
	InterestNone          Interest = ""
	InterestBeach         Interest = "beach"
	InterestNatureReserve Interest = "nature_reserve"
	InterestLake          Interest = "lake"
	InterestThemePark     Interest = "theme_park"
	InterestHistoric      Interest = "historic"
	InterestScenic        Interest = "scenic"
	InterestPark          Interest = "park"
	InterestZoo           Interest = "zoo"
)

// overpassFilters maps each category to its Overpass QL selector.
var overpassFilters = map[Interest]string{
	InterestBeach:         `nwr["natural"="beach"];`,
	InterestNatureReserve: `nwr["leisure"="nature_reserve"];nwr["boundary"="protected_area"];`,
	InterestLake:          `nwr["natural"="water"]["water"~"lake|reservoir"];`,
	InterestThemePark:     `nwr["leisure"="theme_park"];`,
	InterestHistoric:      `nwr["historic"];nwr["heritage"];`,
	InterestScenic:        `nwr["tourism"="viewpoint"];`,
	InterestPark:          `nwr["leisure"~"park|playground"];`,
	InterestZoo:           `nwr["tourism"="zoo"];nwr["amenity"="aquarium"];`,
}

// ParseInterest validates a category string. The empty string and "any" mean
// no category filter.
func ParseInterest(s string) (Interest, error) {
	if s == "" || s == "any" {
		return InterestNone, nil
	}
	i := Interest(s)
	if _, ok := overpassFilters[i]; !ok {
		return InterestNone, fmt.Errorf("unknown interest category %q", s)
	}
	return i, nil
}

// OverpassFilter returns the Overpass QL selector for the category, or the
// empty string for InterestNone.
func (i Interest) OverpassFilter() string {
	return overpassFilters[i]
}

package enrich

import (
	"fmt"

	"github.com/propwrite/propwrite/internal/core"
)

// Descriptor tiers, ordered. Tier comparison matters: adding amenities to
// a category must never move it down a tier.
const (
	TierLimited   = "limited"
	TierModerate  = "moderate"
	TierGood      = "good"
	TierExcellent = "excellent"
)

// tierRank orders tiers for comparisons in tests and callers.
var tierRank = map[string]int{
	TierLimited:   0,
	TierModerate:  1,
	TierGood:      2,
	TierExcellent: 3,
}

// TierAtLeast reports whether tier a is at or above tier b.
func TierAtLeast(a, b string) bool {
	return tierRank[a] >= tierRank[b]
}

// maxHighlights bounds the highlight list on a report.
const maxHighlights = 5

// buildDescriptors derives the ordered quality tags from category counts
// and nearest distances. Each rule is monotone in its counts: more
// amenities can only hold or raise the tier.
func buildDescriptors(counts map[string]int, nearest map[string]core.POI) map[string]string {
	d := make(map[string]string, 4)

	// Transport: driven by station count, lifted by a close station.
	stationPOI, hasStation := nearest[CategoryStations]
	switch {
	case counts[CategoryStations] == 0:
		d["transport"] = TierLimited
	case hasStation && stationPOI.DistanceMiles <= 0.5:
		d["transport"] = TierExcellent
	case counts[CategoryStations] >= 2:
		d["transport"] = TierGood
	default:
		d["transport"] = TierModerate
	}

	// Schools: primary and secondary together.
	schools := counts[CategoryPrimarySchools] + counts[CategorySecondarySchools]
	switch {
	case schools >= 4:
		d["schools"] = TierExcellent
	case schools >= 2:
		d["schools"] = TierGood
	case schools >= 1:
		d["schools"] = TierModerate
	default:
		d["schools"] = TierLimited
	}

	// Everyday amenities: cafés, supermarkets, gyms.
	cafes, supers := counts[CategoryCafes], counts[CategorySupermarkets]
	amenitySum := cafes + supers + counts[CategoryGyms]
	switch {
	case cafes >= 5 && supers >= 2:
		d["amenities"] = TierExcellent
	case amenitySum >= 5:
		d["amenities"] = TierGood
	case amenitySum >= 2:
		d["amenities"] = TierModerate
	default:
		d["amenities"] = TierLimited
	}

	// Green spaces: parks only.
	switch parks := counts[CategoryParks]; {
	case parks >= 3:
		d["green_spaces"] = TierExcellent
	case parks == 2:
		d["green_spaces"] = TierGood
	case parks == 1:
		d["green_spaces"] = TierModerate
	default:
		d["green_spaces"] = TierLimited
	}

	return d
}

// buildHighlights derives at most five short threshold-based phrases for
// the prompt and the UI.
func buildHighlights(counts map[string]int, nearest map[string]core.POI) []string {
	var highlights []string
	add := func(s string) {
		if len(highlights) < maxHighlights {
			highlights = append(highlights, s)
		}
	}

	if poi, ok := nearest[CategoryStations]; ok && poi.DistanceMiles <= 0.5 && poi.Name != "" {
		add(fmt.Sprintf("Walking distance to %s (%.1f miles)", poi.Name, poi.DistanceMiles))
	}
	if n := counts[CategoryPrimarySchools]; n >= 1 {
		if n == 1 {
			add("1 primary school within 1 mile")
		} else {
			add(fmt.Sprintf("%d primary schools within 1 mile", n))
		}
	}
	if counts[CategoryCafes] >= 5 && counts[CategorySupermarkets] >= 2 {
		add(fmt.Sprintf("Excellent local amenities with %d cafes and %d supermarkets nearby",
			counts[CategoryCafes], counts[CategorySupermarkets]))
	}
	if poi, ok := nearest[CategoryParks]; ok && poi.DistanceMiles <= 0.3 && poi.Name != "" {
		add(fmt.Sprintf("Green space at %s (%.1f miles)", poi.Name, poi.DistanceMiles))
	}
	if poi, ok := nearest[CategorySupermarkets]; ok && poi.DistanceMiles <= 0.3 && poi.Name != "" {
		add(fmt.Sprintf("Everyday shopping at %s (%.1f miles)", poi.Name, poi.DistanceMiles))
	}
	if poi, ok := nearest[CategoryGyms]; ok && poi.DistanceMiles <= 0.5 && poi.Name != "" {
		add(fmt.Sprintf("%s within walking distance (%.1f miles)", poi.Name, poi.DistanceMiles))
	}

	return highlights
}

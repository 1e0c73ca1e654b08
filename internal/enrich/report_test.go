package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Manchester Piccadilly to Manchester Victoria is roughly 0.7 miles.
	d := haversineMiles(53.4773, -2.2309, 53.4872, -2.2426)
	assert.InDelta(t, 0.8, d, 0.2)

	// Same point is zero.
	assert.Equal(t, 0.0, haversineMiles(53.5, -2.2, 53.5, -2.2))
}

func TestHaversine_RoundsToTenth(t *testing.T) {
	d := haversineMiles(51.5007, -0.1246, 51.5033, -0.1195)
	assert.Equal(t, d, float64(int(d*10+0.5))/10)
}

func TestDescriptors_Scenario(t *testing.T) {
	// Zero stations, 6 cafes, 3 supermarkets.
	counts := map[string]int{
		CategoryStations:     0,
		CategoryCafes:        6,
		CategorySupermarkets: 3,
	}
	d := buildDescriptors(counts, map[string]core.POI{})

	assert.Equal(t, TierLimited, d["transport"])
	assert.Equal(t, TierExcellent, d["amenities"])

	h := buildHighlights(counts, map[string]core.POI{})
	found := false
	for _, s := range h {
		if strings.HasPrefix(s, "Excellent local amenities") {
			found = true
		}
	}
	assert.True(t, found, "expected the amenities highlight, got %v", h)
}

func TestDescriptors_Monotonicity(t *testing.T) {
	// Growing any single category count must never lower its tier.
	categoryOf := map[string]string{
		CategoryStations:         "transport",
		CategoryPrimarySchools:   "schools",
		CategorySecondarySchools: "schools",
		CategoryCafes:            "amenities",
		CategorySupermarkets:     "amenities",
		CategoryGyms:             "amenities",
		CategoryParks:            "green_spaces",
	}

	for category, descriptor := range categoryOf {
		prev := ""
		for n := 0; n <= 10; n++ {
			d := buildDescriptors(map[string]int{category: n}, map[string]core.POI{})
			tier := d[descriptor]
			if prev != "" {
				assert.True(t, TierAtLeast(tier, prev),
					"%s: count %d gave %s after %s", category, n, tier, prev)
			}
			prev = tier
		}
	}
}

func TestDescriptors_CloseStationIsExcellent(t *testing.T) {
	counts := map[string]int{CategoryStations: 1}
	nearest := map[string]core.POI{
		CategoryStations: {Name: "Oak Road", DistanceMiles: 0.3},
	}
	d := buildDescriptors(counts, nearest)
	assert.Equal(t, TierExcellent, d["transport"])

	h := buildHighlights(counts, nearest)
	require.NotEmpty(t, h)
	assert.Equal(t, "Walking distance to Oak Road (0.3 miles)", h[0])
}

func TestHighlights_PrimarySchoolsAndCap(t *testing.T) {
	counts := map[string]int{
		CategoryPrimarySchools: 3,
		CategoryCafes:          8,
		CategorySupermarkets:   2,
	}
	nearest := map[string]core.POI{
		CategoryStations:     {Name: "Victoria", DistanceMiles: 0.2},
		CategoryParks:        {Name: "Heaton Park", DistanceMiles: 0.2},
		CategorySupermarkets: {Name: "Aldi", DistanceMiles: 0.1},
		CategoryGyms:         {Name: "PureGym", DistanceMiles: 0.4},
	}

	h := buildHighlights(counts, nearest)
	assert.LessOrEqual(t, len(h), 5)
	assert.Contains(t, h, "3 primary schools within 1 mile")
}

func TestHighlights_SingularSchool(t *testing.T) {
	h := buildHighlights(map[string]int{CategoryPrimarySchools: 1}, map[string]core.POI{})
	assert.Contains(t, h, "1 primary school within 1 mile")
}

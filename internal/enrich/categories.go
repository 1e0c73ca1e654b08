package enrich

// Amenity category identifiers. The order here is the query order and the
// display order on reports.
const (
	CategoryPrimarySchools   = "primary_schools"
	CategorySecondarySchools = "secondary_schools"
	CategoryStations         = "stations"
	CategoryCafes            = "cafes"
	CategorySupermarkets     = "supermarkets"
	CategoryParks            = "parks"
	CategoryGyms             = "gyms"
)

// Categories lists every category queried for a report, in order.
var Categories = []string{
	CategoryPrimarySchools,
	CategorySecondarySchools,
	CategoryStations,
	CategoryCafes,
	CategorySupermarkets,
	CategoryParks,
	CategoryGyms,
}

// overpassFilters maps each category to its Overpass tag filter. Each
// filter is applied to both node and way elements within the search
// radius.
var overpassFilters = map[string]string{
	CategoryPrimarySchools:   `["amenity"="school"]["isced:level"~"1"]`,
	CategorySecondarySchools: `["amenity"="school"]["isced:level"~"2|3"]`,
	CategoryStations:         `["railway"~"station|tram_stop"]`,
	CategoryCafes:            `["amenity"="cafe"]`,
	CategorySupermarkets:     `["shop"="supermarket"]`,
	CategoryParks:            `["leisure"="park"]`,
	CategoryGyms:             `["leisure"="fitness_centre"]`,
}

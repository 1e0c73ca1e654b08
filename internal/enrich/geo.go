// Package enrich turns a UK postcode or coordinate pair into an amenity
// profile: counts and nearest points of interest per category, highlight
// phrases, and ordered quality descriptors. Geocoding uses a postcodes.io
// compatible API; places come from Overpass. Enrichment is best-effort —
// a failed category yields empty results for that category only, and a
// total geocoder failure yields an empty report.
package enrich

import (
	"math"
)

const (
	earthRadiusKm = 6371.0
	kmPerMile     = 1.609344
)

// haversineMiles returns the great-circle distance between two points in
// miles, rounded to 0.1 for display.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	km := 2 * earthRadiusKm * math.Asin(math.Sqrt(a))

	return math.Round(km/kmPerMile*10) / 10
}

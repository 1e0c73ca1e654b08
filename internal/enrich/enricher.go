package enrich

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/propwrite/propwrite/internal/cache"
	"github.com/propwrite/propwrite/internal/core"
)

// Enricher builds amenity profiles. Geocode results and per-category
// place lists are cached for the configured TTL; successive category
// queries are separated by a fixed delay to respect Overpass rate limits.
type Enricher struct {
	Geocoder      *Geocoder
	Places        *Places
	Cache         *cache.Cache
	TTL           time.Duration
	CategoryDelay time.Duration
}

// New creates an Enricher with the standard 1 h TTL and 3 s inter-query
// delay.
func New(geocoder *Geocoder, places *Places, c *cache.Cache) *Enricher {
	return &Enricher{
		Geocoder:      geocoder,
		Places:        places,
		Cache:         c,
		TTL:           time.Hour,
		CategoryDelay: 3 * time.Second,
	}
}

// Enrich resolves the location and profiles every amenity category.
// Either a postcode or an explicit coordinate pair is accepted; postcode
// wins when both are present. A geocoder miss or failure returns the
// empty report rather than an error — enrichment is best-effort.
func (e *Enricher) Enrich(ctx context.Context, postcode string, lat, lon *float64) (core.EnrichmentReport, error) {
	empty := core.EnrichmentReport{
		Counts:      map[string]int{},
		Nearest:     map[string]core.POI{},
		Highlights:  []string{},
		Descriptors: map[string]string{},
	}

	if postcode != "" {
		glat, glon, ok := e.geocode(ctx, postcode)
		if !ok {
			return empty, nil
		}
		lat, lon = &glat, &glon
	}
	if lat == nil || lon == nil {
		return empty, core.Validationf("postcode or coordinates required")
	}

	counts := map[string]int{}
	nearest := map[string]core.POI{}

	for i, category := range Categories {
		if i > 0 {
			if err := e.pause(ctx); err != nil {
				return empty, err
			}
		}

		places, err := e.queryCategory(ctx, category, *lat, *lon)
		if err != nil {
			// One failed category leaves its counts empty; the rest proceed.
			log.Printf("enrich: category %s failed: %v", category, err)
			continue
		}

		counts[category] = len(places)
		for _, p := range places {
			d := haversineMiles(*lat, *lon, p.Lat, p.Lon)
			cur, ok := nearest[category]
			if !ok || d < cur.DistanceMiles {
				nearest[category] = core.POI{Name: p.Name, DistanceMiles: d}
			}
		}
	}

	return core.EnrichmentReport{
		Latitude:    lat,
		Longitude:   lon,
		Counts:      counts,
		Nearest:     nearest,
		Highlights:  buildHighlights(counts, nearest),
		Descriptors: buildDescriptors(counts, nearest),
	}, nil
}

// geocode resolves a postcode through the cache.
func (e *Enricher) geocode(ctx context.Context, postcode string) (lat, lon float64, ok bool) {
	key := "geocode:" + NormalisePostcode(postcode)
	if v, hit := e.Cache.Get(key); hit {
		r := v.(*geocodeResult)
		return r.Latitude, r.Longitude, true
	}

	result, err := e.Geocoder.Lookup(ctx, postcode)
	if err != nil {
		log.Printf("enrich: geocode %q failed: %v", postcode, err)
		return 0, 0, false
	}
	if result == nil {
		return 0, 0, false
	}
	e.Cache.Set(key, result, e.TTL)
	return result.Latitude, result.Longitude, true
}

// queryCategory fetches one category's places through the cache.
func (e *Enricher) queryCategory(ctx context.Context, category string, lat, lon float64) ([]Place, error) {
	key := fmt.Sprintf("places:%.4f,%.4f:%s", lat, lon, category)
	if v, hit := e.Cache.Get(key); hit {
		return v.([]Place), nil
	}

	places, err := e.Places.Query(ctx, category, lat, lon)
	if err != nil {
		return nil, err
	}
	e.Cache.Set(key, places, e.TTL)
	return places, nil
}

// pause waits the inter-query delay, honouring cancellation.
func (e *Enricher) pause(ctx context.Context) error {
	if e.CategoryDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(e.CategoryDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Places queries an Overpass endpoint for points of interest around a
// coordinate.
type Places struct {
	BaseURL string
	RadiusM int
	Timeout time.Duration
}

// Place is one point of interest returned by a category query.
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

type overpassElement struct {
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// Query returns the places for one category within the configured radius.
// Node elements carry their own coordinates; way elements use the computed
// centre. Unnamed elements are kept with an empty name.
func (p *Places) Query(ctx context.Context, category string, lat, lon float64) ([]Place, error) {
	filter, ok := overpassFilters[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	radius := p.RadiusM
	if radius <= 0 {
		radius = 1600
	}
	ql := fmt.Sprintf(
		"[out:json][timeout:10];(node%[1]s(around:%[2]d,%[3]f,%[4]f);way%[1]s(around:%[2]d,%[3]f,%[4]f););out center;",
		filter, radius, lat, lon)

	client := &http.Client{Timeout: p.timeout()}

	var places []Place
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL,
			strings.NewReader(url.Values{"data": {ql}}.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusGatewayTimeout {
			return fmt.Errorf("overpass: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("overpass: status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return err
		}
		var parsed overpassResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("overpass: decoding response: %w", err))
		}

		places = places[:0]
		for _, el := range parsed.Elements {
			place := Place{Name: el.Tags["name"]}
			switch {
			case el.Type == "node":
				place.Lat, place.Lon = el.Lat, el.Lon
			case el.Center != nil:
				place.Lat, place.Lon = el.Center.Lat, el.Center.Lon
			default:
				continue
			}
			places = append(places, place)
		}
		return nil
	}

	if err := retryOutbound(ctx, op); err != nil {
		return nil, err
	}
	return places, nil
}

func (p *Places) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return 10 * time.Second
}

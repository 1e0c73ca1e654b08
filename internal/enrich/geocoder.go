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

// Geocoder resolves UK postcodes to coordinates via a postcodes.io
// compatible API.
type Geocoder struct {
	BaseURL string
	Timeout time.Duration
}

// geocodeResult is the coordinate pair plus the district metadata the
// API returns alongside it.
type geocodeResult struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AdminDistrict string  `json:"admin_district"`
	AdminCounty   string  `json:"admin_county"`
	Country       string  `json:"country"`
}

type geocodeResponse struct {
	Status int            `json:"status"`
	Result *geocodeResult `json:"result"`
}

// NormalisePostcode uppercases and collapses internal whitespace so that
// "m1  4bt" and "M1 4BT" share one cache key.
func NormalisePostcode(postcode string) string {
	return strings.Join(strings.Fields(strings.ToUpper(postcode)), " ")
}

// Lookup resolves a postcode. Transport errors and 429/504 responses are
// retried up to 3 times with 4–30 s exponential back-off; a non-200 API
// status returns (nil, nil) so enrichment can degrade to an empty report.
func (g *Geocoder) Lookup(ctx context.Context, postcode string) (*geocodeResult, error) {
	normalised := NormalisePostcode(postcode)
	if normalised == "" {
		return nil, fmt.Errorf("empty postcode")
	}

	endpoint := g.BaseURL + "/postcodes/" + url.PathEscape(normalised)
	client := &http.Client{Timeout: g.timeout()}

	var result *geocodeResult
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusGatewayTimeout {
			return fmt.Errorf("geocoder: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		var parsed geocodeResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("geocoder: decoding response: %w", err))
		}
		if parsed.Status != http.StatusOK || parsed.Result == nil {
			// Unknown postcode — not retryable, not fatal.
			result = nil
			return nil
		}
		result = parsed.Result
		return nil
	}

	if err := retryOutbound(ctx, op); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Geocoder) timeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return 10 * time.Second
}

// retryOutbound applies the shared enrichment retry policy: 3 attempts,
// 4–30 s jittered exponential back-off.
func retryOutbound(ctx context.Context, op backoff.Operation) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 4 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}

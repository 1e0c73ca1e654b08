package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestBuildCloudAnalysisRoomPriority(t *testing.T) {
	// "kitchen" outranks "house" even when house is listed first.
	a := buildCloudAnalysis("photo.jpg", []string{"house", "room", "kitchen", "countertop"}, 200)
	assert.Equal(t, core.RoomKitchen, a.RoomType)
	assert.True(t, a.Interior)
	assert.Equal(t, core.LightBright, a.LightLevel)

	b := buildCloudAnalysis("photo.jpg", []string{"sky", "lawn", "tree", "house"}, 120)
	assert.Equal(t, core.RoomExterior, b.RoomType)
	assert.False(t, b.Interior)
	assert.Equal(t, core.LightModerate, b.LightLevel)

	c := buildCloudAnalysis("photo.jpg", []string{"wall", "floor"}, 50)
	assert.Equal(t, core.RoomOther, c.RoomType)
	assert.Equal(t, core.LightDim, c.LightLevel)
}

func TestBuildCloudAnalysisFeatureBound(t *testing.T) {
	labels := []string{
		"fireplace", "hardwood", "bay window", "kitchen island",
		"countertop", "bathtub", "shower", "radiator", "skylight",
	}
	a := buildCloudAnalysis("photo.jpg", labels, 150)
	assert.LessOrEqual(t, len(a.Attributes), 6)
	assert.Contains(t, a.Attributes, "fireplace")
}

func TestCloudCaptionsInBand(t *testing.T) {
	for room := range captionTemplates {
		a := buildCloudAnalysis("photo.jpg", []string{string(room)}, 150)
		wc := core.WordCount(a.Caption)
		assert.GreaterOrEqual(t, wc, 8, "caption too short for %s: %q", room, a.Caption)
		assert.LessOrEqual(t, wc, 20, "caption too long for %s: %q", room, a.Caption)
	}
}

func TestCloudProviderAnnotateRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images:annotate", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"responses": [{
				"labelAnnotations": [
					{"description": "Kitchen", "score": 0.97},
					{"description": "Countertop", "score": 0.91}
				],
				"imagePropertiesAnnotation": {
					"dominantColors": {"colors": [
						{"color": {"red": 220, "green": 210, "blue": 200}, "pixelFraction": 0.6},
						{"color": {"red": 40, "green": 40, "blue": 40}, "pixelFraction": 0.1}
					]}
				}
			}]
		}`))
	}))
	defer srv.Close()

	p := &CloudProvider{APIKey: "test-key", Endpoint: srv.URL}
	a, err := p.Analyze(context.Background(), []byte("jpegdata"), "kitchen.jpg")
	require.NoError(t, err)
	assert.Equal(t, core.RoomKitchen, a.RoomType)
	assert.Equal(t, core.LightBright, a.LightLevel)
	assert.Contains(t, a.Attributes, "fitted worktops")
}

func TestCloudProviderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses": [{"labelAnnotations": [{"description": "Kitchen", "score": 0.9}]}]}`))
	}))
	defer srv.Close()

	p := &CloudProvider{APIKey: "test-key", Endpoint: srv.URL}
	a, err := p.Analyze(context.Background(), []byte("jpegdata"), "kitchen.jpg")
	require.NoError(t, err)
	assert.Equal(t, core.RoomKitchen, a.RoomType)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCloudProviderClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := &CloudProvider{APIKey: "test-key", Endpoint: srv.URL}
	_, err := p.Analyze(context.Background(), []byte("jpegdata"), "kitchen.jpg")
	require.ErrorIs(t, err, core.ErrProviderUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

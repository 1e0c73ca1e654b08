package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/propwrite/propwrite/internal/core"
)

// CloudProvider classifies via a label/colour analysis API. Detected
// labels map to room types through a fixed priority table; light level
// comes from dominant-colour brightness; captions are template-built.
type CloudProvider struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

func (p *CloudProvider) Name() string { return "cloud" }

const defaultCloudEndpoint = "https://vision.googleapis.com"

// labelRoomPriority maps label strings to room types. Order is priority:
// the first label in this table found among the detections wins, so
// specific rooms beat generic labels like "room" or "house".
var labelRoomPriority = []struct {
	label string
	room  core.RoomType
}{
	{"kitchen", core.RoomKitchen},
	{"countertop", core.RoomKitchen},
	{"bathroom", core.RoomBathroom},
	{"sink", core.RoomBathroom},
	{"bedroom", core.RoomBedroom},
	{"bed", core.RoomBedroom},
	{"living room", core.RoomLivingRoom},
	{"couch", core.RoomLivingRoom},
	{"sofa", core.RoomLivingRoom},
	{"dining room", core.RoomDiningRoom},
	{"garden", core.RoomGarden},
	{"lawn", core.RoomGarden},
	{"backyard", core.RoomGarden},
	{"conservatory", core.RoomConservatory},
	{"garage", core.RoomGarage},
	{"balcony", core.RoomBalcony},
	{"stairs", core.RoomHallway},
	{"hallway", core.RoomHallway},
	{"desk", core.RoomOffice},
	{"facade", core.RoomExterior},
	{"house", core.RoomExterior},
	{"building", core.RoomExterior},
	{"property", core.RoomExterior},
}

// exteriorKeywords flag an exterior scene regardless of room mapping.
var exteriorKeywords = map[string]bool{
	"sky": true, "facade": true, "roof": true, "lawn": true, "garden": true,
	"driveway": true, "tree": true, "street": true, "backyard": true,
	"fence": true, "patio": true, "cloud": true,
}

// featureLabels are labels worth surfacing as attributes, bounded to six.
var featureLabels = map[string]string{
	"fireplace":   "fireplace",
	"hardwood":    "wood flooring",
	"wood floor":  "wood flooring",
	"bay window":  "bay window",
	"window":      "good natural light",
	"island":      "kitchen island",
	"countertop":  "fitted worktops",
	"built-in":    "built-in storage",
	"wardrobe":    "fitted wardrobes",
	"bathtub":     "bathtub",
	"shower":      "shower",
	"radiator":    "central heating",
	"french door": "french doors",
	"skylight":    "skylight",
	"decking":     "decking",
	"patio":       "patio",
	"driveway":    "driveway",
	"garage":      "garage",
}

type annotateRequest struct {
	Requests []struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type       string `json:"type"`
			MaxResults int    `json:"maxResults"`
		} `json:"features"`
	} `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []struct {
			Description string  `json:"description"`
			Score       float64 `json:"score"`
		} `json:"labelAnnotations"`
		ImageProperties *struct {
			DominantColors struct {
				Colors []struct {
					Color struct {
						Red   float64 `json:"red"`
						Green float64 `json:"green"`
						Blue  float64 `json:"blue"`
					} `json:"color"`
					PixelFraction float64 `json:"pixelFraction"`
				} `json:"colors"`
			} `json:"dominantColors"`
		} `json:"imagePropertiesAnnotation"`
	} `json:"responses"`
}

// Analyze calls the annotate endpoint and maps the result. Transport
// errors and 429/5xx responses are retried up to 3 times with 4–30 s
// exponential back-off; other non-200 statuses fail immediately.
func (p *CloudProvider) Analyze(ctx context.Context, img []byte, filename string) (core.PhotoAnalysis, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = defaultCloudEndpoint
	}

	var req annotateRequest
	req.Requests = make([]struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type       string `json:"type"`
			MaxResults int    `json:"maxResults"`
		} `json:"features"`
	}, 1)
	req.Requests[0].Image.Content = base64.StdEncoding.EncodeToString(img)
	req.Requests[0].Features = []struct {
		Type       string `json:"type"`
		MaxResults int    `json:"maxResults"`
	}{
		{Type: "LABEL_DETECTION", MaxResults: 20},
		{Type: "IMAGE_PROPERTIES", MaxResults: 1},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return core.PhotoAnalysis{}, err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var respBody []byte
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			endpoint+"/v1/images:annotate?key="+p.APIKey, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("annotate status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("annotate status %d", resp.StatusCode))
		}

		respBody, err = io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 4 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx)); err != nil {
		return core.PhotoAnalysis{}, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}

	var parsed annotateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return core.PhotoAnalysis{}, fmt.Errorf("%w: decoding annotate response: %v", core.ErrProviderUnavailable, err)
	}
	if len(parsed.Responses) == 0 {
		return core.PhotoAnalysis{}, fmt.Errorf("%w: empty annotate response", core.ErrProviderUnavailable)
	}

	r := parsed.Responses[0]
	labels := make([]string, 0, len(r.LabelAnnotations))
	for _, l := range r.LabelAnnotations {
		labels = append(labels, strings.ToLower(l.Description))
	}

	brightness := -1.0
	if r.ImageProperties != nil {
		brightness = dominantBrightness(r.ImageProperties.DominantColors.Colors)
	}

	return buildCloudAnalysis(filename, labels, brightness), nil
}

// buildCloudAnalysis maps labels and brightness to an analysis. Split out
// for testing without an HTTP round trip.
func buildCloudAnalysis(filename string, labels []string, brightness float64) core.PhotoAnalysis {
	room := roomFromLabels(labels)

	interior := true
	exteriorHits := 0
	for _, label := range labels {
		if exteriorKeywords[label] {
			exteriorHits++
		}
	}
	if exteriorHits >= 2 || room == core.RoomExterior || room == core.RoomGarden {
		interior = false
	}

	var attributes []string
	seen := map[string]bool{}
	for _, label := range labels {
		for cue, attr := range featureLabels {
			if strings.Contains(label, cue) && !seen[attr] {
				seen[attr] = true
				attributes = append(attributes, attr)
			}
		}
		if len(attributes) >= 6 {
			break
		}
	}

	light := core.LightModerate
	switch {
	case brightness < 0:
		// no colour data
	case brightness >= 170:
		light = core.LightBright
	case brightness < 90:
		light = core.LightDim
	}

	return core.PhotoAnalysis{
		Filename:   filename,
		RoomType:   room,
		Attributes: attributes,
		LightLevel: light,
		Interior:   interior,
		Caption:    cloudCaption(room, attributes, light),
		Confidence: 0.7,
	}
}

// roomFromLabels walks the priority table and returns the first room type
// whose label cue appears among the detections.
func roomFromLabels(labels []string) core.RoomType {
	for _, entry := range labelRoomPriority {
		for _, label := range labels {
			if strings.Contains(label, entry.label) {
				return entry.room
			}
		}
	}
	return core.RoomOther
}

// dominantBrightness averages the dominant colours, weighted by pixel
// fraction, on a 0–255 scale.
func dominantBrightness(colors []struct {
	Color struct {
		Red   float64 `json:"red"`
		Green float64 `json:"green"`
		Blue  float64 `json:"blue"`
	} `json:"color"`
	PixelFraction float64 `json:"pixelFraction"`
}) float64 {
	var sum, weight float64
	for _, c := range colors {
		w := c.PixelFraction
		if w <= 0 {
			w = 0.01
		}
		sum += w * (c.Color.Red + c.Color.Green + c.Color.Blue) / 3
		weight += w
	}
	if weight == 0 {
		return -1
	}
	return sum / weight
}

// captionTemplates phrase the room type; a feature and the light level
// pad the caption into the 8–20 word band.
var captionTemplates = map[core.RoomType]string{
	core.RoomKitchen:      "Kitchen with %s photographed in %s light showing the main run of units",
	core.RoomBedroom:      "Bedroom with %s photographed in %s light from the main doorway",
	core.RoomBathroom:     "Bathroom with %s shown in %s light from the doorway angle",
	core.RoomLivingRoom:   "Living room with %s captured in %s light across the seating area",
	core.RoomDiningRoom:   "Dining room with %s photographed in %s light across the table space",
	core.RoomGarden:       "Garden view with %s captured in %s light across the outdoor space",
	core.RoomExterior:     "Exterior view with %s photographed in %s light from the road",
	core.RoomHallway:      "Hallway with %s photographed in %s light along the entrance area",
	core.RoomOffice:       "Office space with %s photographed in %s light beside the work area",
	core.RoomConservatory: "Conservatory with %s captured in %s light towards the garden aspect",
	core.RoomGarage:       "Garage with %s photographed in %s light from the entrance door",
	core.RoomBalcony:      "Balcony with %s captured in %s light looking out from the room",
	core.RoomOther:        "Room with %s photographed in %s light showing the overall layout",
}

func cloudCaption(room core.RoomType, attributes []string, light core.LightLevel) string {
	feature := "the main features visible"
	if len(attributes) > 0 {
		feature = attributes[0]
	}
	template, ok := captionTemplates[room]
	if !ok {
		template = captionTemplates[core.RoomOther]
	}
	return fmt.Sprintf(template, feature, light)
}

package vision

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
)

// MockProvider derives a deterministic analysis from filename substrings.
// Used in tests and offline development; captions always satisfy the
// 8–20 word bound.
type MockProvider struct{}

func (m *MockProvider) Name() string { return "mock" }

// roomCues maps filename substrings to room types, checked in order so
// the more specific cues win.
var roomCues = []struct {
	substr string
	room   core.RoomType
}{
	{"kitchen", core.RoomKitchen},
	{"bath", core.RoomBathroom},
	{"ensuite", core.RoomBathroom},
	{"bed", core.RoomBedroom},
	{"living", core.RoomLivingRoom},
	{"lounge", core.RoomLivingRoom},
	{"dining", core.RoomDiningRoom},
	{"garden", core.RoomGarden},
	{"patio", core.RoomGarden},
	{"exterior", core.RoomExterior},
	{"front", core.RoomExterior},
	{"facade", core.RoomExterior},
	{"hall", core.RoomHallway},
	{"office", core.RoomOffice},
	{"study", core.RoomOffice},
	{"conservatory", core.RoomConservatory},
	{"garage", core.RoomGarage},
	{"balcony", core.RoomBalcony},
}

// mockProfiles are the deterministic findings per room type.
var mockProfiles = map[core.RoomType]struct {
	attributes []string
	finishes   []string
	caption    string
	interior   bool
}{
	core.RoomKitchen: {
		attributes: []string{"fitted units", "integrated appliances"},
		finishes:   []string{"worktop", "tiled splashback"},
		caption:    "Fitted kitchen with integrated appliances and generous worktop space along two walls",
		interior:   true,
	},
	core.RoomBedroom: {
		attributes: []string{"double bed space", "built-in storage"},
		finishes:   []string{"carpet", "painted walls"},
		caption:    "Double bedroom with built-in storage and space for freestanding furniture",
		interior:   true,
	},
	core.RoomBathroom: {
		attributes: []string{"three-piece suite", "shower over bath"},
		finishes:   []string{"tiling", "chrome fittings"},
		caption:    "Family bathroom with three-piece suite and shower fitted over the bath",
		interior:   true,
	},
	core.RoomLivingRoom: {
		attributes: []string{"bay window", "feature fireplace"},
		finishes:   []string{"wood flooring"},
		caption:    "Living room with bay window and a feature fireplace as the focal point",
		interior:   true,
	},
	core.RoomDiningRoom: {
		attributes: []string{"table space for six"},
		finishes:   []string{"wood flooring"},
		caption:    "Dining room with space for a six-seat table beside the window",
		interior:   true,
	},
	core.RoomGarden: {
		attributes: []string{"lawn", "patio area", "fenced boundary"},
		finishes:   nil,
		caption:    "Enclosed rear garden with lawn and a paved patio area for seating",
		interior:   false,
	},
	core.RoomExterior: {
		attributes: []string{"brick elevation", "off-road parking"},
		finishes:   nil,
		caption:    "Front elevation in brick with off-road parking on the private driveway",
		interior:   false,
	},
	core.RoomHallway: {
		attributes: []string{"entrance hall", "stairs to first floor"},
		finishes:   []string{"carpet"},
		caption:    "Entrance hallway with stairs rising to the first floor landing area",
		interior:   true,
	},
	core.RoomOffice: {
		attributes: []string{"desk space", "network point"},
		finishes:   []string{"carpet"},
		caption:    "Home office with desk space and natural light from the side window",
		interior:   true,
	},
	core.RoomConservatory: {
		attributes: []string{"glazed roof", "garden access"},
		finishes:   nil,
		caption:    "Conservatory with glazed roof and double doors opening onto the garden",
		interior:   true,
	},
	core.RoomGarage: {
		attributes: []string{"up-and-over door", "power and light"},
		finishes:   nil,
		caption:    "Single garage with up-and-over door plus power and light connected inside",
		interior:   true,
	},
	core.RoomBalcony: {
		attributes: []string{"railed balcony", "outdoor seating space"},
		finishes:   nil,
		caption:    "Private balcony with railed edge and room for a small seating arrangement",
		interior:   false,
	},
	core.RoomOther: {
		attributes: []string{"usable space"},
		finishes:   nil,
		caption:    "Interior room photographed in natural light showing the general layout and proportions",
		interior:   true,
	},
}

// orientationCues map filename substrings to orientation hints.
var orientationCues = []struct {
	substr string
	hint   string
}{
	{"south", "south_facing"},
	{"north", "north_facing"},
	{"east", "east_facing"},
	{"west", "west_facing"},
}

// Analyze classifies from the filename alone. The image bytes are ignored
// beyond a nil check.
func (m *MockProvider) Analyze(_ context.Context, image []byte, filename string) (core.PhotoAnalysis, error) {
	if len(image) == 0 {
		return core.PhotoAnalysis{}, fmt.Errorf("%w: empty image", core.ErrValidation)
	}

	name := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	room := core.RoomOther
	for _, cue := range roomCues {
		if strings.Contains(name, cue.substr) {
			room = cue.room
			break
		}
	}

	profile := mockProfiles[room]

	analysis := core.PhotoAnalysis{
		Filename:   filename,
		RoomType:   room,
		Attributes: append([]string(nil), profile.attributes...),
		Finishes:   append([]string(nil), profile.finishes...),
		LightLevel: core.LightModerate,
		Interior:   profile.interior,
		Caption:    profile.caption,
		Confidence: 0.9,
	}
	if strings.Contains(name, "bright") || strings.Contains(name, "sunny") {
		analysis.LightLevel = core.LightBright
	}
	for _, cue := range orientationCues {
		if strings.Contains(name, cue.substr) {
			analysis.OrientationHint = cue.hint
			break
		}
	}
	if !profile.interior && strings.Contains(name, "view") {
		analysis.ViewHint = "open outlook"
	}
	return analysis, nil
}

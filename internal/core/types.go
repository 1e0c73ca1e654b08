// Package core defines the shared value types that cross component
// boundaries: property facts, generation requests, photo analyses,
// enrichment reports, compliance reports, and brochure sessions.
// These are the Go representation of the JSON shapes exchanged with
// the HTTP layer and persisted in session metadata.
package core

import (
	"encoding/json"
	"strings"
	"time"
)

// PropertyType classifies the property being marketed.
type PropertyType string

const (
	PropertyHouse        PropertyType = "house"
	PropertyFlat         PropertyType = "flat"
	PropertyBungalow     PropertyType = "bungalow"
	PropertyMaisonette   PropertyType = "maisonette"
	PropertyTerraced     PropertyType = "terraced"
	PropertySemiDetached PropertyType = "semi_detached"
	PropertyDetached     PropertyType = "detached"
	PropertyCottage      PropertyType = "cottage"
)

// Condition describes the state of repair declared by the agent.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionNeedsWork Condition = "needs_work"
	ConditionRenovated Condition = "renovated"
	ConditionNewBuild  Condition = "new_build"
)

// Setting describes the surroundings of the property.
type Setting string

const (
	SettingUrban    Setting = "urban"
	SettingSuburban Setting = "suburban"
	SettingRural    Setting = "rural"
	SettingCoastal  Setting = "coastal"
	SettingVillage  Setting = "village"
)

// Audience selects who the copy is nominally written for. The generator
// never addresses the audience directly; it only biases emphasis.
type Audience string

const (
	AudienceFirstTimeBuyers Audience = "first_time_buyers"
	AudienceFamilies        Audience = "families"
	AudienceProfessionals   Audience = "professionals"
	AudienceInvestors       Audience = "investors"
	AudienceDownsizers      Audience = "downsizers"
	AudienceGeneral         Audience = "general"
)

// Tone selects the writing style and governs guard-rail strictness.
type Tone string

const (
	ToneBasic    Tone = "basic"
	TonePunchy   Tone = "punchy"
	ToneBoutique Tone = "boutique"
	TonePremium  Tone = "premium"
	ToneHybrid   Tone = "hybrid"
)

// Channel is the publishing target; it determines word budgets and
// keyword expectations.
type Channel string

const (
	ChannelRightmove Channel = "rightmove"
	ChannelBrochure  Channel = "brochure"
	ChannelSocial    Channel = "social"
	ChannelEmail     Channel = "email"
)

// PropertyFacts is the structured description of the property. Immutable
// within one generation request.
type PropertyFacts struct {
	Type       PropertyType `json:"type"`
	Bedrooms   int          `json:"bedrooms"`
	Bathrooms  int          `json:"bathrooms"`
	Condition  Condition    `json:"condition"`
	Features   []string     `json:"features,omitempty"`
	EPCRating  string       `json:"epc_rating,omitempty"` // A–G
	SizeSqFt   int          `json:"size_sqft,omitempty"`
	PriceGBP   int64        `json:"price_gbp,omitempty"`
}

// LocationFacts describes where the property is. Immutable within one request.
type LocationFacts struct {
	Address        string  `json:"address"`
	Postcode       string  `json:"postcode,omitempty"`
	Setting        Setting `json:"setting"`
	ProximityNotes string  `json:"proximity_notes,omitempty"`
}

// ChannelSpec names the channel plus optional word-count overrides.
type ChannelSpec struct {
	Channel     Channel `json:"channel"`
	TargetWords int     `json:"target_words,omitempty"`
	MaxWords    int     `json:"max_words,omitempty"`
}

// GenerateRequest is the validated input to the generator. It flows
// unchanged through the pipeline.
type GenerateRequest struct {
	Property          PropertyFacts       `json:"property"`
	Location          LocationFacts       `json:"location"`
	Audience          Audience            `json:"audience"`
	Tone              Tone                `json:"tone"`
	Channel           ChannelSpec         `json:"channel"`
	IncludeEnrichment bool                `json:"include_enrichment"`
	IncludeCompliance bool                `json:"include_compliance"`
	BrandID           string              `json:"brand_id,omitempty"`
	TemplateID        string              `json:"template_id,omitempty"`
	PhotoAnalysis     []PhotoAnalysis     `json:"photo_analysis,omitempty"`
	SectionPhotos     map[string][]string `json:"section_photos,omitempty"`
}

// RoomType is the closed room classification produced by vision analysis.
type RoomType string

const (
	RoomKitchen      RoomType = "kitchen"
	RoomLivingRoom   RoomType = "living_room"
	RoomBedroom      RoomType = "bedroom"
	RoomBathroom     RoomType = "bathroom"
	RoomDiningRoom   RoomType = "dining_room"
	RoomGarden       RoomType = "garden"
	RoomExterior     RoomType = "exterior"
	RoomHallway      RoomType = "hallway"
	RoomOffice       RoomType = "office"
	RoomConservatory RoomType = "conservatory"
	RoomGarage       RoomType = "garage"
	RoomBalcony      RoomType = "balcony"
	RoomOther        RoomType = "other"
)

// LightLevel is the vision provider's estimate of natural light.
type LightLevel string

const (
	LightBright   LightLevel = "bright"
	LightModerate LightLevel = "moderate"
	LightDim      LightLevel = "dim"
)

// PhotoAnalysis is the structured finding for one photograph. Captions are
// always 8–20 words; analyses that fail validation are flagged NeedsReview
// rather than dropped.
type PhotoAnalysis struct {
	Filename        string     `json:"filename"`
	RoomType        RoomType   `json:"room_type"`
	Attributes      []string   `json:"attributes,omitempty"`
	Finishes        []string   `json:"finishes,omitempty"`
	LightLevel      LightLevel `json:"light_level"`
	ViewHint        string     `json:"view_hint,omitempty"`
	Interior        bool       `json:"interior"`
	OrientationHint string     `json:"orientation_hint,omitempty"`
	Caption         string     `json:"caption"`
	Confidence      float64    `json:"confidence,omitempty"`
	NeedsReview     bool       `json:"needs_review,omitempty"`
}

// POI is the nearest point of interest in one amenity category.
type POI struct {
	Name          string  `json:"name"`
	DistanceMiles float64 `json:"distance_miles"`
}

// EnrichmentReport is the amenity profile derived from a postcode or
// coordinate pair. A total geocoder failure yields the zero report
// (nil coordinates, empty maps).
type EnrichmentReport struct {
	Latitude    *float64          `json:"latitude,omitempty"`
	Longitude   *float64          `json:"longitude,omitempty"`
	Counts      map[string]int    `json:"counts"`
	Nearest     map[string]POI    `json:"nearest"`
	Highlights  []string          `json:"highlights"`
	Descriptors map[string]string `json:"descriptors"`
}

// GeneratedVariant is one candidate piece of copy.
type GeneratedVariant struct {
	ID          string   `json:"id"`
	Headline    string   `json:"headline"`
	Body        string   `json:"body"`
	WordCount   int      `json:"word_count"`
	KeyFeatures []string `json:"key_features"`
	Score       float64  `json:"score"`
}

// Severity grades a compliance warning.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ComplianceWarning is one rule match in a compliance report.
type ComplianceWarning struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// CoverageReport measures how well a text exercises the vocabulary the
// channel expects.
type CoverageReport struct {
	Covered     []string `json:"covered"`
	Missing     []string `json:"missing"`
	Score       float64  `json:"score"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ComplianceReport is the outcome of checking one text. Compliant is true
// exactly when no error-severity warnings were raised.
type ComplianceReport struct {
	Compliant   bool                `json:"compliant"`
	Warnings    []ComplianceWarning `json:"warnings"`
	Score       float64             `json:"score"`
	Keywords    *CoverageReport     `json:"keywords,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`
}

// LengthReport is the outcome of validating a text against a channel's
// word budget. WithinTarget allows ±10% around the target.
type LengthReport struct {
	WordCount        int  `json:"word_count"`
	Target           int  `json:"target"`
	Cap              int  `json:"cap"`
	WithinTarget     bool `json:"within_target"`
	WithinCap        bool `json:"within_cap"`
	NeedsCompression bool `json:"needs_compression"`
}

// ShrinkResult is the outcome of a shrink call. Ratio is result words over
// input words; exactly 1.0 when the input was already within target.
type ShrinkResult struct {
	Text      string  `json:"text"`
	WordCount int     `json:"word_count"`
	Ratio     float64 `json:"ratio"`
}

// Photo is one photograph attached to a brochure session. On ingress it
// carries a base-64 data URL; after persistence the data URL is replaced
// by a FILE_STORED_<id> sentinel and StoredPath points at the file.
type Photo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	DataURL    string `json:"dataUrl,omitempty"`
	StoredPath string `json:"stored_path,omitempty"`
}

// BrochureSession is the persisted working state of the brochure editor.
type BrochureSession struct {
	ID            string          `json:"id"`
	OwnerEmail    string          `json:"owner_email"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	Property      PropertyFacts   `json:"property"`
	Photos        []Photo         `json:"photos"`
	PhotoAnalysis []PhotoAnalysis `json:"photo_analysis,omitempty"`
	Pages         json.RawMessage `json:"pages,omitempty"`
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Package brand holds agency branding profiles: palette, typography,
// logo metadata, and per-template writing-style rules. Profiles load
// from on-disk JSON at startup and live in a process-wide store; a
// built-in default is seeded when no files exist.
package brand

import (
	"github.com/propwrite/propwrite/internal/core"
)

// TemplateType is the closed set of brochure template styles.
type TemplateType string

const (
	TemplateStandard TemplateType = "standard"
	TemplatePremium  TemplateType = "premium"
	TemplateClassic  TemplateType = "classic"
)

// Palette is the brand colour set, hex-encoded.
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Text      string `json:"text"`
}

// Typography names the fonts used on rendered material.
type Typography struct {
	HeadlineFont   string `json:"headline_font"`
	BodyFont       string `json:"body_font"`
	HeadlineWeight int    `json:"headline_weight"`
	BodyWeight     int    `json:"body_weight"`
}

// Logo is placement metadata for the agency logo.
type Logo struct {
	Path     string `json:"path"`
	Position string `json:"position"`
	WidthMM  int    `json:"width_mm"`
}

// StyleRules are the writing-style constraints one template imposes on
// generated copy. MinWords/MaxWords override the channel budget when set.
type StyleRules struct {
	MinWords         int      `json:"min_words,omitempty"`
	MaxWords         int      `json:"max_words,omitempty"`
	Tone             string   `json:"tone,omitempty"`
	PreferredPhrases []string `json:"preferred_phrases,omitempty"`
	AvoidPhrases     []string `json:"avoid_phrases,omitempty"`
	SampleOpenings   []string `json:"sample_openings,omitempty"`
	StructureGuide   string   `json:"structure_guide,omitempty"`
}

// Template is one brochure template configuration.
type Template struct {
	Type      TemplateType `json:"type"`
	Name      string       `json:"name"`
	PageCount int          `json:"page_count,omitempty"`
	Style     StyleRules   `json:"style"`
}

// SelectionRule scores a property against a template choice. Each field
// that is set and matches adds to the rule's score; a set field that does
// not match disqualifies the rule.
type SelectionRule struct {
	Template      TemplateType        `json:"template"`
	Character     string              `json:"character,omitempty"`
	MinPriceGBP   int64               `json:"min_price_gbp,omitempty"`
	MaxPriceGBP   int64               `json:"max_price_gbp,omitempty"`
	MinBedrooms   int                 `json:"min_bedrooms,omitempty"`
	MaxBedrooms   int                 `json:"max_bedrooms,omitempty"`
	PropertyTypes []core.PropertyType `json:"property_types,omitempty"`
}

// Profile is one agency's complete branding configuration.
type Profile struct {
	ID                string                    `json:"id"`
	DisplayName       string                    `json:"display_name"`
	Palette           Palette                   `json:"palette"`
	Typography        Typography                `json:"typography"`
	Logo              Logo                      `json:"logo"`
	Disclaimer        string                    `json:"disclaimer,omitempty"`
	MandatoryElements []string                  `json:"mandatory_elements,omitempty"`
	Templates         map[TemplateType]Template `json:"templates"`
	SelectionRules    []SelectionRule           `json:"selection_rules,omitempty"`
}

// Template returns the named template, falling back to standard and then
// to the zero template when the profile is sparse.
func (p *Profile) Template(tt TemplateType) Template {
	if t, ok := p.Templates[tt]; ok {
		return t
	}
	if t, ok := p.Templates[TemplateStandard]; ok {
		return t
	}
	return Template{Type: TemplateStandard, Name: "Standard"}
}

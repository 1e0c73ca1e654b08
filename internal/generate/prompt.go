package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/propwrite/propwrite/internal/brand"
	"github.com/propwrite/propwrite/internal/compliance"
	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/lengths"
)

// The prompt is assembled from named blocks, each derived from structured
// data. Blocks never interpolate raw user text into instructions; facts
// are presented as labelled lists the model reads, not templates it fills.

func brandStyleBlock(p *brand.Profile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "BRAND STYLE (%s):\n", p.DisplayName)
	if p.Disclaimer != "" {
		b.WriteString("All copy must be consistent with a formal agency voice.\n")
	}
	std := p.Template(brand.TemplateStandard)
	if len(std.Style.PreferredPhrases) > 0 {
		fmt.Fprintf(&b, "Preferred phrasing: %s\n", strings.Join(std.Style.PreferredPhrases, "; "))
	}
	if len(std.Style.AvoidPhrases) > 0 {
		fmt.Fprintf(&b, "Never use: %s\n", strings.Join(std.Style.AvoidPhrases, "; "))
	}
	if len(std.Style.SampleOpenings) > 0 {
		fmt.Fprintf(&b, "Example openings in this brand's voice:\n")
		for _, s := range std.Style.SampleOpenings {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}

func templateBlock(t brand.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TEMPLATE (%s):\n", t.Name)
	if t.Style.StructureGuide != "" {
		fmt.Fprintf(&b, "Structure: %s\n", t.Style.StructureGuide)
	}
	if t.Style.Tone != "" {
		fmt.Fprintf(&b, "Template voice: %s\n", t.Style.Tone)
	}
	if t.Style.MinWords > 0 && t.Style.MaxWords > 0 {
		fmt.Fprintf(&b, "Description length: %d to %d words.\n", t.Style.MinWords, t.Style.MaxWords)
	}
	if len(t.Style.PreferredPhrases) > 0 {
		fmt.Fprintf(&b, "Favour phrases like: %s\n", strings.Join(t.Style.PreferredPhrases, "; "))
	}
	if len(t.Style.AvoidPhrases) > 0 {
		fmt.Fprintf(&b, "Avoid: %s\n", strings.Join(t.Style.AvoidPhrases, "; "))
	}
	return b.String()
}

func propertyBlock(f core.PropertyFacts) string {
	var b strings.Builder
	b.WriteString("PROPERTY FACTS:\n")
	fmt.Fprintf(&b, "Type: %s\n", f.Type)
	fmt.Fprintf(&b, "Bedrooms: %d\n", f.Bedrooms)
	fmt.Fprintf(&b, "Bathrooms: %d\n", f.Bathrooms)
	if f.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", f.Condition)
	}
	if f.SizeSqFt > 0 {
		fmt.Fprintf(&b, "Size: %d sq ft\n", f.SizeSqFt)
	}
	if f.PriceGBP > 0 {
		fmt.Fprintf(&b, "Price: £%d\n", f.PriceGBP)
	}
	if f.EPCRating != "" {
		fmt.Fprintf(&b, "EPC rating: %s\n", f.EPCRating)
	}
	if len(f.Features) > 0 {
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(f.Features, ", "))
	}
	return b.String()
}

func locationBlock(l core.LocationFacts) string {
	var b strings.Builder
	b.WriteString("LOCATION:\n")
	fmt.Fprintf(&b, "Address: %s\n", l.Address)
	if l.Postcode != "" {
		fmt.Fprintf(&b, "Postcode: %s\n", l.Postcode)
	}
	if l.Setting != "" {
		fmt.Fprintf(&b, "Setting: %s\n", l.Setting)
	}
	if l.ProximityNotes != "" {
		fmt.Fprintf(&b, "Agent notes: %s\n", l.ProximityNotes)
	}
	return b.String()
}

func enrichmentBlock(r *core.EnrichmentReport) string {
	if r == nil || (len(r.Highlights) == 0 && len(r.Descriptors) == 0) {
		return ""
	}
	var b strings.Builder
	b.WriteString("LOCAL AREA (verified data, use only these claims):\n")
	for _, h := range r.Highlights {
		fmt.Fprintf(&b, "  - %s\n", h)
	}
	keys := make([]string, 0, len(r.Descriptors))
	for k := range r.Descriptors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  - %s: %s\n", strings.ReplaceAll(k, "_", " "), r.Descriptors[k])
	}
	return b.String()
}

// photoCategory groups room types into prompt sections.
func photoCategory(room core.RoomType) string {
	switch room {
	case core.RoomKitchen, core.RoomDiningRoom:
		return "Kitchen and dining"
	case core.RoomLivingRoom, core.RoomConservatory, core.RoomOffice:
		return "Living spaces"
	case core.RoomBedroom:
		return "Bedrooms"
	case core.RoomBathroom:
		return "Bathrooms"
	case core.RoomGarden, core.RoomBalcony, core.RoomExterior, core.RoomGarage:
		return "Outside"
	default:
		return "Other"
	}
}

// photoCategoryOrder fixes the section order in the prompt.
var photoCategoryOrder = []string{
	"Outside", "Living spaces", "Kitchen and dining", "Bedrooms", "Bathrooms", "Other",
}

func photoBlock(analyses []core.PhotoAnalysis) string {
	if len(analyses) == 0 {
		return ""
	}
	grouped := make(map[string][]core.PhotoAnalysis)
	for _, a := range analyses {
		cat := photoCategory(a.RoomType)
		grouped[cat] = append(grouped[cat], a)
	}

	var b strings.Builder
	b.WriteString("PHOTOGRAPHIC EVIDENCE (describe only what the photos show):\n")
	for _, cat := range photoCategoryOrder {
		photos, ok := grouped[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, a := range photos {
			fmt.Fprintf(&b, "  - %s", a.Caption)
			if len(a.Attributes) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(a.Attributes, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sectionsBlock(sections map[string][]string, analyses []core.PhotoAnalysis) string {
	if len(sections) == 0 {
		return ""
	}
	captions := make(map[string]string, len(analyses))
	for _, a := range analyses {
		captions[a.Filename] = a.Caption
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("BROCHURE LAYOUT (photos per page, write copy that sits alongside them):\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, photo := range sections[name] {
			if caption := captions[photo]; caption != "" {
				fmt.Fprintf(&b, "  - %s\n", caption)
			} else {
				fmt.Fprintf(&b, "  - %s\n", photo)
			}
		}
	}
	return b.String()
}

// audienceBlock biases emphasis without ever addressing a persona.
func audienceBlock(a core.Audience) string {
	emphasis := map[core.Audience]string{
		core.AudienceFirstTimeBuyers: "affordability, condition, and low upkeep",
		core.AudienceFamilies:        "bedroom count, garden, storage, and nearby schools",
		core.AudienceProfessionals:   "transport links, work-from-home space, and low maintenance",
		core.AudienceInvestors:       "rental potential, size, and local demand signals",
		core.AudienceDownsizers:      "single-level living, manageability, and local amenities",
		core.AudienceGeneral:         "the property's strongest verifiable features",
	}
	e, ok := emphasis[a]
	if !ok {
		e = emphasis[core.AudienceGeneral]
	}
	return fmt.Sprintf("EMPHASIS: give most weight to %s.\n"+
		"Describe the property's features directly. Never address the reader, "+
		"never name a buyer type, never say who the property would suit.\n", e)
}

func toneBlock(t core.Tone) string {
	guidance := map[core.Tone]string{
		core.ToneBasic:    "Plain and factual. Short declarative sentences. No adjectives without a measurement or fact behind them.",
		core.TonePunchy:   "Short, energetic sentences. Lead every sentence with a concrete fact. No filler.",
		core.ToneHybrid:   "Balanced. Factual backbone with occasional warmer phrasing where a fact supports it.",
		core.ToneBoutique: "Elegant and restrained. Longer flowing sentences are acceptable when anchored in real detail.",
		core.TonePremium:  "Refined and assured. Understatement over superlatives. Let the facts carry the prestige.",
	}
	g, ok := guidance[t]
	if !ok {
		g = guidance[core.ToneHybrid]
	}
	return "TONE: " + g + "\n"
}

func channelBlock(spec core.ChannelSpec, budget lengths.Budget) string {
	guidance := map[core.Channel]string{
		core.ChannelRightmove: "Portal listing summary. Front-load the strongest facts; the first sentence appears in search results.",
		core.ChannelBrochure:  "Full brochure description. Cover every room group and the outside space in a logical walk-through order.",
		core.ChannelSocial:    "Social media post. One hook fact, one supporting fact, no hashtags.",
		core.ChannelEmail:     "Email alert to applicants. Lead with what is new or notable, keep paragraphs to two sentences.",
	}
	g, ok := guidance[spec.Channel]
	if !ok {
		g = guidance[core.ChannelBrochure]
	}
	return fmt.Sprintf("CHANNEL (%s): %s\nThe DESCRIPTION must be close to %d words and never exceed %d words.\n",
		spec.Channel, g, budget.Target, budget.Cap)
}

// guardRails are the tone-adaptive sentence discipline rules.
func guardRails(t core.Tone) string {
	switch t {
	case core.ToneBasic, core.TonePunchy:
		return "At least 70% of sentences must open with a concrete fact (a number, a room, a place). " +
			"Maximum 25 words per sentence. Maximum 2 commas per sentence. " +
			"Replace vague adjectives with measurements wherever one exists."
	case core.ToneHybrid:
		return "At least half of sentences must open with a concrete fact. " +
			"Maximum 30 words per sentence. Maximum 3 commas per sentence."
	default: // boutique, premium
		return "Sentences may flow to 35 words where the detail earns it. " +
			"Every claim must still trace to a listed fact."
	}
}

func requirementsBlock(t core.Tone) string {
	var b strings.Builder
	b.WriteString("CRITICAL REQUIREMENTS:\n")
	b.WriteString(guardRails(t))
	b.WriteString("\nNever use any of these phrases:\n")
	b.WriteString(strings.Join(compliance.BannedPhrases, ", "))
	b.WriteString("\nNever invent features, measurements, or area claims not listed above.\n")
	return b.String()
}

func formatBlock() string {
	return `OUTPUT FORMAT (exactly this shape, no other text):
HEADLINE: <one line>
DESCRIPTION:
<the description>
KEY_FEATURES:
- <feature>
- <feature>
- <feature>
`
}

// assemblePrompt concatenates the blocks in fixed order, skipping empties.
func assemblePrompt(req core.GenerateRequest, profile *brand.Profile, tmpl brand.Template,
	enrichment *core.EnrichmentReport, budget lengths.Budget) string {

	blocks := []string{
		brandStyleBlock(profile),
		templateBlock(tmpl),
		propertyBlock(req.Property),
		locationBlock(req.Location),
		enrichmentBlock(enrichment),
		photoBlock(req.PhotoAnalysis),
		sectionsBlock(req.SectionPhotos, req.PhotoAnalysis),
		audienceBlock(req.Audience),
		toneBlock(req.Tone),
		channelBlock(req.Channel, budget),
		requirementsBlock(req.Tone),
		formatBlock(),
	}

	var kept []string
	for _, block := range blocks {
		if block != "" {
			kept = append(kept, strings.TrimRight(block, "\n"))
		}
	}
	return strings.Join(kept, "\n\n")
}

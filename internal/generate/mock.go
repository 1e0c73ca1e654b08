package generate

import (
	"fmt"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/lengths"
)

// Mock generation: deterministic variants built from per-tone templates.
// Output respects the channel word target so downstream length and
// compliance checks behave the same as with a live model.

var mockHeadlines = map[core.Tone][]string{
	core.ToneBasic: {
		"%d bedroom %s for sale",
		"%d bedroom %s, %s",
	},
	core.TonePunchy: {
		"%d bed %s. Ready to view.",
		"%d bedrooms. One standout %s.",
	},
	core.ToneHybrid: {
		"A %d bedroom %s with real appeal",
		"Well placed %d bedroom %s",
	},
	core.ToneBoutique: {
		"An elegant %d bedroom %s",
		"A %d bedroom %s of quiet distinction",
	},
	core.TonePremium: {
		"A distinguished %d bedroom %s",
		"An exceptional %d bedroom %s",
	},
}

// mockSentences are factual filler sentences appended until the body
// reaches the channel target.
func mockSentences(req core.GenerateRequest) []string {
	f := req.Property
	l := req.Location
	t := strings.ReplaceAll(string(f.Type), "_", " ")

	sentences := []string{
		fmt.Sprintf("This %d bedroom %s is offered for sale on %s.", f.Bedrooms, t, l.Address),
		fmt.Sprintf("The accommodation includes %d bathrooms arranged over the property.", f.Bathrooms),
	}
	if f.SizeSqFt > 0 {
		sentences = append(sentences, fmt.Sprintf("Internal space measures approximately %d square feet.", f.SizeSqFt))
	}
	if f.EPCRating != "" {
		sentences = append(sentences, fmt.Sprintf("The property has an EPC rating of %s.", f.EPCRating))
	}
	for _, feat := range f.Features {
		sentences = append(sentences, fmt.Sprintf("The %s is a notable feature of the property.", strings.ToLower(feat)))
	}
	if l.Setting != "" {
		sentences = append(sentences, fmt.Sprintf("The property occupies a %s setting.", l.Setting))
	}
	if l.ProximityNotes != "" {
		sentences = append(sentences, fmt.Sprintf("Local notes from the agent: %s.", strings.TrimRight(l.ProximityNotes, ".")))
	}
	sentences = append(sentences,
		"The kitchen provides fitted storage and worktop space for everyday use.",
		"Each bedroom offers usable floor space and natural light from its window.",
		"Heating is provided throughout and the property is connected to mains services.",
		"Viewing is recommended to assess the layout and condition first hand.",
		"The agent can provide floor plans and further measurements on request.",
	)
	return sentences
}

// mockBody assembles sentences up to the word target, then truncates.
func mockBody(req core.GenerateRequest, budget lengths.Budget, seed int) string {
	sentences := mockSentences(req)
	// Rotate the start point so variants differ.
	start := seed % len(sentences)
	ordered := append(append([]string(nil), sentences[start:]...), sentences[:start]...)

	var out []string
	words := 0
	for i := 0; words < budget.Target; i++ {
		s := ordered[i%len(ordered)]
		out = append(out, s)
		words += core.WordCount(s)
	}
	body := strings.Join(out, " ")

	// Trim the overshoot back to the target.
	fields := strings.Fields(body)
	if len(fields) > budget.Target {
		body = strings.Join(fields[:budget.Target], " ")
		if !strings.HasSuffix(body, ".") {
			body += "."
		}
	}
	return body
}

func mockVariants(req core.GenerateRequest, n int, budget lengths.Budget) []core.GeneratedVariant {
	headlines, ok := mockHeadlines[req.Tone]
	if !ok {
		headlines = mockHeadlines[core.ToneHybrid]
	}
	t := strings.ReplaceAll(string(req.Property.Type), "_", " ")

	variants := make([]core.GeneratedVariant, 0, n)
	for i := 0; i < n; i++ {
		pattern := headlines[i%len(headlines)]
		var headline string
		if strings.Count(pattern, "%") >= 3 {
			headline = fmt.Sprintf(pattern, req.Property.Bedrooms, t, req.Location.Address)
		} else {
			headline = fmt.Sprintf(pattern, req.Property.Bedrooms, t)
		}
		variants = append(variants, buildVariant(parsed{
			headline: headline,
			body:     mockBody(req, budget, i),
			features: defaultFeatures(req.Property),
		}))
	}
	return variants
}

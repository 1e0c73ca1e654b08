package brand

import (
	"strings"

	"github.com/propwrite/propwrite/internal/core"
)

// Property character labels inferred from facts. Selection rules match on
// these rather than raw features.
const (
	CharacterLuxury   = "luxury"
	CharacterPeriod   = "period"
	CharacterModern   = "modern"
	CharacterStandard = "standard"
)

var periodCues = []string{
	"period", "victorian", "edwardian", "georgian", "original features",
	"fireplace", "sash windows", "beams", "character",
}

var modernCues = []string{
	"modern", "contemporary", "new build", "recently renovated", "underfloor heating",
	"smart home", "open plan",
}

var luxuryCues = []string{
	"luxury", "annexe", "swimming pool", "tennis court", "acre", "gated",
	"cinema room", "wine cellar",
}

// InferCharacter derives the property character from its type, declared
// features, and condition. Luxury outranks period outranks modern.
func InferCharacter(facts core.PropertyFacts) string {
	joined := strings.ToLower(strings.Join(facts.Features, " "))

	matches := func(cues []string) bool {
		for _, cue := range cues {
			if strings.Contains(joined, cue) {
				return true
			}
		}
		return false
	}

	if matches(luxuryCues) || facts.PriceGBP >= 2_000_000 {
		return CharacterLuxury
	}
	if matches(periodCues) || facts.Type == core.PropertyCottage {
		return CharacterPeriod
	}
	if matches(modernCues) || facts.Condition == core.ConditionNewBuild {
		return CharacterModern
	}
	return CharacterStandard
}

// score rates one rule against the property. A set condition that matches
// earns a point; a set condition that fails disqualifies (-1). An
// unconditional rule scores zero, so it only wins when nothing else does.
func (r SelectionRule) score(character string, facts core.PropertyFacts) int {
	score := 0

	if r.Character != "" {
		if r.Character != character {
			return -1
		}
		score++
	}
	if r.MinPriceGBP > 0 {
		if facts.PriceGBP < r.MinPriceGBP {
			return -1
		}
		score++
	}
	if r.MaxPriceGBP > 0 {
		if facts.PriceGBP > r.MaxPriceGBP {
			return -1
		}
		score++
	}
	if r.MinBedrooms > 0 {
		if facts.Bedrooms < r.MinBedrooms {
			return -1
		}
		score++
	}
	if r.MaxBedrooms > 0 {
		if facts.Bedrooms > r.MaxBedrooms {
			return -1
		}
		score++
	}
	if len(r.PropertyTypes) > 0 {
		found := false
		for _, t := range r.PropertyTypes {
			if t == facts.Type {
				found = true
				break
			}
		}
		if !found {
			return -1
		}
		score++
	}
	return score
}

// SelectTemplate picks the template for a property: the highest-scoring
// selection rule wins, ties go to the earlier rule, and a profile with no
// applicable rule falls back to standard.
func SelectTemplate(p *Profile, facts core.PropertyFacts) Template {
	if p == nil {
		return Template{Type: TemplateStandard, Name: "Standard"}
	}

	character := InferCharacter(facts)
	best := -1
	chosen := TemplateStandard
	for _, rule := range p.SelectionRules {
		if s := rule.score(character, facts); s > best {
			best = s
			chosen = rule.Template
		}
	}
	if best < 0 {
		chosen = TemplateStandard
	}
	return p.Template(chosen)
}

// Package keywords measures how well generated copy exercises the
// vocabulary a channel expects. Matching is substring and case-insensitive;
// the score is the weight-sum of covered keywords over the total weight.
package keywords

import (
	"fmt"
	"sort"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
)

// Priority weights for essential keywords.
const (
	weightHigh     = 3
	weightMedium   = 2
	weightLow      = 1
	weightChannel  = 2
	weightRequired = 3
)

// essentialKeywords are expected across every channel, weighted by priority.
var essentialKeywords = map[string]int{
	"bedroom":   weightHigh,
	"bathroom":  weightHigh,
	"kitchen":   weightHigh,
	"garden":    weightHigh,
	"parking":   weightHigh,
	"epc":       weightHigh,
	"living":    weightMedium,
	"storage":   weightMedium,
	"transport": weightMedium,
	"school":    weightMedium,
	"modern":    weightLow,
	"light":     weightLow,
}

// channelKeywords earn a bonus weight on their channel.
var channelKeywords = map[core.Channel][]string{
	core.ChannelRightmove: {"bedroom", "bathroom", "parking", "epc", "garden", "kitchen"},
	core.ChannelBrochure:  {"bedroom", "bathroom", "kitchen", "garden", "reception", "epc"},
	core.ChannelSocial:    {"bedroom", "garden", "kitchen"},
	core.ChannelEmail:     {"bedroom", "bathroom", "viewing", "epc"},
}

// Analyser scores keyword coverage. RequiredKeywords come from
// configuration and carry the highest weight.
type Analyser struct {
	RequiredKeywords []string
}

// maxSuggestions bounds the advice list on a coverage report.
const maxSuggestions = 5

// Analyse builds the coverage report for text on the given channel.
// propertyFeatures are the feature strings from the request, matched at
// low weight so unmentioned selling points surface as suggestions.
func (a *Analyser) Analyse(text string, channel core.Channel, propertyFeatures []string) core.CoverageReport {
	lower := strings.ToLower(text)

	type kw struct {
		weight   int
		required bool
		channel  bool
		high     bool
		feature  bool
	}
	merged := make(map[string]*kw)

	add := func(word string, weight int, mark func(*kw)) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			return
		}
		k, ok := merged[word]
		if !ok {
			k = &kw{}
			merged[word] = k
		}
		if weight > k.weight {
			k.weight = weight
		}
		mark(k)
	}

	for word, weight := range essentialKeywords {
		w := weight
		add(word, weight, func(k *kw) { k.high = w == weightHigh })
	}
	for _, word := range channelKeywords[channel] {
		add(word, weightChannel, func(k *kw) { k.channel = true })
	}
	for _, word := range a.RequiredKeywords {
		add(word, weightRequired, func(k *kw) { k.required = true })
	}
	for _, f := range propertyFeatures {
		add(f, weightLow, func(k *kw) { k.feature = true })
	}

	var covered, missing []string
	var coveredWeight, totalWeight int
	for word, k := range merged {
		totalWeight += k.weight
		if strings.Contains(lower, word) {
			covered = append(covered, word)
			coveredWeight += k.weight
		} else {
			missing = append(missing, word)
		}
	}
	sort.Strings(covered)
	sort.Strings(missing)

	score := 0.0
	if totalWeight > 0 {
		score = float64(coveredWeight) / float64(totalWeight)
	}

	// Rank suggestions: required > high priority > channel > property features.
	var suggestions []string
	suggest := func(pick func(*kw) bool, format string) {
		for _, word := range missing {
			if len(suggestions) >= maxSuggestions {
				return
			}
			if pick(merged[word]) {
				suggestions = append(suggestions, fmt.Sprintf(format, word))
				merged[word].weight = -1 // consumed
			}
		}
	}
	suggest(func(k *kw) bool { return k.required }, "include required keyword %q")
	suggest(func(k *kw) bool { return k.weight >= 0 && k.high }, "mention %q — buyers search for it")
	suggest(func(k *kw) bool { return k.weight >= 0 && k.channel }, "add %q for this channel")
	suggest(func(k *kw) bool { return k.weight >= 0 && k.feature }, "the property has %q but the copy never mentions it")

	return core.CoverageReport{
		Covered:     covered,
		Missing:     missing,
		Score:       score,
		Suggestions: suggestions,
	}
}

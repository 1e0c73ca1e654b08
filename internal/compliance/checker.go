package compliance

import (
	"fmt"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/keywords"
)

// Score deductions per warning severity.
const (
	errorPenalty   = 0.15
	warningPenalty = 0.05
	infoPenalty    = 0.02
)

// Checker evaluates generated copy against the rule tables. The embedded
// keyword analyser contributes the coverage sub-report.
type Checker struct {
	Coverage *keywords.Analyser
}

// NewChecker creates a Checker sharing the given coverage analyser.
func NewChecker(coverage *keywords.Analyser) *Checker {
	if coverage == nil {
		coverage = &keywords.Analyser{}
	}
	return &Checker{Coverage: coverage}
}

// Check runs every rule against text for the given channel. facts may be
// nil; when present the EPC rule consults facts.EPCRating and keyword
// coverage sees facts.Features.
func (c *Checker) Check(text string, channel core.Channel, facts *core.PropertyFacts) core.ComplianceReport {
	var warnings []core.ComplianceWarning

	for i, re := range bannedPatterns {
		if re.MatchString(text) {
			warnings = append(warnings, core.ComplianceWarning{
				Severity:   core.SeverityError,
				Message:    fmt.Sprintf("banned phrase %q", BannedPhrases[i]),
				Suggestion: "replace with a concrete, factual description",
			})
		}
	}
	for i, re := range subjectivePatterns {
		if re.MatchString(text) {
			warnings = append(warnings, core.ComplianceWarning{
				Severity:   core.SeverityWarning,
				Message:    fmt.Sprintf("subjective term %q needs supporting evidence", subjectiveTerms[i]),
				Suggestion: "state the measurable fact that justifies it, or remove it",
			})
		}
	}
	for i, re := range evidencePatterns {
		if re.MatchString(text) {
			warnings = append(warnings, core.ComplianceWarning{
				Severity:   core.SeverityWarning,
				Message:    fmt.Sprintf("claim %q requires evidence", evidenceClaims[i]),
				Suggestion: "cite dates, certificates, or named awards",
			})
		}
	}
	for i, re := range discriminatoryPatterns {
		if re.MatchString(text) {
			warnings = append(warnings, core.ComplianceWarning{
				Severity:   core.SeverityError,
				Message:    fmt.Sprintf("discriminatory phrasing %q", discriminatoryPhrases[i]),
				Suggestion: "describe the property, not the occupant",
			})
		}
	}

	if m := absolutesRe.FindString(text); m != "" {
		warnings = append(warnings, core.ComplianceWarning{
			Severity:   core.SeverityWarning,
			Message:    fmt.Sprintf("absolute %q is rarely defensible", m),
			Suggestion: "qualify or remove the absolute",
		})
	}
	if m := superlativesRe.FindString(text); m != "" {
		warnings = append(warnings, core.ComplianceWarning{
			Severity:   core.SeverityWarning,
			Message:    fmt.Sprintf("superlative %q invites challenge", m),
			Suggestion: "superlatives need comparative evidence",
		})
	}
	if bangsRe.MatchString(text) {
		warnings = append(warnings, core.ComplianceWarning{
			Severity:   core.SeverityInfo,
			Message:    "repeated exclamation marks",
			Suggestion: "one exclamation mark at most",
		})
	}

	warnings = append(warnings, c.checkEPC(text, facts)...)

	if limit, ok := ChannelWordCaps[channel]; ok {
		if wc := core.WordCount(text); wc > limit {
			warnings = append(warnings, core.ComplianceWarning{
				Severity:   core.SeverityError,
				Message:    fmt.Sprintf("%d words exceeds the %s cap of %d", wc, channel, limit),
				Suggestion: "shorten the copy or use the shrink service",
			})
		}
	}

	var errs, warns, infos int
	for _, w := range warnings {
		switch w.Severity {
		case core.SeverityError:
			errs++
		case core.SeverityWarning:
			warns++
		case core.SeverityInfo:
			infos++
		}
	}
	score := 1 - errorPenalty*float64(errs) - warningPenalty*float64(warns) - infoPenalty*float64(infos)
	if score < 0 {
		score = 0
	}

	var features []string
	if facts != nil {
		features = facts.Features
	}
	coverage := c.Coverage.Analyse(text, channel, features)

	var suggestions []string
	for _, w := range warnings {
		if w.Severity == core.SeverityError && w.Suggestion != "" {
			suggestions = append(suggestions, w.Suggestion)
		}
	}
	suggestions = append(suggestions, coverage.Suggestions...)

	return core.ComplianceReport{
		Compliant:   errs == 0,
		Warnings:    warnings,
		Score:       score,
		Keywords:    &coverage,
		Suggestions: suggestions,
	}
}

// checkEPC enforces the UK requirement that adverts carry the EPC rating.
// Missing from both text and facts is an error; known in facts but absent
// from the copy is informational.
func (c *Checker) checkEPC(text string, facts *core.PropertyFacts) []core.ComplianceWarning {
	inText := epcRe.MatchString(text)
	inFacts := facts != nil && facts.EPCRating != ""

	switch {
	case !inText && !inFacts:
		return []core.ComplianceWarning{{
			Severity:   core.SeverityError,
			Message:    "EPC rating is missing",
			Suggestion: "UK adverts must state the EPC band",
		}}
	case inFacts && !inText:
		return []core.ComplianceWarning{{
			Severity:   core.SeverityInfo,
			Message:    fmt.Sprintf("EPC rating %s is known but not mentioned in the copy", facts.EPCRating),
			Suggestion: fmt.Sprintf("add \"EPC Rating: %s\"", facts.EPCRating),
		}}
	}
	return nil
}

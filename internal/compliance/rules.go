// Package compliance flags advertising-standards and portal-guideline
// violations in generated copy. Rules are fixed tables; each match
// contributes a warning at the rule's severity, and a text is compliant
// exactly when no error-severity warnings were raised.
package compliance

import (
	"regexp"

	"github.com/propwrite/propwrite/internal/core"
)

// BannedPhrases is the closed list of filler and cliché phrases that fail
// a listing outright. The generator feeds this list into its prompt as
// negative examples, so the two components must share one table.
var BannedPhrases = []string{
	"nestled",
	"tucked away",
	"boasts",
	"boasting",
	"exudes",
	"epitomises",
	"epitome of",
	"sanctuary",
	"curated living",
	"distinguished residence",
	"abundance of",
	"a wealth of",
	"deceptively spacious",
	"briefly comprising",
	"must be seen",
	"viewing essential",
	"viewing is essential",
	"oozes charm",
	"oozing",
	"hidden gem",
	"rarely available",
	"stone's throw",
	"sought after",
	"sought-after",
	"oasis",
	"haven of",
	"idyllic",
}

// subjectiveTerms need supporting evidence in the copy.
var subjectiveTerms = []string{
	"perfect",
	"stunning",
	"spectacular",
	"unique",
	"breathtaking",
	"magnificent",
	"exceptional",
}

// evidenceClaims are allowed only with substantiation the checker cannot
// verify, so they warn.
var evidenceClaims = []string{
	"newly renovated",
	"recently refurbished",
	"award-winning",
	"luxury",
	"brand new",
	"fully modernised",
}

// discriminatoryPhrases breach advertising rules on protected groups.
var discriminatoryPhrases = []string{
	"ideal for couples",
	"ideal for a couple",
	"adults only",
	"no children",
	"no dss",
	"professionals only",
	"suit single person",
}

// ChannelWordCaps are the hard per-channel limits checked at error severity.
var ChannelWordCaps = map[core.Channel]int{
	core.ChannelRightmove: 1000,
	core.ChannelBrochure:  2000,
	core.ChannelSocial:    300,
	core.ChannelEmail:     500,
}

var (
	absolutesRe    = regexp.MustCompile(`(?i)\b(never|always|every|all)\b`)
	superlativesRe = regexp.MustCompile(`(?i)\b(best|finest|most)\b`)
	bangsRe        = regexp.MustCompile(`!{2,}`)
	epcRe          = regexp.MustCompile(`(?i)\bepc\b`)
)

// phrasePatterns compiles whole-word, case-insensitive patterns for a
// phrase list once at init.
func phrasePatterns(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}

var (
	bannedPatterns         = phrasePatterns(BannedPhrases)
	subjectivePatterns     = phrasePatterns(subjectiveTerms)
	evidencePatterns       = phrasePatterns(evidenceClaims)
	discriminatoryPatterns = phrasePatterns(discriminatoryPhrases)
)

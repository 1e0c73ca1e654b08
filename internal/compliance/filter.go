package compliance

import (
	"regexp"
)

// neutralReplacements maps a subset of banned and subjective words to
// neutral alternatives. Filter is advisory only; the generator never calls
// it automatically.
var neutralReplacements = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bnestled\b`), "located"},
	{regexp.MustCompile(`(?i)\btucked away\b`), "set back"},
	{regexp.MustCompile(`(?i)\bboasts\b`), "has"},
	{regexp.MustCompile(`(?i)\bboasting\b`), "with"},
	{regexp.MustCompile(`(?i)\bexudes\b`), "offers"},
	{regexp.MustCompile(`(?i)\bsanctuary\b`), "home"},
	{regexp.MustCompile(`(?i)\babundance of\b`), "plenty of"},
	{regexp.MustCompile(`(?i)\ba wealth of\b`), "a range of"},
	{regexp.MustCompile(`(?i)\bstunning\b`), "attractive"},
	{regexp.MustCompile(`(?i)\bperfect\b`), "well suited"},
	{regexp.MustCompile(`(?i)\bspectacular\b`), "notable"},
	{regexp.MustCompile(`(?i)\bunique\b`), "distinctive"},
	{regexp.MustCompile(`(?i)\bidyllic\b`), "quiet"},
}

var multiBangRe = regexp.MustCompile(`!{2,}`)

// Filter rewrites text with neutral alternatives for a subset of banned
// and subjective words and collapses repeated exclamation marks to one.
func Filter(text string) string {
	for _, r := range neutralReplacements {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return multiBangRe.ReplaceAllString(text, "!")
}

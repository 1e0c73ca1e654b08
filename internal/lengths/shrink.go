package lengths

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/llm"
)

// Shrinker reduces text to a target word count. The preferred path
// re-prompts the LLM; the fallback is extractive sentence packing. Shrink
// never fails outright — an unusable LLM answer degrades to the fallback.
type Shrinker struct {
	Client  *llm.Client
	Model   string
	Enabled bool
}

// shrinkOvershoot is the tolerated overshoot above target (matches the
// ±10% target band of Validate).
const shrinkOvershoot = 0.10

// Shrink reduces text to roughly target words, keeping every keyword in
// keep and the named tone. Inputs already at or under target are returned
// unchanged with ratio exactly 1.0.
func (s *Shrinker) Shrink(ctx context.Context, text string, target int, keep []string, tone core.Tone) core.ShrinkResult {
	inputWords := core.WordCount(text)
	if target <= 0 || inputWords <= target {
		return core.ShrinkResult{Text: text, WordCount: inputWords, Ratio: 1.0}
	}

	if s.Enabled && s.Client.Configured() {
		if out, ok := s.llmShrink(ctx, text, target, keep, tone); ok {
			return result(text, out)
		}
	}

	return result(text, extractiveShrink(text, target, keep))
}

func result(input, output string) core.ShrinkResult {
	in := core.WordCount(input)
	out := core.WordCount(output)
	ratio := 1.0
	if in > 0 {
		ratio = float64(out) / float64(in)
	}
	return core.ShrinkResult{Text: output, WordCount: out, Ratio: ratio}
}

// llmShrink asks the model for a rewrite and validates the answer: every
// keyword must survive and the length must land inside the tolerance band.
func (s *Shrinker) llmShrink(ctx context.Context, text string, target int, keep []string, tone core.Tone) (string, bool) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rewrite the following property copy to approximately %d words (within 10%% either side).\n", target)
	if len(keep) > 0 {
		fmt.Fprintf(&sb, "These terms must appear in the rewrite: %s.\n", strings.Join(keep, ", "))
	}
	if tone != "" {
		fmt.Fprintf(&sb, "Keep the %s tone.\n", tone)
	}
	sb.WriteString("Cut repetition and filler before cutting facts. Return only the rewritten text.\n\n")
	sb.WriteString(text)

	out, err := s.Client.Complete(ctx, llm.Request{
		Model:     s.Model,
		MaxTokens: 1000,
		Prompt:    sb.String(),
	})
	if err != nil {
		log.Printf("shrink: llm rewrite failed, using extractive fallback: %v", err)
		return "", false
	}
	out = strings.TrimSpace(out)

	if core.WordCount(out) > int(float64(target)*(1+shrinkOvershoot)) {
		return "", false
	}
	lower := strings.ToLower(out)
	for _, k := range keep {
		if !strings.Contains(lower, strings.ToLower(k)) {
			return "", false
		}
	}
	return out, true
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// splitSentences breaks text into trimmed sentences, keeping terminators.
func splitSentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	out := raw[:0]
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// extractiveShrink keeps the first and last sentence, then packs middle
// sentences into the remaining budget in keyword-score order. Sentences
// carrying an otherwise-absent keyword are forced in ahead of the greedy
// pass so keyword preservation holds.
func extractiveShrink(text string, target int, keep []string) string {
	sentences := splitSentences(text)
	if len(sentences) <= 2 {
		words := strings.Fields(text)
		if len(words) <= target {
			return text
		}
		return strings.Join(words[:target], " ") + "."
	}

	first, last := sentences[0], sentences[len(sentences)-1]
	middle := sentences[1 : len(sentences)-1]

	budget := int(float64(target) * (1 + shrinkOvershoot))
	used := core.WordCount(first) + core.WordCount(last)
	selected := make(map[int]bool)

	covered := func(keyword string) bool {
		k := strings.ToLower(keyword)
		if strings.Contains(strings.ToLower(first), k) || strings.Contains(strings.ToLower(last), k) {
			return true
		}
		for i := range middle {
			if selected[i] && strings.Contains(strings.ToLower(middle[i]), k) {
				return true
			}
		}
		return false
	}

	// Force in one carrier sentence per missing keyword.
	for _, k := range keep {
		if covered(k) {
			continue
		}
		for i, s := range middle {
			if !selected[i] && strings.Contains(strings.ToLower(s), strings.ToLower(k)) {
				selected[i] = true
				used += core.WordCount(s)
				break
			}
		}
	}

	// Greedy pass: highest keyword score first, original order on ties.
	order := make([]int, len(middle))
	for i := range order {
		order[i] = i
	}
	score := func(s string) int {
		n := 0
		lower := strings.ToLower(s)
		for _, k := range keep {
			if strings.Contains(lower, strings.ToLower(k)) {
				n++
			}
		}
		return n
	}
	sort.SliceStable(order, func(a, b int) bool {
		return score(middle[order[a]]) > score(middle[order[b]])
	})
	for _, i := range order {
		if selected[i] {
			continue
		}
		if wc := core.WordCount(middle[i]); used+wc <= budget {
			selected[i] = true
			used += wc
		}
	}

	// Reassemble in original order.
	parts := []string{first}
	for i := range middle {
		if selected[i] {
			parts = append(parts, middle[i])
		}
	}
	parts = append(parts, last)
	return strings.Join(parts, " ")
}

package lengths

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/llm"
)

// fallbackShrinker has no LLM configured, so every call takes the
// extractive path.
func fallbackShrinker() *Shrinker {
	return &Shrinker{Client: llm.New(""), Model: "claude-sonnet-4", Enabled: true}
}

// sampleText builds a multi-sentence passage of roughly n words.
func sampleText(n int) string {
	sentences := []string{
		"The flat occupies the second floor of a converted warehouse on Oak Road.",
		"Both bedrooms are doubles with built-in storage along the rear wall.",
		"The kitchen was refitted in 2021 with integrated appliances throughout the space.",
		"A secure allocated parking space sits behind the gated entrance to the rear.",
		"EPC Rating: C and mains gas central heating are in place.",
		"The living area opens onto a small balcony facing the shared garden.",
		"Local shops and the tram stop are a short walk from the front door.",
		"Viewings can be arranged through the marketing agent during weekday hours.",
	}
	var parts []string
	total := 0
	for i := 0; total < n; i++ {
		s := sentences[i%len(sentences)]
		parts = append(parts, s)
		total += core.WordCount(s)
	}
	return strings.Join(parts, " ")
}

func TestShrink_IdempotentUnderTarget(t *testing.T) {
	s := fallbackShrinker()
	text := "Two bedroom flat with garden. EPC Rating: C."

	res := s.Shrink(context.Background(), text, 65, nil, core.ToneBasic)
	assert.Equal(t, text, res.Text)
	assert.Equal(t, 1.0, res.Ratio)
}

func TestShrink_Contractive(t *testing.T) {
	s := fallbackShrinker()
	text := sampleText(120)
	require.Greater(t, core.WordCount(text), 65)

	res := s.Shrink(context.Background(), text, 65, nil, core.ToneBasic)
	maxWords := float64(65) * 1.1
	assert.LessOrEqual(t, res.WordCount, int(maxWords)+1)
	assert.Less(t, res.Ratio, 1.0)
}

func TestShrink_PreservesKeywords(t *testing.T) {
	s := fallbackShrinker()
	text := sampleText(120)
	keep := []string{"EPC", "bedroom"}

	res := s.Shrink(context.Background(), text, 65, keep, core.ToneBasic)
	lower := strings.ToLower(res.Text)
	for _, k := range keep {
		assert.Contains(t, lower, strings.ToLower(k))
	}
	assert.GreaterOrEqual(t, res.WordCount, 40, "shrink should not gut the copy")
	assert.LessOrEqual(t, res.WordCount, 72)
}

func TestShrink_KeepsFirstAndLastSentence(t *testing.T) {
	s := fallbackShrinker()
	text := sampleText(150)
	first := splitSentences(text)[0]

	res := s.Shrink(context.Background(), text, 60, nil, core.ToneBasic)
	assert.True(t, strings.HasPrefix(res.Text, first))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Four")
	require.Len(t, got, 4)
	assert.Equal(t, "One.", got[0])
	assert.Equal(t, "Four", got[3])
}

func TestExtractiveShrink_FewSentences(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 30)) + "."
	out := extractiveShrink(text, 10, nil)
	assert.LessOrEqual(t, core.WordCount(out), 11)
}

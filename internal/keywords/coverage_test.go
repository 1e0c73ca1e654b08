package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestAnalyse_FullCoverage(t *testing.T) {
	a := &Analyser{}
	text := "Two bedroom flat with modern kitchen, family bathroom, private garden, " +
		"allocated parking, generous storage and bright living space near transport " +
		"links and a good school. EPC rating C. Light throughout."

	report := a.Analyse(text, core.ChannelRightmove, nil)
	assert.Empty(t, report.Missing)
	assert.Equal(t, 1.0, report.Score)
	assert.Empty(t, report.Suggestions)
}

func TestAnalyse_MissingHighPriority(t *testing.T) {
	a := &Analyser{}
	report := a.Analyse("A lovely home.", core.ChannelRightmove, nil)

	assert.Contains(t, report.Missing, "bedroom")
	assert.Contains(t, report.Missing, "epc")
	assert.Less(t, report.Score, 0.5)
	require.NotEmpty(t, report.Suggestions)
	assert.LessOrEqual(t, len(report.Suggestions), 5)
}

func TestAnalyse_RequiredKeywordsRankFirst(t *testing.T) {
	a := &Analyser{RequiredKeywords: []string{"freehold"}}
	report := a.Analyse("Two bedroom flat.", core.ChannelRightmove, nil)

	require.NotEmpty(t, report.Suggestions)
	assert.Contains(t, report.Suggestions[0], "freehold")
}

func TestAnalyse_PropertyFeaturesSurface(t *testing.T) {
	a := &Analyser{}
	text := "Two bedroom flat with kitchen, bathroom, garden, parking, storage, " +
		"living space, transport links, school nearby, modern and light. EPC C."
	report := a.Analyse(text, core.ChannelSocial, []string{"log burner"})

	assert.Contains(t, report.Missing, "log burner")
	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "log burner") {
			found = true
		}
	}
	assert.True(t, found, "unmentioned feature should be suggested")
}

func TestAnalyse_CaseInsensitive(t *testing.T) {
	a := &Analyser{}
	report := a.Analyse("BEDROOM and Kitchen with EPC band B", core.ChannelSocial, nil)
	assert.Contains(t, report.Covered, "bedroom")
	assert.Contains(t, report.Covered, "kitchen")
	assert.Contains(t, report.Covered, "epc")
}

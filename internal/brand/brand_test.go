package brand

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestLoadSeedsDefaultWhenDirMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	p := s.Get("savills")
	require.NotNil(t, p)
	assert.Equal(t, "Savills", p.DisplayName)
	assert.Contains(t, p.Templates, TemplateStandard)
	assert.Contains(t, p.Templates, TemplatePremium)
	assert.Contains(t, p.Templates, TemplateClassic)
	assert.NotEmpty(t, p.SelectionRules)
}

func TestLoadReadsProfileFiles(t *testing.T) {
	dir := t.TempDir()
	custom := Profile{
		ID:          "foxtons",
		DisplayName: "Foxtons",
		Templates: map[TemplateType]Template{
			TemplateStandard: {Type: TemplateStandard, Name: "Standard"},
		},
	}
	data, err := json.Marshal(custom)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foxtons.json"), data, 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	require.NotNil(t, s.Get("foxtons"))
	assert.Nil(t, s.Get("savills"), "default is only seeded when the dir is empty")
	assert.Len(t, s.List(), 1)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestInferCharacter(t *testing.T) {
	cases := []struct {
		name  string
		facts core.PropertyFacts
		want  string
	}{
		{"luxury cue", core.PropertyFacts{Features: []string{"heated swimming pool"}}, CharacterLuxury},
		{"price luxury", core.PropertyFacts{PriceGBP: 2_500_000}, CharacterLuxury},
		{"period cue", core.PropertyFacts{Features: []string{"original sash windows"}}, CharacterPeriod},
		{"cottage is period", core.PropertyFacts{Type: core.PropertyCottage}, CharacterPeriod},
		{"new build is modern", core.PropertyFacts{Condition: core.ConditionNewBuild}, CharacterModern},
		{"plain semi", core.PropertyFacts{Type: core.PropertySemiDetached}, CharacterStandard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferCharacter(tc.facts))
		})
	}
}

func TestSelectTemplateScoring(t *testing.T) {
	p := defaultProfile()

	// Luxury over a million matches two conditions and beats the bare
	// price rule.
	luxury := SelectTemplate(p, core.PropertyFacts{
		Type:     core.PropertyDetached,
		PriceGBP: 2_200_000,
		Features: []string{"gated entrance", "cinema room"},
	})
	assert.Equal(t, TemplatePremium, luxury.Type)

	period := SelectTemplate(p, core.PropertyFacts{
		Type:     core.PropertyTerraced,
		PriceGBP: 450_000,
		Features: []string{"victorian fireplace"},
	})
	assert.Equal(t, TemplateClassic, period.Type)

	cottage := SelectTemplate(p, core.PropertyFacts{Type: core.PropertyCottage, PriceGBP: 380_000})
	assert.Equal(t, TemplateClassic, cottage.Type)

	plain := SelectTemplate(p, core.PropertyFacts{Type: core.PropertyFlat, PriceGBP: 250_000})
	assert.Equal(t, TemplateStandard, plain.Type)
}

func TestSelectTemplateFallbacks(t *testing.T) {
	// Nil profile still yields a usable template.
	tmpl := SelectTemplate(nil, core.PropertyFacts{})
	assert.Equal(t, TemplateStandard, tmpl.Type)

	// A profile whose rules all disqualify falls back to standard.
	p := &Profile{
		ID: "narrow",
		Templates: map[TemplateType]Template{
			TemplateStandard: {Type: TemplateStandard, Name: "Standard"},
		},
		SelectionRules: []SelectionRule{
			{Template: TemplatePremium, MinPriceGBP: 5_000_000},
		},
	}
	tmpl = SelectTemplate(p, core.PropertyFacts{PriceGBP: 100_000})
	assert.Equal(t, TemplateStandard, tmpl.Type)
}

func TestProfileTemplateFallback(t *testing.T) {
	p := &Profile{Templates: map[TemplateType]Template{
		TemplateStandard: {Type: TemplateStandard, Name: "Standard"},
	}}
	assert.Equal(t, TemplateStandard, p.Template(TemplatePremium).Type)

	empty := &Profile{}
	assert.Equal(t, TemplateStandard, empty.Template(TemplateClassic).Type)
}

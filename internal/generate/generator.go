package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/propwrite/propwrite/internal/brand"
	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/lengths"
	"github.com/propwrite/propwrite/internal/llm"
)

// Generator turns a validated request into N copy variants. When no LLM
// is configured it degrades to the deterministic mock path.
type Generator struct {
	Client *llm.Client
	Brands *brand.Store
	Model  string
	Mock   bool
}

// New wires a generator. Mock mode engages automatically when the client
// has no credentials.
func New(client *llm.Client, brands *brand.Store, model string) *Generator {
	return &Generator{
		Client: client,
		Brands: brands,
		Model:  model,
		Mock:   client == nil || !client.Configured(),
	}
}

const variantMaxTokens = 1000

// Generate produces n variants. The enrichment report is optional; photo
// analysis and section layout ride on the request itself.
func (g *Generator) Generate(ctx context.Context, req core.GenerateRequest, n int, enrichment *core.EnrichmentReport) ([]core.GeneratedVariant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		n = 1
	}

	profile, tmpl := g.selectTemplate(req)
	budget := lengths.Resolve(req.Channel)
	// Template word rules override the channel budget.
	if tmpl.Style.MinWords > 0 && tmpl.Style.MaxWords > 0 {
		budget.Target = (tmpl.Style.MinWords + tmpl.Style.MaxWords) / 2
		budget.Cap = tmpl.Style.MaxWords
	}

	if g.Mock {
		return mockVariants(req, n, budget), nil
	}

	prompt := assemblePrompt(req, profile, tmpl, enrichment, budget)

	variants := make([]core.GeneratedVariant, 0, n)
	for i := 0; i < n; i++ {
		text, err := g.Client.Complete(ctx, llm.Request{
			Model:       g.Model,
			MaxTokens:   variantMaxTokens,
			Temperature: 0.7 + 0.1*float64(i),
			Prompt:      prompt,
		})
		if err != nil {
			log.Printf("generate: variant %d/%d failed: %v", i+1, n, err)
			continue
		}
		variants = append(variants, buildVariant(parseOutput(text, req.Property)))
	}

	if len(variants) < n {
		// A failed variant fails the run; callers never see a partial set.
		return nil, fmt.Errorf("%w: produced %d of %d variants", core.ErrGeneration, len(variants), n)
	}
	return variants, nil
}

// selectTemplate resolves the brand profile and template for the request.
// An explicit template id wins over the selection rules.
func (g *Generator) selectTemplate(req core.GenerateRequest) (*brand.Profile, brand.Template) {
	var profile *brand.Profile
	if req.BrandID != "" && g.Brands != nil {
		profile = g.Brands.Get(req.BrandID)
		if profile == nil {
			log.Printf("generate: unknown brand %q, proceeding without brand style", req.BrandID)
		}
	}
	if profile == nil {
		return nil, brand.Template{Type: brand.TemplateStandard, Name: "Standard"}
	}
	if req.TemplateID != "" {
		return profile, profile.Template(brand.TemplateType(req.TemplateID))
	}
	return profile, brand.SelectTemplate(profile, req.Property)
}

// parsed is the three-section shape extracted from model output.
type parsed struct {
	headline string
	body     string
	features []string
}

// parseOutput splits the HEADLINE/DESCRIPTION/KEY_FEATURES shape. Missing
// sections fall back to defaults derived from the facts; parsing never fails.
func parseOutput(text string, facts core.PropertyFacts) parsed {
	p := parsed{
		headline: defaultHeadline(facts),
	}

	lines := strings.Split(text, "\n")
	var bodyLines []string
	section := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "HEADLINE:"):
			if h := strings.TrimSpace(strings.TrimPrefix(trimmed, "HEADLINE:")); h != "" {
				p.headline = h
			}
			section = "headline"
		case strings.HasPrefix(trimmed, "DESCRIPTION:"):
			section = "description"
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "DESCRIPTION:")); rest != "" {
				bodyLines = append(bodyLines, rest)
			}
		case strings.HasPrefix(trimmed, "KEY_FEATURES:"):
			section = "features"
		case section == "description":
			bodyLines = append(bodyLines, line)
		case section == "features" && strings.HasPrefix(trimmed, "- "):
			p.features = append(p.features, strings.TrimSpace(strings.TrimPrefix(trimmed, "- ")))
		}
	}

	p.body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if p.body == "" {
		// Unstructured reply: treat the whole text as the description.
		p.body = strings.TrimSpace(text)
	}
	if len(p.features) == 0 {
		p.features = defaultFeatures(facts)
	}
	return p
}

func defaultHeadline(f core.PropertyFacts) string {
	t := strings.ReplaceAll(string(f.Type), "_", " ")
	if f.Bedrooms > 0 {
		return fmt.Sprintf("%d bedroom %s", f.Bedrooms, t)
	}
	if t == "" {
		return "Property for sale"
	}
	return strings.ToUpper(t[:1]) + t[1:]
}

func defaultFeatures(f core.PropertyFacts) []string {
	var out []string
	if f.Bedrooms > 0 {
		out = append(out, fmt.Sprintf("%d bedrooms", f.Bedrooms))
	}
	if f.Bathrooms > 0 {
		out = append(out, fmt.Sprintf("%d bathrooms", f.Bathrooms))
	}
	if f.EPCRating != "" {
		out = append(out, "EPC rating "+f.EPCRating)
	}
	for _, feat := range f.Features {
		if len(out) >= 6 {
			break
		}
		out = append(out, feat)
	}
	if len(out) == 0 {
		out = []string{"See full description"}
	}
	return out
}

// buildVariant attaches id, word count, and the cosmetic score.
func buildVariant(p parsed) core.GeneratedVariant {
	wc := core.WordCount(p.body)
	score := 0.7 + 0.3*(float64(wc)/500)
	if score > 1.0 {
		score = 1.0
	}
	return core.GeneratedVariant{
		ID:          uuid.NewString(),
		Headline:    p.headline,
		Body:        p.body,
		WordCount:   wc,
		KeyFeatures: p.features,
		Score:       score,
	}
}

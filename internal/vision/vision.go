// Package vision classifies property photographs. Three interchangeable
// providers satisfy the Provider contract: a deterministic mock, a cloud
// label-analysis provider, and a multimodal Claude provider. The Adapter
// sits above whichever provider is configured and owns input validation,
// EXIF orientation correction, caching, and the shared validation pass.
package vision

import (
	"context"
	"log"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/llm"
)

// Provider analyses one photograph. Implementations must be safe for
// concurrent calls.
type Provider interface {
	Analyze(ctx context.Context, image []byte, filename string) (core.PhotoAnalysis, error)
	Name() string
}

// FactoryConfig selects and configures a provider.
type FactoryConfig struct {
	Provider      string // "mock", "cloud", "claude"
	CloudAPIKey   string
	CloudEndpoint string
	Model         string
	LLM           *llm.Client
}

// NewProvider builds the configured provider, falling back to the mock
// when credentials are missing.
func NewProvider(cfg FactoryConfig) Provider {
	switch cfg.Provider {
	case "cloud":
		if cfg.CloudAPIKey != "" {
			return &CloudProvider{APIKey: cfg.CloudAPIKey, Endpoint: cfg.CloudEndpoint}
		}
		log.Printf("vision: cloud provider selected but no API key, using mock")
	case "claude":
		if cfg.LLM != nil && cfg.LLM.Configured() {
			return &ClaudeProvider{Client: cfg.LLM, Model: cfg.Model}
		}
		log.Printf("vision: claude provider selected but no API key, using mock")
	}
	return &MockProvider{}
}

// genericFiller lists attribute tokens that carry no information about the
// photo. The validation pass strips them regardless of provider.
var genericFiller = []string{
	"well presented",
	"quality throughout",
	"good condition",
	"nicely decorated",
	"great potential",
	"neutral decor",
}

// roomWords recognises captions that are nothing but a room name.
var roomWords = map[string]bool{
	"kitchen": true, "bedroom": true, "bathroom": true, "garden": true,
	"living room": true, "lounge": true, "hallway": true, "exterior": true,
	"dining room": true, "office": true, "garage": true, "balcony": true,
}

// validateAnalysis is the shared post-provider pass: generic filler is
// stripped from attributes, and analyses with unusable captions are
// flagged for review rather than dropped.
func validateAnalysis(a core.PhotoAnalysis) core.PhotoAnalysis {
	var kept []string
	for _, attr := range a.Attributes {
		generic := false
		lower := strings.ToLower(strings.TrimSpace(attr))
		for _, filler := range genericFiller {
			if lower == filler {
				generic = true
				break
			}
		}
		if !generic {
			kept = append(kept, attr)
		}
	}
	a.Attributes = kept

	caption := strings.TrimSpace(a.Caption)
	if len(caption) < 20 || roomWords[strings.ToLower(strings.TrimRight(caption, "."))] {
		a.NeedsReview = true
	}
	if wc := core.WordCount(caption); wc < 8 || wc > 20 {
		a.NeedsReview = true
	}
	return a
}

package brand

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/propwrite/propwrite/internal/core"
)

// Store is the in-memory profile map loaded from a directory of JSON
// files at startup. Profiles are immutable once loaded.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// Load reads every *.json file under dir into the store. A missing or
// empty directory seeds the built-in default profile so generation always
// has a brand to fall back to.
func Load(dir string) (*Store, error) {
	s := &Store{profiles: make(map[string]*Profile)}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading brand dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if p.ID == "" {
			p.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		s.profiles[p.ID] = &p
	}

	if len(s.profiles) == 0 {
		seeded := defaultProfile()
		s.profiles[seeded.ID] = seeded
		log.Printf("brand: no profiles under %s, seeded default %q", dir, seeded.ID)
	} else {
		log.Printf("brand: loaded %d profile(s) from %s", len(s.profiles), dir)
	}
	return s, nil
}

// Get returns the profile for id, or nil when unknown.
func (s *Store) Get(id string) *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[id]
}

// List returns all profiles ordered by id.
func (s *Store) List() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// defaultProfile is the seeded fallback brand.
func defaultProfile() *Profile {
	return &Profile{
		ID:          "savills",
		DisplayName: "Savills",
		Palette: Palette{
			Primary:   "#002147",
			Secondary: "#B8A177",
			Accent:    "#8C1D40",
			Text:      "#1A1A1A",
		},
		Typography: Typography{
			HeadlineFont:   "Playfair Display",
			BodyFont:       "Source Sans Pro",
			HeadlineWeight: 700,
			BodyWeight:     400,
		},
		Logo: Logo{
			Path:     "assets/logos/savills.svg",
			Position: "top-right",
			WidthMM:  38,
		},
		Disclaimer: "These particulars are for guidance only and do not form part of any contract. Measurements are approximate.",
		MandatoryElements: []string{
			"epc_rating", "tenure", "council_tax_band", "floor_plan",
		},
		Templates: map[TemplateType]Template{
			TemplateStandard: {
				Type:      TemplateStandard,
				Name:      "Standard",
				PageCount: 4,
				Style: StyleRules{
					Tone: "professional",
					PreferredPhrases: []string{
						"well proportioned", "within easy reach of",
					},
					AvoidPhrases: []string{"stunning", "deceptively spacious"},
					SampleOpenings: []string{
						"A four bedroom detached house on",
						"This two bedroom apartment occupies",
					},
					StructureGuide: "Open with the headline fact, cover the accommodation floor by floor, close with location and practicalities.",
				},
			},
			TemplatePremium: {
				Type:      TemplatePremium,
				Name:      "Premium",
				PageCount: 8,
				Style: StyleRules{
					MinWords: 500,
					MaxWords: 700,
					Tone:     "refined",
					PreferredPhrases: []string{
						"beautifully appointed", "generous proportions",
					},
					AvoidPhrases: []string{"stunning", "must see", "wow factor"},
					SampleOpenings: []string{
						"Set behind a private gated entrance,",
						"Occupying a prime position on",
					},
					StructureGuide: "Lead with setting and arrival, then the principal rooms, then grounds and outbuildings, closing with provenance.",
				},
			},
			TemplateClassic: {
				Type:      TemplateClassic,
				Name:      "Classic",
				PageCount: 6,
				Style: StyleRules{
					MinWords: 400,
					MaxWords: 600,
					Tone:     "traditional",
					PreferredPhrases: []string{
						"period features", "retains much of its original character",
					},
					AvoidPhrases: []string{"stunning", "unique opportunity"},
					SampleOpenings: []string{
						"A handsome period house dating from",
						"Believed to date from the Victorian era,",
					},
					StructureGuide: "Establish the period and history first, then describe the accommodation, then the garden and setting.",
				},
			},
		},
		SelectionRules: []SelectionRule{
			{Template: TemplatePremium, Character: "luxury", MinPriceGBP: 1_000_000},
			{Template: TemplatePremium, MinPriceGBP: 1_500_000},
			{Template: TemplateClassic, Character: "period"},
			{Template: TemplateClassic, PropertyTypes: []core.PropertyType{core.PropertyCottage}},
			{Template: TemplateStandard},
		},
	}
}

package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/propwrite/propwrite/internal/core"
	"github.com/propwrite/propwrite/internal/llm"
)

// ClaudeProvider sends the photograph to a multimodal Claude model with a
// strict JSON-only instruction. Responses that are not clean JSON go
// through a text-extraction fallback before the analysis is flagged for
// review.
type ClaudeProvider struct {
	Client *llm.Client
	Model  string
}

func (p *ClaudeProvider) Name() string { return "claude" }

const claudeVisionPrompt = `Analyse this property photograph for an estate agent listing.

Respond with valid JSON only. Do not include any text outside the JSON object.

{
  "room_type": one of "kitchen","living_room","bedroom","bathroom","dining_room","garden","exterior","hallway","office","conservatory","garage","balcony","other",
  "attributes": up to 6 short concrete phrases describing visible features,
  "finishes": up to 4 visible materials or finishes,
  "light_level": one of "bright","moderate","dim",
  "interior": true or false,
  "view_hint": short phrase if a view is visible, else "",
  "caption": a factual caption of 8 to 20 words,
  "confidence": number between 0 and 1
}`

// claudeFinding is the JSON shape the model is instructed to return.
type claudeFinding struct {
	RoomType   string   `json:"room_type"`
	Attributes []string `json:"attributes"`
	Finishes   []string `json:"finishes"`
	LightLevel string   `json:"light_level"`
	Interior   bool     `json:"interior"`
	ViewHint   string   `json:"view_hint"`
	Caption    string   `json:"caption"`
	Confidence float64  `json:"confidence"`
}

// Analyze sends the image inline and parses the structured reply.
func (p *ClaudeProvider) Analyze(ctx context.Context, img []byte, filename string) (core.PhotoAnalysis, error) {
	mediaType := mediaTypeFor(filename)

	text, err := p.Client.Complete(ctx, llm.Request{
		Model:     p.Model,
		MaxTokens: 600,
		Prompt:    claudeVisionPrompt,
		Image: &llm.ImageBlock{
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(img),
		},
	})
	if err != nil {
		return core.PhotoAnalysis{}, err
	}

	finding, ok := parseFinding(text)
	if !ok {
		// Text fallback: salvage a caption from whatever came back.
		return core.PhotoAnalysis{
			Filename:    filename,
			RoomType:    core.RoomOther,
			LightLevel:  core.LightModerate,
			Interior:    true,
			Caption:     strings.TrimSpace(text),
			NeedsReview: true,
		}, nil
	}

	return core.PhotoAnalysis{
		Filename:   filename,
		RoomType:   normaliseRoom(finding.RoomType),
		Attributes: finding.Attributes,
		Finishes:   finding.Finishes,
		LightLevel: normaliseLight(finding.LightLevel),
		ViewHint:   finding.ViewHint,
		Interior:   finding.Interior,
		Caption:    finding.Caption,
		Confidence: finding.Confidence,
	}, nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseFinding extracts the JSON object from the model reply, tolerating
// prose or code fences around it.
func parseFinding(text string) (claudeFinding, bool) {
	var finding claudeFinding
	candidate := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(candidate), &finding); err == nil {
		return finding, true
	}
	if m := jsonObjectRe.FindString(candidate); m != "" {
		if err := json.Unmarshal([]byte(m), &finding); err == nil {
			return finding, true
		}
	}
	return claudeFinding{}, false
}

func normaliseRoom(s string) core.RoomType {
	r := core.RoomType(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case core.RoomKitchen, core.RoomLivingRoom, core.RoomBedroom, core.RoomBathroom,
		core.RoomDiningRoom, core.RoomGarden, core.RoomExterior, core.RoomHallway,
		core.RoomOffice, core.RoomConservatory, core.RoomGarage, core.RoomBalcony:
		return r
	}
	return core.RoomOther
}

func normaliseLight(s string) core.LightLevel {
	switch core.LightLevel(strings.ToLower(strings.TrimSpace(s))) {
	case core.LightBright:
		return core.LightBright
	case core.LightDim:
		return core.LightDim
	}
	return core.LightModerate
}

func mediaTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

package core

import (
	"errors"
	"fmt"
)

// Sentinel errors — callers use errors.Is() instead of string matching.
// Each maps to a stable error code at the HTTP boundary.
var (
	// ErrValidation marks inputs that violate a schema or invariant
	// (bad image type/size, bad session id, missing required field).
	ErrValidation = errors.New("validation failed")

	// ErrProviderUnavailable marks an outbound provider call that failed
	// after all retries were exhausted.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrGeneration marks a generate call that could not produce any
	// variant. No partial result accompanies it.
	ErrGeneration = errors.New("generation failed")

	// ErrSessionNotFound marks a session id with no backing directory.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired marks a session past its expires_at.
	ErrSessionExpired = errors.New("session expired")

	// ErrPhotoNotFound marks a photo id with no stored file.
	ErrPhotoNotFound = errors.New("photo not found")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Validate checks the request invariants the pipeline relies on. The HTTP
// layer calls this before anything touches the request.
func (r *GenerateRequest) Validate() error {
	if err := r.Property.Validate(); err != nil {
		return err
	}
	if r.Location.Address == "" {
		return Validationf("location address is required")
	}
	if r.Tone == "" {
		return Validationf("tone is required")
	}
	if !validTone(r.Tone) {
		return Validationf("unknown tone %q", r.Tone)
	}
	if !validChannel(r.Channel.Channel) {
		return Validationf("unknown channel %q", r.Channel.Channel)
	}
	if r.Channel.TargetWords < 0 || r.Channel.MaxWords < 0 {
		return Validationf("word overrides must be non-negative")
	}
	if r.Channel.MaxWords > 0 && r.Channel.TargetWords > r.Channel.MaxWords {
		return Validationf("target_words %d exceeds max_words %d", r.Channel.TargetWords, r.Channel.MaxWords)
	}
	return nil
}

// Validate checks the property-facts invariants: at least one bedroom and
// bathroom, a known type, and a well-formed EPC rating when present.
func (p *PropertyFacts) Validate() error {
	if !validPropertyType(p.Type) {
		return Validationf("unknown property type %q", p.Type)
	}
	if p.Bedrooms < 1 {
		return Validationf("bedrooms must be >= 1, got %d", p.Bedrooms)
	}
	if p.Bathrooms < 1 {
		return Validationf("bathrooms must be >= 1, got %d", p.Bathrooms)
	}
	if p.EPCRating != "" && (len(p.EPCRating) != 1 || p.EPCRating[0] < 'A' || p.EPCRating[0] > 'G') {
		return Validationf("EPC rating must be A-G, got %q", p.EPCRating)
	}
	return nil
}

func validPropertyType(t PropertyType) bool {
	switch t {
	case PropertyHouse, PropertyFlat, PropertyBungalow, PropertyMaisonette,
		PropertyTerraced, PropertySemiDetached, PropertyDetached, PropertyCottage:
		return true
	}
	return false
}

func validTone(t Tone) bool {
	switch t {
	case ToneBasic, TonePunchy, ToneBoutique, TonePremium, ToneHybrid:
		return true
	}
	return false
}

func validChannel(c Channel) bool {
	switch c {
	case ChannelRightmove, ChannelBrochure, ChannelSocial, ChannelEmail:
		return true
	}
	return false
}

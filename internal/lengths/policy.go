// Package lengths enforces per-channel word budgets and provides the
// shrink service that rewrites copy down to a target length while
// preserving tone and required keywords.
package lengths

import (
	"github.com/propwrite/propwrite/internal/core"
)

// Budget is a channel's default (target, cap) word pair.
type Budget struct {
	Target int
	Cap    int
}

// ChannelBudgets are the default word budgets per channel. A request may
// override either figure.
var ChannelBudgets = map[core.Channel]Budget{
	core.ChannelRightmove: {Target: 65, Cap: 80},
	core.ChannelBrochure:  {Target: 450, Cap: 600},
	core.ChannelSocial:    {Target: 30, Cap: 40},
	core.ChannelEmail:     {Target: 100, Cap: 120},
}

// targetTolerance is the ±10% band around the target that still counts
// as on-target.
const targetTolerance = 0.10

// Resolve returns the effective budget for a channel spec, applying any
// overrides carried on the request.
func Resolve(spec core.ChannelSpec) Budget {
	b, ok := ChannelBudgets[spec.Channel]
	if !ok {
		b = ChannelBudgets[core.ChannelBrochure]
	}
	if spec.TargetWords > 0 {
		b.Target = spec.TargetWords
	}
	if spec.MaxWords > 0 {
		b.Cap = spec.MaxWords
	}
	if b.Cap < b.Target {
		b.Cap = b.Target
	}
	return b
}

// Validate reports how text sits against the channel's budget.
func Validate(text string, spec core.ChannelSpec) core.LengthReport {
	b := Resolve(spec)
	wc := core.WordCount(text)

	lo := float64(b.Target) * (1 - targetTolerance)
	hi := float64(b.Target) * (1 + targetTolerance)

	return core.LengthReport{
		WordCount:        wc,
		Target:           b.Target,
		Cap:              b.Cap,
		WithinTarget:     float64(wc) >= lo && float64(wc) <= hi,
		WithinCap:        wc <= b.Cap,
		NeedsCompression: float64(wc) > hi,
	}
}

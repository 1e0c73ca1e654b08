package lengths

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/propwrite/propwrite/internal/core"
)

func wordsOf(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestValidate_Defaults(t *testing.T) {
	tests := []struct {
		channel core.Channel
		target  int
		cap     int
	}{
		{core.ChannelRightmove, 65, 80},
		{core.ChannelBrochure, 450, 600},
		{core.ChannelSocial, 30, 40},
		{core.ChannelEmail, 100, 120},
	}
	for _, tt := range tests {
		report := Validate("some text", core.ChannelSpec{Channel: tt.channel})
		assert.Equal(t, tt.target, report.Target, "%s target", tt.channel)
		assert.Equal(t, tt.cap, report.Cap, "%s cap", tt.channel)
	}
}

func TestValidate_WithinCapMatchesWordCount(t *testing.T) {
	for _, channel := range []core.Channel{core.ChannelRightmove, core.ChannelBrochure, core.ChannelSocial, core.ChannelEmail} {
		limit := ChannelBudgets[channel].Cap
		for _, n := range []int{1, limit - 1, limit, limit + 1, limit * 2} {
			report := Validate(wordsOf(n), core.ChannelSpec{Channel: channel})
			assert.Equal(t, n <= limit, report.WithinCap, "%s with %d words", channel, n)
		}
	}
}

func TestValidate_TargetBand(t *testing.T) {
	spec := core.ChannelSpec{Channel: core.ChannelEmail} // target 100

	assert.True(t, Validate(wordsOf(100), spec).WithinTarget)
	assert.True(t, Validate(wordsOf(92), spec).WithinTarget)
	assert.True(t, Validate(wordsOf(110), spec).WithinTarget)
	assert.False(t, Validate(wordsOf(89), spec).WithinTarget)
	assert.False(t, Validate(wordsOf(111), spec).WithinTarget)
	assert.True(t, Validate(wordsOf(111), spec).NeedsCompression)
	assert.False(t, Validate(wordsOf(105), spec).NeedsCompression)
}

func TestResolve_Overrides(t *testing.T) {
	b := Resolve(core.ChannelSpec{Channel: core.ChannelRightmove, TargetWords: 70, MaxWords: 90})
	assert.Equal(t, 70, b.Target)
	assert.Equal(t, 90, b.Cap)

	// Cap never sits below target.
	b = Resolve(core.ChannelSpec{Channel: core.ChannelRightmove, TargetWords: 200})
	assert.GreaterOrEqual(t, b.Cap, b.Target)
}

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestMockKitchenSouthFacing(t *testing.T) {
	m := &MockProvider{}

	analysis, err := m.Analyze(context.Background(), []byte("jpegdata"), "kitchen_south.jpg")
	require.NoError(t, err)

	assert.Equal(t, core.RoomKitchen, analysis.RoomType)
	assert.True(t, analysis.Interior)
	assert.Equal(t, "south_facing", analysis.OrientationHint)

	wc := core.WordCount(analysis.Caption)
	assert.GreaterOrEqual(t, wc, 8)
	assert.LessOrEqual(t, wc, 20)
}

func TestMockRoomCues(t *testing.T) {
	m := &MockProvider{}
	cases := map[string]core.RoomType{
		"master_bedroom.jpg":  core.RoomBedroom,
		"ensuite_2.png":       core.RoomBathroom,
		"rear_garden.webp":    core.RoomGarden,
		"front_elevation.jpg": core.RoomExterior,
		"IMG_2041.jpg":        core.RoomOther,
		"lounge_bright.jpg":   core.RoomLivingRoom,
	}
	for filename, want := range cases {
		analysis, err := m.Analyze(context.Background(), []byte("x"), filename)
		require.NoError(t, err, filename)
		assert.Equal(t, want, analysis.RoomType, filename)
	}
}

func TestMockBrightCueAndViewHint(t *testing.T) {
	m := &MockProvider{}

	bright, err := m.Analyze(context.Background(), []byte("x"), "lounge_bright.jpg")
	require.NoError(t, err)
	assert.Equal(t, core.LightBright, bright.LightLevel)

	view, err := m.Analyze(context.Background(), []byte("x"), "garden_view.jpg")
	require.NoError(t, err)
	assert.Equal(t, "open outlook", view.ViewHint)
	assert.False(t, view.Interior)
}

func TestMockCaptionsAlwaysInBand(t *testing.T) {
	m := &MockProvider{}
	for room, profile := range mockProfiles {
		wc := core.WordCount(profile.caption)
		assert.GreaterOrEqual(t, wc, 8, "caption too short for %s", room)
		assert.LessOrEqual(t, wc, 20, "caption too long for %s", room)
	}
	_ = m
}

func TestMockEmptyImageRejected(t *testing.T) {
	m := &MockProvider{}
	_, err := m.Analyze(context.Background(), nil, "kitchen.jpg")
	require.ErrorIs(t, err, core.ErrValidation)
}

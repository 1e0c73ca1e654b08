package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func TestParseFindingDirectJSON(t *testing.T) {
	finding, ok := parseFinding(`{"room_type":"kitchen","light_level":"bright","interior":true,"caption":"Fitted kitchen with island unit and integrated appliances throughout the space","confidence":0.92}`)
	require.True(t, ok)
	assert.Equal(t, "kitchen", finding.RoomType)
	assert.Equal(t, 0.92, finding.Confidence)
}

func TestParseFindingExtractsFromProse(t *testing.T) {
	text := "Here is the analysis you asked for:\n```json\n" +
		`{"room_type":"garden","interior":false,"caption":"Enclosed rear garden with lawn and patio seating area by the fence"}` +
		"\n```\nLet me know if you need more."
	finding, ok := parseFinding(text)
	require.True(t, ok)
	assert.Equal(t, "garden", finding.RoomType)
	assert.False(t, finding.Interior)
}

func TestParseFindingRejectsNonJSON(t *testing.T) {
	_, ok := parseFinding("This photo shows a lovely kitchen with modern fittings.")
	assert.False(t, ok)
}

func TestNormaliseRoomAndLight(t *testing.T) {
	assert.Equal(t, core.RoomKitchen, normaliseRoom(" Kitchen "))
	assert.Equal(t, core.RoomOther, normaliseRoom("utility cupboard"))
	assert.Equal(t, core.RoomOther, normaliseRoom(""))

	assert.Equal(t, core.LightBright, normaliseLight("BRIGHT"))
	assert.Equal(t, core.LightDim, normaliseLight("dim"))
	assert.Equal(t, core.LightModerate, normaliseLight("unknown"))
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", mediaTypeFor("plan.PNG"))
	assert.Equal(t, "image/webp", mediaTypeFor("garden.webp"))
	assert.Equal(t, "image/jpeg", mediaTypeFor("kitchen.jpg"))
	assert.Equal(t, "image/jpeg", mediaTypeFor("noext"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mock", cfg.VisionProvider)
	assert.Equal(t, int64(8*1024*1024), cfg.MaxImageBytes)
	assert.Equal(t, time.Hour, cfg.EnrichTTL)
	assert.Equal(t, 3*time.Second, cfg.CategoryDelay)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpiry)
	assert.True(t, cfg.ShrinkEnabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROPWRITE_VISION_PROVIDER", "claude")
	t.Setenv("PROPWRITE_SESSION_EXPIRY", "2h")
	t.Setenv("PROPWRITE_KEEP_INLINE_PHOTOS", "true")
	t.Setenv("PROPWRITE_IMAGE_EXTS", "jpg,png")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "claude", cfg.VisionProvider)
	assert.Equal(t, 2*time.Hour, cfg.SessionExpiry)
	assert.True(t, cfg.KeepInlinePhotos)
	assert.Equal(t, []string{"jpg", "png"}, cfg.AllowedImageExts)
}

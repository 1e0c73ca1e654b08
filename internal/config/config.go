// Package config loads the flat runtime settings from the environment.
// A .env file is honoured when present. Settings are immutable after Load.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the complete runtime configuration.
type Settings struct {
	Port int

	// LLM
	AnthropicAPIKey string
	TextModel       string
	VisionModel     string
	LLMTimeout      time.Duration
	LLMRatePerMin   int
	MockLLM         bool

	// Vision
	VisionProvider   string // "mock", "cloud", "claude"
	CloudVisionKey   string
	CloudVisionURL   string
	MaxImageBytes    int64
	AllowedImageExts []string

	// Enrichment
	GeocoderBaseURL  string
	OverpassBaseURL  string
	EnrichTTL        time.Duration
	EnrichRadiusM    int
	CategoryDelay    time.Duration

	// Cache
	CacheMaxSize int

	// Sessions
	SessionsRoot     string
	SessionExpiry    time.Duration
	CleanupInterval  time.Duration
	KeepInlinePhotos bool

	// Brands
	BrandDir string

	// History
	HistoryDSN string

	// Copy
	RequiredKeywords []string
	ShrinkEnabled    bool
}

// Load reads settings from the environment, applying defaults. A missing
// .env file is not an error.
func Load() Settings {
	_ = godotenv.Load()

	return Settings{
		Port: envInt("PORT", 8080),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		TextModel:       envStr("PROPWRITE_TEXT_MODEL", "claude-sonnet-4"),
		VisionModel:     envStr("PROPWRITE_VISION_MODEL", "claude-haiku-4-5"),
		LLMTimeout:      envDuration("PROPWRITE_LLM_TIMEOUT", 10*time.Second),
		LLMRatePerMin:   envInt("PROPWRITE_LLM_RATE_PER_MIN", 50),
		MockLLM:         envBool("PROPWRITE_MOCK_LLM", false),

		VisionProvider:   envStr("PROPWRITE_VISION_PROVIDER", "mock"),
		CloudVisionKey:   os.Getenv("PROPWRITE_CLOUD_VISION_KEY"),
		CloudVisionURL:   envStr("PROPWRITE_CLOUD_VISION_URL", ""),
		MaxImageBytes:    int64(envInt("PROPWRITE_MAX_IMAGE_BYTES", 8*1024*1024)),
		AllowedImageExts: envList("PROPWRITE_IMAGE_EXTS", []string{"jpg", "jpeg", "png", "webp"}),

		GeocoderBaseURL: envStr("PROPWRITE_GEOCODER_URL", "https://api.postcodes.io"),
		OverpassBaseURL: envStr("PROPWRITE_OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		EnrichTTL:       envDuration("PROPWRITE_ENRICH_TTL", time.Hour),
		EnrichRadiusM:   envInt("PROPWRITE_ENRICH_RADIUS_M", 1600),
		CategoryDelay:   envDuration("PROPWRITE_CATEGORY_DELAY", 3*time.Second),

		CacheMaxSize: envInt("PROPWRITE_CACHE_MAX", 1000),

		SessionsRoot:     envStr("PROPWRITE_SESSIONS_ROOT", "data/sessions"),
		SessionExpiry:    envDuration("PROPWRITE_SESSION_EXPIRY", 24*time.Hour),
		CleanupInterval:  envDuration("PROPWRITE_CLEANUP_INTERVAL", time.Hour),
		KeepInlinePhotos: envBool("PROPWRITE_KEEP_INLINE_PHOTOS", false),

		BrandDir: envStr("PROPWRITE_BRAND_DIR", "data/brands"),

		HistoryDSN: envStr("PROPWRITE_HISTORY_DSN", "file:propwrite.db?_pragma=foreign_keys(1)"),

		RequiredKeywords: envList("PROPWRITE_REQUIRED_KEYWORDS", nil),
		ShrinkEnabled:    envBool("PROPWRITE_SHRINK_ENABLED", true),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package vision

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/propwrite/propwrite/internal/cache"
	"github.com/propwrite/propwrite/internal/core"
)

// DefaultMaxImageBytes caps accepted photo size at 8 MB.
const DefaultMaxImageBytes = 8 * 1024 * 1024

// visionTTL keeps analyses cached for a day; the key is derived from the
// image bytes, so a re-uploaded identical photo never re-bills the provider.
const visionTTL = 24 * time.Hour

// Adapter validates inputs, corrects EXIF orientation, and caches results
// before handing the image to the configured provider. Provider failure
// degrades to a needs-review analysis rather than blocking the pipeline.
type Adapter struct {
	Provider      Provider
	Cache         *cache.Cache
	MaxImageBytes int64
	AllowedExts   map[string]bool
}

// NewAdapter wraps provider with the standard limits.
func NewAdapter(provider Provider, c *cache.Cache) *Adapter {
	return &Adapter{
		Provider:      provider,
		Cache:         c,
		MaxImageBytes: DefaultMaxImageBytes,
		AllowedExts:   map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true},
	}
}

// Analyze validates and normalises the image, then analyses it through
// the cache. Validation failures return core.ErrValidation; provider
// failures after retries return a minimal needs-review analysis and no
// error, so batch work continues.
func (a *Adapter) Analyze(ctx context.Context, img []byte, filename string) (core.PhotoAnalysis, error) {
	if err := a.validate(img, filename); err != nil {
		return core.PhotoAnalysis{}, err
	}

	img = correctOrientation(img, filename)

	key := "vision:" + hashBytes(img)
	if v, ok := a.Cache.Get(key); ok {
		analysis := v.(core.PhotoAnalysis)
		analysis.Filename = filename
		return analysis, nil
	}

	analysis, err := a.Provider.Analyze(ctx, img, filename)
	if err != nil {
		log.Printf("vision: %s provider failed for %s: %v", a.Provider.Name(), filename, err)
		return core.PhotoAnalysis{
			Filename:    filename,
			RoomType:    core.RoomOther,
			LightLevel:  core.LightModerate,
			Interior:    true,
			Caption:     "Photo could not be analysed automatically and is awaiting a manual description",
			NeedsReview: true,
		}, nil
	}

	analysis = validateAnalysis(analysis)
	a.Cache.Set(key, analysis, visionTTL)
	return analysis, nil
}

// AnalyzeBatch processes photos sequentially; provider pacing is the
// shared rate limiter inside the LLM client. A validation failure on one
// photo fails the batch — bad input is the caller's problem, provider
// trouble is not.
func (a *Adapter) AnalyzeBatch(ctx context.Context, photos map[string][]byte) ([]core.PhotoAnalysis, error) {
	names := make([]string, 0, len(photos))
	for name := range photos {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic order for stable output

	out := make([]core.PhotoAnalysis, 0, len(names))
	for _, name := range names {
		analysis, err := a.Analyze(ctx, photos[name], name)
		if err != nil {
			return nil, fmt.Errorf("analysing %s: %w", name, err)
		}
		out = append(out, analysis)
	}
	return out, nil
}

// validate enforces the extension allow-list and the size cap.
func (a *Adapter) validate(img []byte, filename string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !a.AllowedExts[ext] {
		return core.Validationf("image type %q not allowed", ext)
	}
	maxBytes := a.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if int64(len(img)) > maxBytes {
		return core.Validationf("image %s is %d bytes, cap is %d", filename, len(img), maxBytes)
	}
	if len(img) == 0 {
		return core.Validationf("image %s is empty", filename)
	}
	return nil
}

// correctOrientation rewrites JPEGs whose EXIF orientation is rotated
// (3, 6, 8) so downstream consumers see upright pixels. Anything that
// cannot be decoded is passed through untouched.
func correctOrientation(img []byte, filename string) []byte {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" {
		return img // EXIF orientation is a JPEG concern
	}

	meta, err := exif.Decode(bytes.NewReader(img))
	if err != nil {
		return img
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation == 1 {
		return img
	}

	decoded, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return img
	}

	var upright image.Image
	switch orientation {
	case 3:
		upright = imaging.Rotate180(decoded)
	case 6:
		upright = imaging.Rotate270(decoded) // 90 clockwise
	case 8:
		upright = imaging.Rotate90(decoded) // 90 anticlockwise
	default:
		return img
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, upright, imaging.JPEG); err != nil {
		return img
	}
	return buf.Bytes()
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

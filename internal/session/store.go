// Package session persists brochure editor working state on disk. Each
// session owns a directory under the store root: metadata in
// session.json, decoded photos under photos/. Session ids double as
// directory names, so every entry point validates the id shape before
// touching the filesystem.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propwrite/propwrite/internal/core"
)

// DefaultTTL is the session lifetime when the caller does not set one.
const DefaultTTL = 24 * time.Hour

// storedSentinel marks a photo whose bytes live on disk rather than
// inline in the metadata.
const storedSentinel = "FILE_STORED_"

const metadataFile = "session.json"

// Accepted id shapes: 32 lowercase hex, or the legacy
// session_<timestamp>_<random> form. Anything else is rejected before
// any path is built from it.
var (
	hexIDRe    = regexp.MustCompile(`^[a-f0-9]{32}$`)
	legacyIDRe = regexp.MustCompile(`^session_\d+_[a-z0-9]+$`)
	photoIDRe  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// photoExts is the lookup order for stored photo files.
var photoExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Store is the on-disk session arena.
type Store struct {
	Root       string
	TTL        time.Duration
	KeepInline bool // keep data URLs in metadata after persisting to disk

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates the root directory if needed.
func NewStore(root string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating session root %s: %w", root, err)
	}
	return &Store{Root: root, TTL: ttl, now: time.Now}, nil
}

// CreateResult is what the HTTP layer needs to hand back to the editor.
type CreateResult struct {
	SessionID string            `json:"session_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	PhotoURLs map[string]string `json:"photo_urls"`
}

// ValidID reports whether id is one of the accepted shapes.
func ValidID(id string) bool {
	return hexIDRe.MatchString(id) || legacyIDRe.MatchString(id)
}

// NewID allocates a fresh 32-hex session id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Store) dir(id string) string {
	return filepath.Join(s.Root, id)
}

// Create allocates the session directory, writes every inline photo to
// disk, and persists the metadata with data URLs swapped for sentinels.
// The directory is removed wholesale if any step fails.
func (s *Store) Create(sess core.BrochureSession) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = NewID()
	}
	if !ValidID(sess.ID) {
		return CreateResult{}, core.Validationf("invalid session id %q", sess.ID)
	}

	now := s.now()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = now.Add(s.TTL)
	}

	dir := s.dir(sess.ID)
	if err := os.MkdirAll(filepath.Join(dir, "photos"), 0o755); err != nil {
		return CreateResult{}, fmt.Errorf("creating session dir: %w", err)
	}

	urls := make(map[string]string, len(sess.Photos))
	for i := range sess.Photos {
		photo := &sess.Photos[i]
		if photo.ID == "" {
			photo.ID = NewID()
		}
		if !photoIDRe.MatchString(photo.ID) {
			os.RemoveAll(dir)
			return CreateResult{}, core.Validationf("invalid photo id %q", photo.ID)
		}
		if photo.DataURL != "" && !strings.HasPrefix(photo.DataURL, storedSentinel) {
			stored, err := s.writePhoto(dir, photo)
			if err != nil {
				os.RemoveAll(dir)
				return CreateResult{}, err
			}
			photo.StoredPath = stored
			photo.DataURL = storedSentinel + photo.ID
		}
		urls[photo.ID] = photoURL(sess.ID, photo.ID)
	}

	if err := s.writeMetadata(dir, &sess); err != nil {
		os.RemoveAll(dir)
		return CreateResult{}, err
	}
	return CreateResult{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt, PhotoURLs: urls}, nil
}

// Load reads a session back. The id is validated before any path is
// formed from it.
func (s *Store) Load(id string) (*core.BrochureSession, error) {
	if !ValidID(id) {
		return nil, core.Validationf("invalid session id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(s.dir(id), metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	var sess core.BrochureSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", id, err)
	}
	if s.now().After(sess.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionExpired, id)
	}
	return &sess, nil
}

// Update is the auto-save path. New inline photos are persisted to disk;
// the data URL stays in the metadata when KeepInline is set, so
// ephemeral-storage deployments still render after a reload.
func (s *Store) Update(id string, sess core.BrochureSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidID(id) {
		return core.Validationf("invalid session id %q", id)
	}
	dir := s.dir(id)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		}
		return err
	}

	sess.ID = id
	sess.UpdatedAt = s.now()
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = sess.UpdatedAt.Add(s.TTL)
	}

	for i := range sess.Photos {
		photo := &sess.Photos[i]
		if photo.ID == "" {
			photo.ID = NewID()
		}
		if !photoIDRe.MatchString(photo.ID) {
			return core.Validationf("invalid photo id %q", photo.ID)
		}
		if photo.DataURL == "" || strings.HasPrefix(photo.DataURL, storedSentinel) {
			continue
		}
		stored, err := s.writePhoto(dir, photo)
		if err != nil {
			// Auto-save must not lose work over a disk hiccup.
			log.Printf("session: persisting photo %s in %s: %v", photo.ID, id, err)
			continue
		}
		photo.StoredPath = stored
		if !s.KeepInline {
			photo.DataURL = storedSentinel + photo.ID
		}
	}

	return s.writeMetadata(dir, &sess)
}

// GetPhotoPath resolves the stored file for a photo, trying extensions
// in a fixed order.
func (s *Store) GetPhotoPath(sessionID, photoID string) (string, error) {
	if !ValidID(sessionID) {
		return "", core.Validationf("invalid session id %q", sessionID)
	}
	if !photoIDRe.MatchString(photoID) {
		return "", core.Validationf("invalid photo id %q", photoID)
	}

	base := filepath.Join(s.dir(sessionID), "photos", photoID)
	for _, ext := range photoExts {
		path := base + ext
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in session %s", core.ErrPhotoNotFound, photoID, sessionID)
}

// CleanupExpired removes every session directory past its expiry and
// returns the count removed. Unreadable directories are skipped.
func (s *Store) CleanupExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return 0, fmt.Errorf("scanning session root: %w", err)
	}

	removed := 0
	now := s.now()
	for _, entry := range entries {
		if !entry.IsDir() || !ValidID(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Root, entry.Name(), metadataFile))
		if err != nil {
			continue
		}
		var sess core.BrochureSession
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if now.After(sess.ExpiresAt) {
			if err := os.RemoveAll(filepath.Join(s.Root, entry.Name())); err != nil {
				log.Printf("session: removing expired %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// writePhoto decodes the photo's data URL into photos/<id>.<ext> and
// returns the stored path.
func (s *Store) writePhoto(dir string, photo *core.Photo) (string, error) {
	raw, ext, err := decodeDataURL(photo.DataURL)
	if err != nil {
		return "", core.Validationf("photo %s: %v", photo.ID, err)
	}
	path := filepath.Join(dir, "photos", photo.ID+ext)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing photo %s: %w", photo.ID, err)
	}
	return path, nil
}

func (s *Store) writeMetadata(dir string, sess *core.BrochureSession) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing session %s: %w", sess.ID, err)
	}
	return nil
}

// mediaExts maps data URL media types to file extensions.
var mediaExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// decodeDataURL parses a data:image/...;base64,... URL.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", fmt.Errorf("not a data URL")
	}
	comma := strings.Index(dataURL, ",")
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	header := dataURL[len("data:"):comma]
	payload := dataURL[comma+1:]
	if !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("data URL is not base64 encoded")
	}
	mediaType := strings.TrimSuffix(header, ";base64")
	ext, ok := mediaExts[mediaType]
	if !ok {
		return nil, "", fmt.Errorf("unsupported media type %q", mediaType)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding base64 payload: %v", err)
	}
	return raw, ext, nil
}

func photoURL(sessionID, photoID string) string {
	return fmt.Sprintf("/api/brochure/session/%s/photo/%s", sessionID, photoID)
}

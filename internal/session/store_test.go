package session

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	return s
}

func jpegDataURL(payload string) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.True(t, ValidID("session_1724830000_ab12cd"))

	for _, id := range []string{
		"../etc",
		"a/b",
		"abc",
		strings.Repeat("a", 33), // one over the hex length
		strings.Repeat("A", 32), // uppercase hex rejected
		"session_x_abc",
		"",
	} {
		assert.False(t, ValidID(id), "id %q should be rejected", id)
	}
}

func TestCreateStoresPhotosAndRewritesMetadata(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Create(core.BrochureSession{
		OwnerEmail: "agent@example.co.uk",
		Property:   core.PropertyFacts{Type: core.PropertyHouse, Bedrooms: 3, Bathrooms: 1},
		Photos: []core.Photo{
			{ID: "photo1", Filename: "kitchen.jpg", DataURL: jpegDataURL("kitchen-bytes")},
		},
	})
	require.NoError(t, err)
	require.True(t, ValidID(res.SessionID))
	assert.Equal(t, "/api/brochure/session/"+res.SessionID+"/photo/photo1", res.PhotoURLs["photo1"])

	// The photo landed on disk.
	stored, err := os.ReadFile(filepath.Join(s.Root, res.SessionID, "photos", "photo1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "kitchen-bytes", string(stored))

	// Metadata carries the sentinel, not the payload.
	loaded, err := s.Load(res.SessionID)
	require.NoError(t, err)
	require.Len(t, loaded.Photos, 1)
	assert.Equal(t, "FILE_STORED_photo1", loaded.Photos[0].DataURL)
	assert.NotContains(t, loaded.Photos[0].DataURL, "base64")
}

func TestCreateRollsBackOnBadPhoto(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(core.BrochureSession{
		ID: strings.Repeat("b", 32),
		Photos: []core.Photo{
			{ID: "photo1", DataURL: "data:image/jpeg;base64,!!!not-base64!!!"},
		},
	})
	require.ErrorIs(t, err, core.ErrValidation)

	_, statErr := os.Stat(filepath.Join(s.Root, strings.Repeat("b", 32)))
	assert.True(t, os.IsNotExist(statErr), "failed create must remove the session dir")
}

func TestLoadErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("../../etc/passwd")
	require.ErrorIs(t, err, core.ErrValidation)

	_, err = s.Load(strings.Repeat("c", 32))
	require.ErrorIs(t, err, core.ErrSessionNotFound)

	// Expired session.
	res, err := s.Create(core.BrochureSession{})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Load(res.SessionID)
	require.ErrorIs(t, err, core.ErrSessionExpired)
}

func TestUpdatePersistsNewPhotos(t *testing.T) {
	s := newTestStore(t)
	res, err := s.Create(core.BrochureSession{})
	require.NoError(t, err)

	sess, err := s.Load(res.SessionID)
	require.NoError(t, err)
	sess.Photos = append(sess.Photos, core.Photo{
		ID: "photo2", Filename: "garden.png",
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("garden-bytes")),
	})
	require.NoError(t, s.Update(res.SessionID, *sess))

	path, err := s.GetPhotoPath(res.SessionID, "photo2")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "photo2.png"))

	reloaded, err := s.Load(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "FILE_STORED_photo2", reloaded.Photos[0].DataURL)
}

func TestUpdateKeepInlineRetainsDataURL(t *testing.T) {
	s := newTestStore(t)
	s.KeepInline = true

	res, err := s.Create(core.BrochureSession{})
	require.NoError(t, err)

	dataURL := jpegDataURL("bytes")
	require.NoError(t, s.Update(res.SessionID, core.BrochureSession{
		Photos: []core.Photo{{ID: "photo3", DataURL: dataURL}},
	}))

	reloaded, err := s.Load(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, dataURL, reloaded.Photos[0].DataURL)
	assert.NotEmpty(t, reloaded.Photos[0].StoredPath)
}

func TestUpdateUnknownSession(t *testing.T) {
	s := newTestStore(t)
	err := s.Update(strings.Repeat("d", 32), core.BrochureSession{})
	require.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestGetPhotoPathExtensionOrder(t *testing.T) {
	s := newTestStore(t)
	res, err := s.Create(core.BrochureSession{})
	require.NoError(t, err)

	photosDir := filepath.Join(s.Root, res.SessionID, "photos")
	require.NoError(t, os.WriteFile(filepath.Join(photosDir, "p.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(photosDir, "p.jpg"), []byte("jpg"), 0o644))

	// .jpg is tried before .png.
	path, err := s.GetPhotoPath(res.SessionID, "p")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "p.jpg"))

	_, err = s.GetPhotoPath(res.SessionID, "missing")
	require.ErrorIs(t, err, core.ErrPhotoNotFound)

	_, err = s.GetPhotoPath(res.SessionID, "../sneaky")
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestCleanupExpired(t *testing.T) {
	s := newTestStore(t)

	live, err := s.Create(core.BrochureSession{ExpiresAt: time.Now().Add(48 * time.Hour)})
	require.NoError(t, err)
	dead, err := s.Create(core.BrochureSession{})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	removed, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(s.Root, dead.SessionID))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.Root, live.SessionID))
	assert.NoError(t, err)
}

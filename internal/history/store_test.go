package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/propwrite/propwrite/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/history.db?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
			Address:         "14 Oak Road, Guildford",
			Channel:         core.ChannelBrochure,
			Tone:            core.ToneHybrid,
			BrandID:         "savills",
			VariantCount:    3,
			WordCounts:      []int{450, 462, 441},
			ComplianceScore: 0.95,
			Compliant:       true,
		}))
	}

	entries, total, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)

	// Newest first.
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
	assert.Equal(t, core.ChannelBrochure, entries[0].Channel)
	assert.Equal(t, []int{450, 462, 441}, entries[0].WordCounts)
	assert.True(t, entries[0].Compliant)
	assert.NotEmpty(t, entries[0].ID)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Address:   "1 Test Street",
			Channel:   core.ChannelSocial,
			Tone:      core.TonePunchy,
		}))
	}

	page1, total, err := s.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)

	page2, _, err := s.List(ctx, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)
	assert.True(t, page1[1].CreatedAt.After(page2[0].CreatedAt))
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, total, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}

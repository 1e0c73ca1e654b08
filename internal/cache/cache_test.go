package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(10)
	c.Set("geocode:M1 4BT", "value", time.Minute)

	v, ok := c.Get("geocode:M1 4BT")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = c.Get("geocode:SW1A 1AA")
	assert.False(t, ok)
}

func TestCache_ExpiryAtReadTime(t *testing.T) {
	c := New(10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", 42, time.Second)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", 4, time.Minute)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "%s should survive", k)
	}
}

func TestCache_ReplaceRefreshesTTL(t *testing.T) {
	c := New(10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "old", time.Second)
	now = now.Add(900 * time.Millisecond)
	c.Set("k", "new", time.Second)
	now = now.Add(500 * time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_BoundedUnderChurn(t *testing.T) {
	c := New(5)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, time.Minute)
	}
	assert.Equal(t, 5, c.Len())

	// The five newest keys survive.
	for i := 95; i < 100; i++ {
		_, ok := c.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok)
	}
}

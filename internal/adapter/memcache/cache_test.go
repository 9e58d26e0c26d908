package memcache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

func TestCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c := New(10, 0)

	_, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "fp-1", domain.RunResult{RunID: "run-1"}))

	got, ok, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "run-1", got.RunID)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	c := NewWithClock(10, time.Hour, clock)

	require.NoError(t, c.Put(ctx, "fp-1", domain.RunResult{RunID: "run-1"}))

	clock.Advance(59 * time.Minute)
	_, ok, _ := c.Get(ctx, "fp-1")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = c.Get(ctx, "fp-1")
	assert.False(t, ok, "entry expires at exactly the TTL")
	assert.Zero(t, c.Len(), "expired entry is dropped on access")
}

// --- LRU cache unit tests ---

var never time.Time

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "A", never)
	c.put("b", "B", never)

	v, ok := c.get("a", time.Now())
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing", time.Now())
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A", never)
	c.put("b", "B", never)
	c.put("c", "C", never) // evicts "a"

	_, ok := c.get("a", time.Now())
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b", time.Now())
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c", time.Now())
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A", never)
	c.put("b", "B", never)
	c.get("a", time.Now())

	// "b" is now least recently used.
	c.put("c", "C", never)

	_, ok := c.get("a", time.Now())
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b", time.Now())
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1", never)
	c.put("a", "A2", never)

	v, ok := c.get("a", time.Now())
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Len(t, c.entries, 1)
}

func TestLRUCache_MinimumSize(t *testing.T) {
	c := newLRUCache[int](0)

	c.put("a", 1, never)
	c.put("b", 2, never)

	_, ok := c.get("b", time.Now())
	assert.True(t, ok)
	assert.Len(t, c.entries, 1)
}

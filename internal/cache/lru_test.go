package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRU[string, int](2)

	assert.Zero(t, c.set("a", 1))
	assert.Zero(t, c.set("b", 2))
	assert.Equal(t, 1, c.set("c", 3))

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := newLRU[string, int](2)
	c.set("a", 1)
	c.set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	assert.True(t, ok)

	c.set("c", 3)

	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRU_SetExistingUpdatesInPlace(t *testing.T) {
	c := newLRU[string, int](2)
	c.set("a", 1)

	evicted := c.set("a", 9)

	assert.Zero(t, evicted)
	assert.Equal(t, 1, c.len())
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestLRU_Remove(t *testing.T) {
	c := newLRU[string, int](4)
	c.set("a", 1)

	assert.True(t, c.remove("a"))
	assert.False(t, c.remove("a"))
	assert.Zero(t, c.len())
}

func TestLRU_KeysAreMostRecentFirst(t *testing.T) {
	c := newLRU[string, int](4)
	c.set("a", 1)
	c.set("b", 2)
	c.set("c", 3)
	c.get("a")

	assert.Equal(t, []string{"a", "c", "b"}, c.keys())
}

func TestLRU_MinimumCapacityIsOne(t *testing.T) {
	c := newLRU[string, int](0)
	c.set("a", 1)
	c.set("b", 2)

	assert.Equal(t, 1, c.len())
	_, ok := c.get("b")
	assert.True(t, ok)
}

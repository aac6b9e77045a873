package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndInvalidate(t *testing.T) {
	registry := NewRegistry()
	key := L1Key{Format: "html", Path: "/posts/hello"}

	registry.Register(key, []EntityKey{PostSlugEntity("hello"), SiteSettingsEntity()})

	keys := registry.Invalidate(PostSlugEntity("hello"))
	require.Len(t, keys, 1)
	assert.Equal(t, key, keys[0])

	// Invalidation removed every edge of the key, including the one
	// through the other entity.
	assert.Nil(t, registry.Invalidate(SiteSettingsEntity()))
	assert.Zero(t, registry.Len())
}

func TestRegistry_Invalidate_UnknownEntityReturnsNothing(t *testing.T) {
	registry := NewRegistry()

	assert.Nil(t, registry.Invalidate(PostEntity("nope")))
}

func TestRegistry_Invalidate_ReturnsAllDependents(t *testing.T) {
	registry := NewRegistry()
	html := L1Key{Format: "html", Path: "/posts/hello"}
	json := L1Key{Format: "json", Path: "/posts/hello"}
	obj := L0Key{Category: L0PostBySlug, ID: "hello"}

	entity := PostSlugEntity("hello")
	registry.Register(html, []EntityKey{entity})
	registry.Register(json, []EntityKey{entity})
	registry.Register(obj, []EntityKey{entity})

	keys := registry.Invalidate(entity)

	assert.Len(t, keys, 3)
	assert.Contains(t, keys, CacheKey(html))
	assert.Contains(t, keys, CacheKey(json))
	assert.Contains(t, keys, CacheKey(obj))
}

func TestRegistry_Register_ReplacesPriorEdges(t *testing.T) {
	registry := NewRegistry()
	key := L1Key{Format: "html", Path: "/page"}

	registry.Register(key, []EntityKey{PostEntity("old")})
	registry.Register(key, []EntityKey{PostEntity("new")})

	// The stale edge is gone; only the fresh one invalidates.
	assert.Nil(t, registry.Invalidate(PostEntity("old")))
	keys := registry.Invalidate(PostEntity("new"))
	require.Len(t, keys, 1)
	assert.Equal(t, key, keys[0])
}

func TestRegistry_Register_EmptySetRemovesKey(t *testing.T) {
	registry := NewRegistry()
	key := L0Key{Category: L0PostByID, ID: "42"}
	registry.Register(key, []EntityKey{PostEntity("42")})

	registry.Register(key, nil)

	assert.Zero(t, registry.Len())
	assert.Nil(t, registry.Invalidate(PostEntity("42")))
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	key := L1Key{Format: "json", Path: "/posts"}
	registry.Register(key, []EntityKey{PostsIndexEntity()})

	registry.Unregister(key)

	assert.Zero(t, registry.Len())
	assert.Nil(t, registry.Invalidate(PostsIndexEntity()))
}

func TestRegistry_DependenciesOf(t *testing.T) {
	registry := NewRegistry()
	key := L1Key{Format: "html", Path: "/"}
	entities := []EntityKey{SiteSettingsEntity(), NavigationEntity(), PostsIndexEntity()}

	registry.Register(key, entities)

	deps := registry.DependenciesOf(key)
	assert.Len(t, deps, 3)
	for _, entity := range entities {
		assert.Contains(t, deps, entity)
	}
}

func TestRegistry_ConcurrentRegisterAndInvalidate(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := L1Key{Format: "json", Path: fmt.Sprintf("/w%d/%d", w, i)}
				registry.Register(key, []EntityKey{PostEntity(fmt.Sprintf("%d", i))})
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				registry.Invalidate(PostEntity(fmt.Sprintf("%d", i)))
			}
		}()
	}
	wg.Wait()

	// Invariant: both indexes stay consistent; anything left registered
	// still invalidates cleanly.
	for i := 0; i < 100; i++ {
		registry.Invalidate(PostEntity(fmt.Sprintf("%d", i)))
	}
	assert.Zero(t, registry.Len())
}

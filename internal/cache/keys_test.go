package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityKey_String(t *testing.T) {
	assert.Equal(t, "site_settings", SiteSettingsEntity().String())
	assert.Equal(t, "post:42", PostEntity("42").String())
	assert.Equal(t, "post_slug:hello-world", PostSlugEntity("hello-world").String())
	assert.Equal(t, "api_key:ik_abc", APIKeyEntity("ik_abc").String())
}

func TestEntityKey_UsableAsMapKey(t *testing.T) {
	// Two constructions of the same logical entity must collide.
	seen := map[EntityKey]struct{}{
		PostEntity("42"): {},
	}

	_, ok := seen[PostEntity("42")]
	assert.True(t, ok)

	_, ok = seen[PostEntity("43")]
	assert.False(t, ok)
}

func TestL0Key_DistinctAcrossCategories(t *testing.T) {
	// Same ID under different categories must not collide.
	byID := L0Key{Category: L0PostByID, ID: "x"}
	bySlug := L0Key{Category: L0PostBySlug, ID: "x"}

	seen := map[CacheKey]struct{}{byID: {}}

	_, ok := seen[bySlug]
	assert.False(t, ok)
	assert.NotEqual(t, byID.String(), bySlug.String())
}

func TestL1Key_QueryDistinguishesEntries(t *testing.T) {
	base := L1Key{Format: "json", Path: "/posts"}
	withQuery := L1Key{Format: "json", Path: "/posts", Query: HashQuery("tag=go")}

	assert.NotEqual(t, base, withQuery)
	assert.NotEqual(t, base.String(), withQuery.String())
}

func TestHashQuery(t *testing.T) {
	t.Run("Should be deterministic", func(t *testing.T) {
		assert.Equal(t, HashQuery("tag=go&limit=10"), HashQuery("tag=go&limit=10"))
	})

	t.Run("Should return zero for empty input", func(t *testing.T) {
		assert.Zero(t, HashQuery(""))
	})

	t.Run("Should differ for different inputs", func(t *testing.T) {
		assert.NotEqual(t, HashQuery("tag=go"), HashQuery("tag=rust"))
	})
}

func TestListID(t *testing.T) {
	id := ListID(0x1, 0x2)
	assert.Len(t, id, 32)
	assert.Equal(t, "00000000000000010000000000000002", id)
	assert.NotEqual(t, id, ListID(0x2, 0x1))
}

func TestL0Categories_CoversAllCompartments(t *testing.T) {
	cats := L0Categories()
	assert.Contains(t, cats, L0SiteSettings)
	assert.Contains(t, cats, L0PostByID)
	assert.Contains(t, cats, L0PostList)

	// Category names must be unique for metric labels.
	names := make(map[string]struct{})
	for _, cat := range cats {
		names[cat.String()] = struct{}{}
	}
	assert.Len(t, names, len(cats))
}

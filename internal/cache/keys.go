// Package cache implements the two-layer cache-consistency subsystem:
// an object/query cache (L0), a rendered-response cache (L1), the
// dependency registry that links cached values to the entities they were
// computed from, and the event pipeline that turns content writes into
// precise cache purges.
package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// EntityKind enumerates the domain concepts whose changes invalidate
// dependent cache entries.
type EntityKind uint8

const (
	// Singleton entities.
	EntitySiteSettings EntityKind = iota + 1
	EntityNavigation

	// Content entities, addressed by id or slug.
	EntityPost
	EntityPostSlug
	EntityPage
	EntityPageSlug

	// Security entities.
	EntityAPIKey

	// Derived collections. These have no id of their own; any content
	// write that could change their output marks them stale.
	EntityPostsIndex
	EntityPostAggTags
	EntityPostAggMonths
	EntityFeed
	EntitySitemap
)

var entityKindNames = map[EntityKind]string{
	EntitySiteSettings:  "site_settings",
	EntityNavigation:    "navigation",
	EntityPost:          "post",
	EntityPostSlug:      "post_slug",
	EntityPage:          "page",
	EntityPageSlug:      "page_slug",
	EntityAPIKey:        "api_key",
	EntityPostsIndex:    "posts_index",
	EntityPostAggTags:   "post_agg_tags",
	EntityPostAggMonths: "post_agg_months",
	EntityFeed:          "feed",
	EntitySitemap:       "sitemap",
}

func (k EntityKind) String() string {
	if name, ok := entityKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("entity_kind(%d)", uint8(k))
}

// EntityKey identifies a single invalidatable domain concept. It is a
// plain comparable value; equality determines the edges of the
// dependency graph in the Registry.
type EntityKey struct {
	Kind EntityKind
	// ID carries the post/page id, slug, or API key prefix. Empty for
	// singletons and derived collections.
	ID string
}

func (k EntityKey) String() string {
	if k.ID == "" {
		return k.Kind.String()
	}
	return k.Kind.String() + ":" + k.ID
}

// Entity key constructors. Constructing keys through these keeps call
// sites free of Kind/ID pairing mistakes.

func SiteSettingsEntity() EntityKey        { return EntityKey{Kind: EntitySiteSettings} }
func NavigationEntity() EntityKey          { return EntityKey{Kind: EntityNavigation} }
func PostEntity(id string) EntityKey       { return EntityKey{Kind: EntityPost, ID: id} }
func PostSlugEntity(slug string) EntityKey { return EntityKey{Kind: EntityPostSlug, ID: slug} }
func PageEntity(id string) EntityKey       { return EntityKey{Kind: EntityPage, ID: id} }
func PageSlugEntity(slug string) EntityKey { return EntityKey{Kind: EntityPageSlug, ID: slug} }
func APIKeyEntity(prefix string) EntityKey { return EntityKey{Kind: EntityAPIKey, ID: prefix} }
func PostsIndexEntity() EntityKey          { return EntityKey{Kind: EntityPostsIndex} }
func PostAggTagsEntity() EntityKey         { return EntityKey{Kind: EntityPostAggTags} }
func PostAggMonthsEntity() EntityKey       { return EntityKey{Kind: EntityPostAggMonths} }
func FeedEntity() EntityKey                { return EntityKey{Kind: EntityFeed} }
func SitemapEntity() EntityKey             { return EntityKey{Kind: EntitySitemap} }

// CacheKey is implemented by L0Key and L1Key. Both implementations are
// comparable structs, so CacheKey values can be used as map keys in the
// Registry and purged by exact match.
type CacheKey interface {
	fmt.Stringer
	cacheKey()
}

// L0Category enumerates the independently sized compartments of the
// object cache.
type L0Category uint8

const (
	L0SiteSettings L0Category = iota + 1
	L0Navigation
	L0TagCounts
	L0MonthCounts
	L0PostByID
	L0PostBySlug
	L0PageByID
	L0PageBySlug
	L0APIKeyByPrefix
	L0PostList
)

var l0CategoryNames = map[L0Category]string{
	L0SiteSettings:   "site_settings",
	L0Navigation:     "navigation",
	L0TagCounts:      "tag_counts",
	L0MonthCounts:    "month_counts",
	L0PostByID:       "post_by_id",
	L0PostBySlug:     "post_by_slug",
	L0PageByID:       "page_by_id",
	L0PageBySlug:     "page_by_slug",
	L0APIKeyByPrefix: "api_key_by_prefix",
	L0PostList:       "post_list",
}

func (c L0Category) String() string {
	if name, ok := l0CategoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("l0_category(%d)", uint8(c))
}

// L0Categories lists every compartment of the object cache, in a stable
// order suitable for iteration.
func L0Categories() []L0Category {
	return []L0Category{
		L0SiteSettings, L0Navigation, L0TagCounts, L0MonthCounts,
		L0PostByID, L0PostBySlug, L0PageByID, L0PageBySlug,
		L0APIKeyByPrefix, L0PostList,
	}
}

// L0Key addresses one entry of the object cache: a singleton, a point
// lookup by id/slug/prefix, or a parameterized list identified by the
// hash of its filter and cursor.
type L0Key struct {
	Category L0Category
	// ID is empty for singletons, the id/slug/prefix for point lookups,
	// and the filter+cursor hash (formatted by ListID) for lists.
	ID string
}

func (k L0Key) cacheKey() {}

func (k L0Key) String() string {
	if k.ID == "" {
		return "l0:" + k.Category.String()
	}
	return "l0:" + k.Category.String() + ":" + k.ID
}

// ListID folds a filter hash and a cursor hash into a stable list
// identifier for L0PostList keys.
func ListID(filterHash, cursorHash uint64) string {
	return fmt.Sprintf("%016x%016x", filterHash, cursorHash)
}

// L1Key addresses one cached rendered response. Two semantically
// identical requests must produce the same key, so Query is the hash of
// the normalized (sorted) query string rather than the raw one.
type L1Key struct {
	Format string
	Path   string
	Query  uint64
}

func (k L1Key) cacheKey() {}

func (k L1Key) String() string {
	return fmt.Sprintf("l1:%s:%s:%016x", k.Format, k.Path, k.Query)
}

// HashQuery hashes a normalized query string. An empty query hashes to
// zero so that "no query" is a stable, recognizable key component.
func HashQuery(normalized string) uint64 {
	if normalized == "" {
		return 0
	}
	return xxhash.Sum64String(normalized)
}

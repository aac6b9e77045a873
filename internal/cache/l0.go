package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"inkpress-backend/internal/domain"
	"inkpress-backend/internal/observability"
)

// L0Config carries the per-category capacities of the object cache.
// Singleton categories are always capacity 1 and are not configurable.
type L0Config struct {
	Enabled          bool
	PostByIDCap      int
	PostBySlugCap    int
	PageByIDCap      int
	PageBySlugCap    int
	APIKeyByPrefixCap int
	PostListCap      int
}

// DefaultL0Config returns the capacities used when configuration is
// absent.
func DefaultL0Config() L0Config {
	return L0Config{
		Enabled:           true,
		PostByIDCap:       512,
		PostBySlugCap:     512,
		PageByIDCap:       128,
		PageBySlugCap:     128,
		APIKeyByPrefixCap: 256,
		PostListCap:       256,
	}
}

// l0compartment is one independently locked, independently sized LRU.
// Maps in this store are read far more often than written, but the LRU
// reorders on every read, so a plain mutex is the honest choice.
type l0compartment struct {
	mu    sync.Mutex
	cache *lru[L0Key, any]
}

// L0Store is the bounded in-memory cache of domain objects and query
// results. Eviction is strict LRU per category: inserting past a
// category's capacity evicts exactly one entry from that category only.
type L0Store struct {
	enabled      atomic.Bool
	compartments map[L0Category]*l0compartment
	metrics      *observability.Collector
	logger       *zap.Logger
}

// NewL0Store creates the object cache with the configured capacities.
func NewL0Store(cfg L0Config, metrics *observability.Collector, logger *zap.Logger) *L0Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	caps := map[L0Category]int{
		L0SiteSettings:   1,
		L0Navigation:     1,
		L0TagCounts:      1,
		L0MonthCounts:    1,
		L0PostByID:       cfg.PostByIDCap,
		L0PostBySlug:     cfg.PostBySlugCap,
		L0PageByID:       cfg.PageByIDCap,
		L0PageBySlug:     cfg.PageBySlugCap,
		L0APIKeyByPrefix: cfg.APIKeyByPrefixCap,
		L0PostList:       cfg.PostListCap,
	}

	compartments := make(map[L0Category]*l0compartment, len(caps))
	for cat, capacity := range caps {
		compartments[cat] = &l0compartment{cache: newLRU[L0Key, any](capacity)}
	}

	store := &L0Store{
		compartments: compartments,
		metrics:      metrics,
		logger:       logger,
	}
	store.enabled.Store(cfg.Enabled)
	return store
}

// SetEnabled flips the cache on or off at runtime, for configuration
// reloads. Entries survive a disabled period and purges still apply
// while disabled, so re-enabling never exposes a stale object.
func (s *L0Store) SetEnabled(enabled bool) {
	if s.enabled.Swap(enabled) != enabled {
		s.logger.Info("Object cache toggled", zap.Bool("enabled", enabled))
	}
}

// Get returns the cached value for the key, if present. A hit marks the
// entry most recently used.
func (s *L0Store) Get(key L0Key) (any, bool) {
	if !s.enabled.Load() {
		return nil, false
	}
	comp := s.compartments[key.Category]
	if comp == nil {
		return nil, false
	}

	comp.mu.Lock()
	value, ok := comp.cache.get(key)
	comp.mu.Unlock()

	if s.metrics != nil {
		if ok {
			s.metrics.L0Hits.WithLabelValues(key.Category.String()).Inc()
		} else {
			s.metrics.L0Misses.WithLabelValues(key.Category.String()).Inc()
		}
	}
	return value, ok
}

// Set stores a value under the key, evicting the category's
// least-recently-used entry when at capacity.
func (s *L0Store) Set(key L0Key, value any) {
	if !s.enabled.Load() {
		return
	}
	comp := s.compartments[key.Category]
	if comp == nil {
		return
	}

	comp.mu.Lock()
	evicted := comp.cache.set(key, value)
	comp.mu.Unlock()

	if evicted > 0 && s.metrics != nil {
		s.metrics.L0Evictions.WithLabelValues(key.Category.String()).Add(float64(evicted))
	}
}

// Purge removes the exact key named and reports whether it was cached.
func (s *L0Store) Purge(key L0Key) bool {
	comp := s.compartments[key.Category]
	if comp == nil {
		return false
	}
	comp.mu.Lock()
	defer comp.mu.Unlock()
	return comp.cache.remove(key)
}

// PurgeCategory drops every entry of one category.
func (s *L0Store) PurgeCategory(category L0Category) {
	comp := s.compartments[category]
	if comp == nil {
		return
	}
	comp.mu.Lock()
	comp.cache.clear()
	comp.mu.Unlock()
}

// Clear drops every entry of every category.
func (s *L0Store) Clear() {
	for _, comp := range s.compartments {
		comp.mu.Lock()
		comp.cache.clear()
		comp.mu.Unlock()
	}
	s.logger.Debug("Object cache cleared")
}

// Len reports the entry count of one category.
func (s *L0Store) Len(category L0Category) int {
	comp := s.compartments[category]
	if comp == nil {
		return 0
	}
	comp.mu.Lock()
	defer comp.mu.Unlock()
	return comp.cache.len()
}

// Typed accessors. The store holds `any`; these keep the call sites in
// the application services honest about what each category contains.

func (s *L0Store) GetSiteSettings() (*domain.SiteSettings, bool) {
	v, ok := s.Get(L0Key{Category: L0SiteSettings})
	if !ok {
		return nil, false
	}
	settings, ok := v.(*domain.SiteSettings)
	return settings, ok
}

func (s *L0Store) SetSiteSettings(settings *domain.SiteSettings) {
	s.Set(L0Key{Category: L0SiteSettings}, settings)
}

func (s *L0Store) GetNavigation() (*domain.Navigation, bool) {
	v, ok := s.Get(L0Key{Category: L0Navigation})
	if !ok {
		return nil, false
	}
	nav, ok := v.(*domain.Navigation)
	return nav, ok
}

func (s *L0Store) SetNavigation(nav *domain.Navigation) {
	s.Set(L0Key{Category: L0Navigation}, nav)
}

func (s *L0Store) GetTagCounts() ([]domain.TagCount, bool) {
	v, ok := s.Get(L0Key{Category: L0TagCounts})
	if !ok {
		return nil, false
	}
	counts, ok := v.([]domain.TagCount)
	return counts, ok
}

func (s *L0Store) SetTagCounts(counts []domain.TagCount) {
	s.Set(L0Key{Category: L0TagCounts}, counts)
}

func (s *L0Store) GetMonthCounts() ([]domain.MonthCount, bool) {
	v, ok := s.Get(L0Key{Category: L0MonthCounts})
	if !ok {
		return nil, false
	}
	counts, ok := v.([]domain.MonthCount)
	return counts, ok
}

func (s *L0Store) SetMonthCounts(counts []domain.MonthCount) {
	s.Set(L0Key{Category: L0MonthCounts}, counts)
}

func (s *L0Store) GetPostByID(id string) (*domain.Post, bool) {
	v, ok := s.Get(L0Key{Category: L0PostByID, ID: id})
	if !ok {
		return nil, false
	}
	post, ok := v.(*domain.Post)
	return post, ok
}

func (s *L0Store) SetPostByID(post *domain.Post) {
	s.Set(L0Key{Category: L0PostByID, ID: post.ID}, post)
}

func (s *L0Store) GetPostBySlug(slug string) (*domain.Post, bool) {
	v, ok := s.Get(L0Key{Category: L0PostBySlug, ID: slug})
	if !ok {
		return nil, false
	}
	post, ok := v.(*domain.Post)
	return post, ok
}

func (s *L0Store) SetPostBySlug(post *domain.Post) {
	s.Set(L0Key{Category: L0PostBySlug, ID: post.Slug}, post)
}

func (s *L0Store) GetPageByID(id string) (*domain.Page, bool) {
	v, ok := s.Get(L0Key{Category: L0PageByID, ID: id})
	if !ok {
		return nil, false
	}
	page, ok := v.(*domain.Page)
	return page, ok
}

func (s *L0Store) SetPageByID(page *domain.Page) {
	s.Set(L0Key{Category: L0PageByID, ID: page.ID}, page)
}

func (s *L0Store) GetPageBySlug(slug string) (*domain.Page, bool) {
	v, ok := s.Get(L0Key{Category: L0PageBySlug, ID: slug})
	if !ok {
		return nil, false
	}
	page, ok := v.(*domain.Page)
	return page, ok
}

func (s *L0Store) SetPageBySlug(page *domain.Page) {
	s.Set(L0Key{Category: L0PageBySlug, ID: page.Slug}, page)
}

func (s *L0Store) GetAPIKeyByPrefix(prefix string) (*domain.APIKey, bool) {
	v, ok := s.Get(L0Key{Category: L0APIKeyByPrefix, ID: prefix})
	if !ok {
		return nil, false
	}
	key, ok := v.(*domain.APIKey)
	return key, ok
}

func (s *L0Store) SetAPIKeyByPrefix(key *domain.APIKey) {
	s.Set(L0Key{Category: L0APIKeyByPrefix, ID: key.Prefix}, key)
}

func (s *L0Store) GetPostList(filter domain.PostFilter, cursor domain.Cursor) (*domain.PostPage, bool) {
	v, ok := s.Get(PostListKey(filter, cursor))
	if !ok {
		return nil, false
	}
	page, ok := v.(*domain.PostPage)
	return page, ok
}

func (s *L0Store) SetPostList(filter domain.PostFilter, cursor domain.Cursor, page *domain.PostPage) {
	s.Set(PostListKey(filter, cursor), page)
}

// PostListKey derives the L0 key for one page of a filtered post
// listing. Identical filter+cursor pairs always map to the same key.
func PostListKey(filter domain.PostFilter, cursor domain.Cursor) L0Key {
	return L0Key{
		Category: L0PostList,
		ID:       ListID(hashFilter(filter), hashCursor(cursor)),
	}
}

func hashFilter(filter domain.PostFilter) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(filter.Tag)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(filter.Month)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(string(filter.Status))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(filter.Search)
	return h.Sum64()
}

func hashCursor(cursor domain.Cursor) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(cursor.After)
	_, _ = h.WriteString(fmt.Sprintf("\x00%d", cursor.Limit))
	return h.Sum64()
}

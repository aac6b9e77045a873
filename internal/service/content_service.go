// Package service holds the application services: the cache-aware read
// path that records dependencies, and the admin write path that
// publishes invalidation events.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/domain"
	"inkpress-backend/internal/repository"
	apperrors "inkpress-backend/pkg/errors"
)

// ContentService serves reads through the object cache. Every read
// records its entity dependencies with the collector before touching
// the cache, so a cacheable HTTP response always knows what it was
// computed from. Misses are coalesced per key with singleflight and
// fall back to the authoritative repositories.
//
// Each cache fill also registers the object-cache key with the
// dependency registry; without that edge the consumer could never
// resolve an entity change back to the cached object, and reads would
// keep serving the stale copy after a write.
type ContentService struct {
	posts    repository.PostRepository
	pages    repository.PageRepository
	settings repository.SettingsRepository
	apiKeys  repository.APIKeyRepository

	l0       *cache.L0Store
	registry *cache.Registry
	group    singleflight.Group
	logger   *zap.Logger
}

// NewContentService creates the cache-aware read service.
func NewContentService(
	posts repository.PostRepository,
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	apiKeys repository.APIKeyRepository,
	l0 *cache.L0Store,
	registry *cache.Registry,
	logger *zap.Logger,
) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		posts:    posts,
		pages:    pages,
		settings: settings,
		apiKeys:  apiKeys,
		l0:       l0,
		registry: registry,
		logger:   logger,
	}
}

// cachePost stores a post under both of its addresses and registers
// the keys against the post's id and slug entities. Registering the id
// on the slug key means a later rename still purges the old slug entry.
func (s *ContentService) cachePost(post *domain.Post) {
	s.l0.SetPostBySlug(post)
	s.l0.SetPostByID(post)
	deps := []cache.EntityKey{cache.PostEntity(post.ID), cache.PostSlugEntity(post.Slug)}
	s.registry.Register(cache.L0Key{Category: cache.L0PostByID, ID: post.ID}, deps)
	s.registry.Register(cache.L0Key{Category: cache.L0PostBySlug, ID: post.Slug}, deps)
}

// cachePage mirrors cachePost for pages.
func (s *ContentService) cachePage(page *domain.Page) {
	s.l0.SetPageBySlug(page)
	s.l0.SetPageByID(page)
	deps := []cache.EntityKey{cache.PageEntity(page.ID), cache.PageSlugEntity(page.Slug)}
	s.registry.Register(cache.L0Key{Category: cache.L0PageByID, ID: page.ID}, deps)
	s.registry.Register(cache.L0Key{Category: cache.L0PageBySlug, ID: page.Slug}, deps)
}

// GetPostBySlug returns one post, preferring the object cache.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	cache.Record(ctx, cache.PostSlugEntity(slug))

	if post, ok := s.l0.GetPostBySlug(slug); ok {
		cache.Record(ctx, cache.PostEntity(post.ID))
		return post, nil
	}

	v, err, _ := s.group.Do("post_slug:"+slug, func() (interface{}, error) {
		post, err := s.posts.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		s.cachePost(post)
		return post, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load post by slug")
	}

	post := v.(*domain.Post)
	cache.Record(ctx, cache.PostEntity(post.ID))
	return post, nil
}

// GetPostByID returns one post, preferring the object cache.
func (s *ContentService) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	cache.Record(ctx, cache.PostEntity(id))

	if post, ok := s.l0.GetPostByID(id); ok {
		return post, nil
	}

	v, err, _ := s.group.Do("post_id:"+id, func() (interface{}, error) {
		post, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cachePost(post)
		return post, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load post")
	}
	return v.(*domain.Post), nil
}

// ListPosts returns one page of a filtered post listing. The listing
// depends on the posts index as a whole: any post mutation invalidates
// every cached list.
func (s *ContentService) ListPosts(ctx context.Context, filter domain.PostFilter, cursor domain.Cursor) (*domain.PostPage, error) {
	cache.Record(ctx, cache.PostsIndexEntity())

	if page, ok := s.l0.GetPostList(filter, cursor); ok {
		return page, nil
	}

	key := cache.PostListKey(filter, cursor)
	v, err, _ := s.group.Do(key.String(), func() (interface{}, error) {
		page, err := s.posts.List(ctx, filter, cursor)
		if err != nil {
			return nil, err
		}
		s.l0.SetPostList(filter, cursor, page)
		s.registry.Register(key, []cache.EntityKey{cache.PostsIndexEntity()})
		return page, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list posts")
	}
	return v.(*domain.PostPage), nil
}

// GetPageBySlug returns one page, preferring the object cache.
func (s *ContentService) GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	cache.Record(ctx, cache.PageSlugEntity(slug))

	if page, ok := s.l0.GetPageBySlug(slug); ok {
		cache.Record(ctx, cache.PageEntity(page.ID))
		return page, nil
	}

	v, err, _ := s.group.Do("page_slug:"+slug, func() (interface{}, error) {
		page, err := s.pages.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		s.cachePage(page)
		return page, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load page by slug")
	}

	page := v.(*domain.Page)
	cache.Record(ctx, cache.PageEntity(page.ID))
	return page, nil
}

// GetSiteSettings returns the site settings singleton.
func (s *ContentService) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	cache.Record(ctx, cache.SiteSettingsEntity())

	if settings, ok := s.l0.GetSiteSettings(); ok {
		return settings, nil
	}

	v, err, _ := s.group.Do("site_settings", func() (interface{}, error) {
		settings, err := s.settings.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		s.l0.SetSiteSettings(settings)
		s.registry.Register(cache.L0Key{Category: cache.L0SiteSettings},
			[]cache.EntityKey{cache.SiteSettingsEntity()})
		return settings, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load site settings")
	}
	return v.(*domain.SiteSettings), nil
}

// GetNavigation returns the navigation singleton.
func (s *ContentService) GetNavigation(ctx context.Context) (*domain.Navigation, error) {
	cache.Record(ctx, cache.NavigationEntity())

	if nav, ok := s.l0.GetNavigation(); ok {
		return nav, nil
	}

	v, err, _ := s.group.Do("navigation", func() (interface{}, error) {
		nav, err := s.settings.GetNavigation(ctx)
		if err != nil {
			return nil, err
		}
		s.l0.SetNavigation(nav)
		s.registry.Register(cache.L0Key{Category: cache.L0Navigation},
			[]cache.EntityKey{cache.NavigationEntity()})
		return nav, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load navigation")
	}
	return v.(*domain.Navigation), nil
}

// GetTagCounts returns the tag aggregation.
func (s *ContentService) GetTagCounts(ctx context.Context) ([]domain.TagCount, error) {
	cache.Record(ctx, cache.PostAggTagsEntity())

	if counts, ok := s.l0.GetTagCounts(); ok {
		return counts, nil
	}

	v, err, _ := s.group.Do("tag_counts", func() (interface{}, error) {
		counts, err := s.posts.CountByTag(ctx)
		if err != nil {
			return nil, err
		}
		s.l0.SetTagCounts(counts)
		s.registry.Register(cache.L0Key{Category: cache.L0TagCounts},
			[]cache.EntityKey{cache.PostAggTagsEntity()})
		return counts, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load tag counts")
	}
	return v.([]domain.TagCount), nil
}

// GetMonthCounts returns the archive-month aggregation.
func (s *ContentService) GetMonthCounts(ctx context.Context) ([]domain.MonthCount, error) {
	cache.Record(ctx, cache.PostAggMonthsEntity())

	if counts, ok := s.l0.GetMonthCounts(); ok {
		return counts, nil
	}

	v, err, _ := s.group.Do("month_counts", func() (interface{}, error) {
		counts, err := s.posts.CountByMonth(ctx)
		if err != nil {
			return nil, err
		}
		s.l0.SetMonthCounts(counts)
		s.registry.Register(cache.L0Key{Category: cache.L0MonthCounts},
			[]cache.EntityKey{cache.PostAggMonthsEntity()})
		return counts, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load month counts")
	}
	return v.([]domain.MonthCount), nil
}

// GetAPIKeyByPrefix returns one issued API key for request
// authentication. Revoked keys are still returned; the caller decides
// what a revoked key means.
func (s *ContentService) GetAPIKeyByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error) {
	cache.Record(ctx, cache.APIKeyEntity(prefix))

	if key, ok := s.l0.GetAPIKeyByPrefix(prefix); ok {
		return key, nil
	}

	v, err, _ := s.group.Do(fmt.Sprintf("api_key:%s", prefix), func() (interface{}, error) {
		key, err := s.apiKeys.FindByPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		s.l0.SetAPIKeyByPrefix(key)
		s.registry.Register(cache.L0Key{Category: cache.L0APIKeyByPrefix, ID: key.Prefix},
			[]cache.EntityKey{cache.APIKeyEntity(key.Prefix)})
		return key, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load api key")
	}
	return v.(*domain.APIKey), nil
}

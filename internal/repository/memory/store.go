// Package memory provides in-memory reference implementations of the
// repository ports, used in development and tests. Production deploys
// swap these for database-backed repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"inkpress-backend/internal/domain"
	apperrors "inkpress-backend/pkg/errors"
)

// ContentStore implements every repository port over process-local
// maps.
type ContentStore struct {
	mu       sync.RWMutex
	posts    map[string]*domain.Post
	pages    map[string]*domain.Page
	apiKeys  map[string]*domain.APIKey
	settings *domain.SiteSettings
	nav      *domain.Navigation
}

// NewContentStore creates an empty store with usable defaults for the
// singletons.
func NewContentStore() *ContentStore {
	return &ContentStore{
		posts:   make(map[string]*domain.Post),
		pages:   make(map[string]*domain.Page),
		apiKeys: make(map[string]*domain.APIKey),
		settings: &domain.SiteSettings{
			Title:        "Inkpress",
			PostsPerPage: 10,
		},
		nav: &domain.Navigation{},
	}
}

// FindByID returns one post by id.
func (s *ContentStore) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NewNotFound("post not found: " + id)
	}
	return clonePost(post), nil
}

// FindBySlug returns one post by slug.
func (s *ContentStore) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, post := range s.posts {
		if post.Slug == slug {
			return clonePost(post), nil
		}
	}
	return nil, apperrors.NewNotFound("post not found: " + slug)
}

// List returns one page of a filtered listing, newest first.
func (s *ContentStore) List(ctx context.Context, filter domain.PostFilter, cursor domain.Cursor) (*domain.PostPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if matches(post, filter) {
			matched = append(matched, post)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	start := 0
	if cursor.After != "" {
		for i, post := range matched {
			if post.ID == cursor.After {
				start = i + 1
				break
			}
		}
	}
	limit := cursor.Limit
	if limit <= 0 {
		limit = 10
	}

	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := &domain.PostPage{Total: len(matched)}
	for _, post := range matched[start:end] {
		page.Posts = append(page.Posts, clonePost(post))
	}
	if end < len(matched) {
		page.NextCursor = matched[end-1].ID
	}
	return page, nil
}

// CountByTag returns the tag aggregation over published posts.
func (s *ContentStore) CountByTag(ctx context.Context) ([]domain.TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, post := range s.posts {
		if post.Status != domain.StatusPublished {
			continue
		}
		for _, tag := range post.Tags {
			counts[tag]++
		}
	}
	out := make([]domain.TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, domain.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}

// CountByMonth returns the archive aggregation over published posts.
func (s *ContentStore) CountByMonth(ctx context.Context) ([]domain.MonthCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, post := range s.posts {
		if post.Status != domain.StatusPublished {
			continue
		}
		counts[post.PublishedAt.Format("2006-01")]++
	}
	out := make([]domain.MonthCount, 0, len(counts))
	for month, count := range counts {
		out = append(out, domain.MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// Save stores a post.
func (s *ContentStore) Save(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

// Delete removes a post.
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return apperrors.NewNotFound("post not found: " + id)
	}
	delete(s.posts, id)
	return nil
}

// Pages returns a PageRepository view of the store.
func (s *ContentStore) Pages() *PageStore { return &PageStore{s} }

// PageStore adapts the store to the PageRepository port.
type PageStore struct{ s *ContentStore }

func (p *PageStore) FindByID(ctx context.Context, id string) (*domain.Page, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	page, ok := p.s.pages[id]
	if !ok {
		return nil, apperrors.NewNotFound("page not found: " + id)
	}
	clone := *page
	return &clone, nil
}

func (p *PageStore) FindBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	for _, page := range p.s.pages {
		if page.Slug == slug {
			clone := *page
			return &clone, nil
		}
	}
	return nil, apperrors.NewNotFound("page not found: " + slug)
}

func (p *PageStore) Save(ctx context.Context, page *domain.Page) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	clone := *page
	p.s.pages[page.ID] = &clone
	return nil
}

func (p *PageStore) Delete(ctx context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.pages[id]; !ok {
		return apperrors.NewNotFound("page not found: " + id)
	}
	delete(p.s.pages, id)
	return nil
}

// Settings returns a SettingsRepository view of the store.
func (s *ContentStore) Settings() *SettingsStore { return &SettingsStore{s} }

// SettingsStore adapts the store to the SettingsRepository port.
type SettingsStore struct{ s *ContentStore }

func (st *SettingsStore) GetSettings(ctx context.Context) (*domain.SiteSettings, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	clone := *st.s.settings
	return &clone, nil
}

func (st *SettingsStore) SaveSettings(ctx context.Context, settings *domain.SiteSettings) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	clone := *settings
	st.s.settings = &clone
	return nil
}

func (st *SettingsStore) GetNavigation(ctx context.Context) (*domain.Navigation, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	clone := *st.s.nav
	clone.Items = append([]domain.NavigationItem{}, st.s.nav.Items...)
	return &clone, nil
}

func (st *SettingsStore) SaveNavigation(ctx context.Context, nav *domain.Navigation) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	clone := *nav
	clone.Items = append([]domain.NavigationItem{}, nav.Items...)
	st.s.nav = &clone
	return nil
}

// APIKeys returns an APIKeyRepository view of the store.
func (s *ContentStore) APIKeys() *APIKeyStore { return &APIKeyStore{s} }

// APIKeyStore adapts the store to the APIKeyRepository port.
type APIKeyStore struct{ s *ContentStore }

func (a *APIKeyStore) FindByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	key, ok := a.s.apiKeys[prefix]
	if !ok {
		return nil, apperrors.NewNotFound("api key not found: " + prefix)
	}
	clone := *key
	return &clone, nil
}

func (a *APIKeyStore) Save(ctx context.Context, key *domain.APIKey) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	clone := *key
	a.s.apiKeys[key.Prefix] = &clone
	return nil
}

func (a *APIKeyStore) Revoke(ctx context.Context, prefix string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	key, ok := a.s.apiKeys[prefix]
	if !ok {
		return apperrors.NewNotFound("api key not found: " + prefix)
	}
	key.Revoked = true
	return nil
}

func clonePost(post *domain.Post) *domain.Post {
	clone := *post
	clone.Tags = append([]string{}, post.Tags...)
	return &clone
}

func matches(post *domain.Post, filter domain.PostFilter) bool {
	if filter.Status != "" && post.Status != filter.Status {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range post.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Month != "" && post.PublishedAt.Format("2006-01") != filter.Month {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(post.Title), needle) &&
			!strings.Contains(strings.ToLower(post.Body), needle) {
			return false
		}
	}
	return true
}

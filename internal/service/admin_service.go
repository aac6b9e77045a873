package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/domain"
	"inkpress-backend/internal/repository"
	apperrors "inkpress-backend/pkg/errors"
)

// AdminService is the write path. Every mutation persists through the
// repository first, then publishes a cache event and kicks the consumer
// so invalidation happens promptly without blocking the writer on cache
// maintenance.
type AdminService struct {
	posts    repository.PostRepository
	pages    repository.PageRepository
	settings repository.SettingsRepository
	apiKeys  repository.APIKeyRepository

	queue    *cache.EventQueue
	consumer *cache.Consumer
	logger   *zap.Logger
}

// NewAdminService creates the write service.
func NewAdminService(
	posts repository.PostRepository,
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	apiKeys repository.APIKeyRepository,
	queue *cache.EventQueue,
	consumer *cache.Consumer,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		posts:    posts,
		pages:    pages,
		settings: settings,
		apiKeys:  apiKeys,
		queue:    queue,
		consumer: consumer,
		logger:   logger,
	}
}

// publish records the invalidating write and nudges the consumer.
func (s *AdminService) publish(payload cache.EventPayload) {
	event := s.queue.Publish(payload)
	s.logger.Debug("Cache event published",
		zap.String("kind", event.Kind.String()),
		zap.Uint64("epoch", event.Epoch),
		zap.String("entity_id", event.EntityID))
	if s.consumer != nil {
		s.consumer.Kick()
	}
}

// UpsertPost creates or updates a post.
func (s *AdminService) UpsertPost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post.Slug == "" {
		return nil, apperrors.NewValidation("post slug is required")
	}
	if post.Title == "" {
		return nil, apperrors.NewValidation("post title is required")
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.UpdatedAt = time.Now()

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, apperrors.Wrap(err, "failed to save post")
	}
	s.publish(cache.PostUpserted(post.ID, post.Slug))
	return post, nil
}

// DeletePost removes a post.
func (s *AdminService) DeletePost(ctx context.Context, id string) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to load post for deletion")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, "failed to delete post")
	}
	s.publish(cache.PostDeleted(post.ID, post.Slug))
	return nil
}

// UpsertPage creates or updates a page.
func (s *AdminService) UpsertPage(ctx context.Context, page *domain.Page) (*domain.Page, error) {
	if page.Slug == "" {
		return nil, apperrors.NewValidation("page slug is required")
	}
	if page.ID == "" {
		page.ID = uuid.New().String()
	}
	page.UpdatedAt = time.Now()

	if err := s.pages.Save(ctx, page); err != nil {
		return nil, apperrors.Wrap(err, "failed to save page")
	}
	s.publish(cache.PageUpserted(page.ID, page.Slug))
	return page, nil
}

// DeletePage removes a page.
func (s *AdminService) DeletePage(ctx context.Context, id string) error {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to load page for deletion")
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, "failed to delete page")
	}
	s.publish(cache.PageDeleted(page.ID, page.Slug))
	return nil
}

// UpdateSiteSettings replaces the site settings singleton.
func (s *AdminService) UpdateSiteSettings(ctx context.Context, settings *domain.SiteSettings) error {
	if settings.Title == "" {
		return apperrors.NewValidation("site title is required")
	}
	settings.UpdatedAt = time.Now()

	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return apperrors.Wrap(err, "failed to save site settings")
	}
	s.publish(cache.SiteSettingsUpdated())
	return nil
}

// UpdateNavigation replaces the navigation singleton.
func (s *AdminService) UpdateNavigation(ctx context.Context, nav *domain.Navigation) error {
	nav.UpdatedAt = time.Now()

	if err := s.settings.SaveNavigation(ctx, nav); err != nil {
		return apperrors.Wrap(err, "failed to save navigation")
	}
	s.publish(cache.NavigationUpdated())
	return nil
}

// UpsertAPIKey stores an issued API key's read model.
func (s *AdminService) UpsertAPIKey(ctx context.Context, key *domain.APIKey) error {
	if key.Prefix == "" {
		return apperrors.NewValidation("api key prefix is required")
	}
	if err := s.apiKeys.Save(ctx, key); err != nil {
		return apperrors.Wrap(err, "failed to save api key")
	}
	s.publish(cache.APIKeyUpserted(key.Prefix))
	return nil
}

// RevokeAPIKey revokes an issued API key.
func (s *AdminService) RevokeAPIKey(ctx context.Context, prefix string) error {
	if err := s.apiKeys.Revoke(ctx, prefix); err != nil {
		return apperrors.Wrap(err, "failed to revoke api key")
	}
	s.publish(cache.APIKeyRevoked(prefix))
	return nil
}

// Package repository declares the persistence ports of the backend.
// The database implementations live outside the cache-consistency core;
// the cache layer only needs these interfaces to fall back to the
// authoritative data source on a miss.
package repository

import (
	"context"

	"inkpress-backend/internal/domain"
)

// PostRepository is the authoritative source of posts.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, filter domain.PostFilter, cursor domain.Cursor) (*domain.PostPage, error)
	CountByTag(ctx context.Context) ([]domain.TagCount, error)
	CountByMonth(ctx context.Context) ([]domain.MonthCount, error)
	Save(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

// PageRepository is the authoritative source of pages.
type PageRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Page, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Page, error)
	Save(ctx context.Context, page *domain.Page) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository is the authoritative source of the site settings
// and navigation singletons.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*domain.SiteSettings, error)
	SaveSettings(ctx context.Context, settings *domain.SiteSettings) error
	GetNavigation(ctx context.Context) (*domain.Navigation, error)
	SaveNavigation(ctx context.Context, nav *domain.Navigation) error
}

// APIKeyRepository is the authoritative source of issued API keys.
// Issuance and verification live outside this core.
type APIKeyRepository interface {
	FindByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error)
	Save(ctx context.Context, key *domain.APIKey) error
	Revoke(ctx context.Context, prefix string) error
}

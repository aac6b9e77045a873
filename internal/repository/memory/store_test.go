package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpress-backend/internal/domain"
	apperrors "inkpress-backend/pkg/errors"
)

func seedPosts(t *testing.T, store *ContentStore, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Save(context.Background(), &domain.Post{
			ID:          fmt.Sprintf("%d", i),
			Slug:        fmt.Sprintf("post-%d", i),
			Title:       fmt.Sprintf("Post %d", i),
			Status:      domain.StatusPublished,
			Tags:        []string{"go"},
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

func TestContentStore_FindBySlug(t *testing.T) {
	store := NewContentStore()
	seedPosts(t, store, 3)

	post, err := store.FindBySlug(context.Background(), "post-1")
	require.NoError(t, err)
	assert.Equal(t, "1", post.ID)

	_, err = store.FindBySlug(context.Background(), "absent")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestContentStore_List_NewestFirstWithCursor(t *testing.T) {
	store := NewContentStore()
	seedPosts(t, store, 5)
	ctx := context.Background()

	first, err := store.List(ctx, domain.PostFilter{}, domain.Cursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.Equal(t, "4", first.Posts[0].ID)
	assert.Equal(t, "3", first.Posts[1].ID)
	assert.Equal(t, 5, first.Total)
	require.NotEmpty(t, first.NextCursor)

	second, err := store.List(ctx, domain.PostFilter{}, domain.Cursor{After: first.NextCursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Equal(t, "2", second.Posts[0].ID)
}

func TestContentStore_List_Filters(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.Post{
		ID: "a", Slug: "a", Title: "Go Generics", Body: "about generics",
		Status: domain.StatusPublished, Tags: []string{"go"},
		PublishedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Save(ctx, &domain.Post{
		ID: "b", Slug: "b", Title: "Rust Notes",
		Status: domain.StatusDraft, Tags: []string{"rust"},
		PublishedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}))

	t.Run("Should filter by tag", func(t *testing.T) {
		page, err := store.List(ctx, domain.PostFilter{Tag: "go"}, domain.Cursor{Limit: 10})
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, "a", page.Posts[0].ID)
	})

	t.Run("Should filter by month", func(t *testing.T) {
		page, err := store.List(ctx, domain.PostFilter{Month: "2026-03"}, domain.Cursor{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Posts, 1)
	})

	t.Run("Should filter by status", func(t *testing.T) {
		page, err := store.List(ctx, domain.PostFilter{Status: domain.StatusDraft}, domain.Cursor{Limit: 10})
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, "b", page.Posts[0].ID)
	})

	t.Run("Should search title and body", func(t *testing.T) {
		page, err := store.List(ctx, domain.PostFilter{Search: "generics"}, domain.Cursor{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Posts, 1)
	})
}

func TestContentStore_Aggregations_PublishedOnly(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	seedPosts(t, store, 2)
	require.NoError(t, store.Save(ctx, &domain.Post{
		ID: "draft", Slug: "draft", Title: "Draft", Status: domain.StatusDraft, Tags: []string{"go"},
	}))

	tags, err := store.CountByTag(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 2, tags[0].Count, "drafts do not count")

	months, err := store.CountByMonth(ctx)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, "2026-01", months[0].Month)
}

func TestContentStore_ClonesAreIsolated(t *testing.T) {
	store := NewContentStore()
	seedPosts(t, store, 1)

	post, err := store.FindByID(context.Background(), "0")
	require.NoError(t, err)
	post.Title = "mutated"

	again, err := store.FindByID(context.Background(), "0")
	require.NoError(t, err)
	assert.Equal(t, "Post 0", again.Title)
}

func TestPageStore_RoundTrip(t *testing.T) {
	store := NewContentStore()
	pages := store.Pages()
	ctx := context.Background()

	require.NoError(t, pages.Save(ctx, &domain.Page{ID: "p1", Slug: "about", Title: "About"}))

	page, err := pages.FindBySlug(ctx, "about")
	require.NoError(t, err)
	assert.Equal(t, "p1", page.ID)

	require.NoError(t, pages.Delete(ctx, "p1"))
	_, err = pages.FindByID(ctx, "p1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAPIKeyStore_Revoke(t *testing.T) {
	store := NewContentStore()
	keys := store.APIKeys()
	ctx := context.Background()

	require.NoError(t, keys.Save(ctx, &domain.APIKey{Prefix: "ik_abc", Name: "ci"}))
	require.NoError(t, keys.Revoke(ctx, "ik_abc"))

	key, err := keys.FindByPrefix(ctx, "ik_abc")
	require.NoError(t, err)
	assert.True(t, key.Revoked)

	assert.True(t, apperrors.IsNotFound(keys.Revoke(ctx, "ik_zzz")))
}

func TestSettingsStore_Defaults(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()

	settings, err := store.Settings().GetSettings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, settings.Title)

	nav, err := store.Settings().GetNavigation(ctx)
	require.NoError(t, err)
	assert.Empty(t, nav.Items)
}

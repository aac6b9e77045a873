package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpress-backend/internal/domain"
)

type consumerFixture struct {
	queue    *EventQueue
	registry *Registry
	l0       *L0Store
	l1       *L1Store
	enqueuer *captureEnqueuer
	trigger  *WarmTrigger
	consumer *Consumer
}

func newConsumerFixture(t *testing.T) *consumerFixture {
	t.Helper()
	f := &consumerFixture{
		queue:    NewEventQueue(0, nil, nil),
		registry: NewRegistry(),
		l0:       newTestL0(),
		l1:       newTestL1(),
		enqueuer: newCaptureEnqueuer(),
	}
	f.trigger = NewWarmTrigger(10*time.Millisecond, f.enqueuer, nil, nil)
	t.Cleanup(f.trigger.Close)
	f.consumer = NewConsumer(DefaultConsumerConfig(), f.queue, f.registry, f.l0, f.l1, f.trigger, nil, nil, nil)
	return f
}

func TestConsumer_RunCycle_PurgesDependentResponse(t *testing.T) {
	f := newConsumerFixture(t)

	// A rendered post page was cached and registered against the slug.
	key := L1Key{Format: "html", Path: "/posts/hello"}
	f.l1.Set(key, testResponse("<html>hello</html>"))
	f.registry.Register(key, []EntityKey{PostSlugEntity("hello"), SiteSettingsEntity()})

	f.queue.Publish(PostUpserted("42", "hello"))

	processed := f.consumer.RunCycle(context.Background())

	assert.Equal(t, 1, processed)
	_, ok := f.l1.Get(key)
	assert.False(t, ok, "response for the edited post must be gone")
	assert.Zero(t, f.registry.Len())
	assert.True(t, f.queue.IsEmpty())
}

func TestConsumer_RunCycle_PurgesObjectAndListEntries(t *testing.T) {
	f := newConsumerFixture(t)

	post := &domain.Post{ID: "42", Slug: "hello"}
	f.l0.SetPostByID(post)
	f.l0.SetPostBySlug(post)
	f.l0.SetPostList(domain.PostFilter{}, domain.Cursor{Limit: 10}, &domain.PostPage{Total: 1})

	f.registry.Register(L0Key{Category: L0PostByID, ID: "42"}, []EntityKey{PostEntity("42")})
	f.registry.Register(L0Key{Category: L0PostBySlug, ID: "hello"}, []EntityKey{PostSlugEntity("hello")})
	f.registry.Register(PostListKey(domain.PostFilter{}, domain.Cursor{Limit: 10}), []EntityKey{PostsIndexEntity()})

	f.queue.Publish(PostDeleted("42", "hello"))
	f.consumer.RunCycle(context.Background())

	_, ok := f.l0.GetPostByID("42")
	assert.False(t, ok)
	_, ok = f.l0.GetPostBySlug("hello")
	assert.False(t, ok)
	_, ok = f.l0.GetPostList(domain.PostFilter{}, domain.Cursor{Limit: 10})
	assert.False(t, ok)
}

func TestConsumer_RunCycle_LeavesUnrelatedEntries(t *testing.T) {
	f := newConsumerFixture(t)

	other := L1Key{Format: "html", Path: "/posts/other"}
	f.l1.Set(other, testResponse("other"))
	f.registry.Register(other, []EntityKey{PostSlugEntity("other")})

	f.queue.Publish(PostUpserted("42", "hello"))
	f.consumer.RunCycle(context.Background())

	_, ok := f.l1.Get(other)
	assert.True(t, ok, "unrelated responses stay cached")
	assert.Equal(t, 1, f.registry.Len())
}

func TestConsumer_RunCycle_EmptyQueueIsNoOp(t *testing.T) {
	f := newConsumerFixture(t)

	assert.Zero(t, f.consumer.RunCycle(context.Background()))
}

func TestConsumer_RunCycle_SettingsFanOutToDerivedCollections(t *testing.T) {
	f := newConsumerFixture(t)

	feed := L1Key{Format: "xml", Path: "/feed.xml"}
	sitemap := L1Key{Format: "xml", Path: "/sitemap.xml"}
	f.l1.Set(feed, testResponse("<rss/>"))
	f.l1.Set(sitemap, testResponse("<urlset/>"))
	f.registry.Register(feed, []EntityKey{FeedEntity()})
	f.registry.Register(sitemap, []EntityKey{SitemapEntity()})

	f.queue.Publish(SiteSettingsUpdated())
	f.consumer.RunCycle(context.Background())

	_, ok := f.l1.Get(feed)
	assert.False(t, ok)
	_, ok = f.l1.Get(sitemap)
	assert.False(t, ok)
}

func TestConsumer_RunCycle_ContentBatchFiresWarmTrigger(t *testing.T) {
	f := newConsumerFixture(t)

	f.queue.Publish(PostUpserted("42", "hello"))
	f.queue.Publish(PageUpserted("7", "about"))
	f.consumer.RunCycle(context.Background())

	waitForDispatch(t, f.enqueuer)
	captured := f.enqueuer.captured()
	require.Len(t, captured, 1)
	// One coalesced dispatch per cycle, tagged with the last content kind.
	assert.Equal(t, []string{"page_upserted"}, captured[0].Reasons)
}

func TestConsumer_RunCycle_WarmReasonSkipsTrailingKeyEvents(t *testing.T) {
	f := newConsumerFixture(t)

	// A key event at the end of the batch must not become the recorded
	// cause of a warm that a content event triggered.
	f.queue.Publish(PostUpserted("42", "hello"))
	f.queue.Publish(APIKeyRevoked("ik_abc"))
	f.consumer.RunCycle(context.Background())

	waitForDispatch(t, f.enqueuer)
	captured := f.enqueuer.captured()
	require.Len(t, captured, 1)
	assert.Equal(t, []string{"post_upserted"}, captured[0].Reasons)
}

func TestConsumer_RunCycle_APIKeyEventsDoNotWarm(t *testing.T) {
	f := newConsumerFixture(t)

	f.l0.SetAPIKeyByPrefix(&domain.APIKey{Prefix: "ik_abc"})
	f.registry.Register(L0Key{Category: L0APIKeyByPrefix, ID: "ik_abc"}, []EntityKey{APIKeyEntity("ik_abc")})

	f.queue.Publish(APIKeyRevoked("ik_abc"))
	f.consumer.RunCycle(context.Background())

	// The key itself is purged but no warm pass is requested.
	_, ok := f.l0.GetAPIKeyByPrefix("ik_abc")
	assert.False(t, ok)

	select {
	case <-f.enqueuer.done:
		t.Fatal("warm trigger fired for an api key event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConsumer_RunCycle_DuplicateEventsAreIdempotent(t *testing.T) {
	f := newConsumerFixture(t)

	key := L1Key{Format: "html", Path: "/posts/hello"}
	f.l1.Set(key, testResponse("hello"))
	f.registry.Register(key, []EntityKey{PostSlugEntity("hello")})

	f.queue.Publish(PostUpserted("42", "hello"))
	f.queue.Publish(PostUpserted("42", "hello"))
	f.queue.Publish(PostUpserted("42", "hello"))

	processed := f.consumer.RunCycle(context.Background())
	assert.Equal(t, 3, processed)
	assert.Zero(t, f.registry.Len())

	// Re-processing the same mutation later still succeeds quietly.
	f.queue.Publish(PostUpserted("42", "hello"))
	assert.Equal(t, 1, f.consumer.RunCycle(context.Background()))
}

func TestConsumer_RunCycle_RespectsBatchLimit(t *testing.T) {
	f := newConsumerFixture(t)
	cfg := DefaultConsumerConfig()
	cfg.BatchLimit = 2
	consumer := NewConsumer(cfg, f.queue, f.registry, f.l0, f.l1, nil, nil, nil, nil)

	for i := 0; i < 5; i++ {
		f.queue.Publish(NavigationUpdated())
	}

	assert.Equal(t, 2, consumer.RunCycle(context.Background()))
	assert.Equal(t, 3, f.queue.Len())
}

func TestConsumer_Run_DrainsOnKick(t *testing.T) {
	f := newConsumerFixture(t)
	cfg := DefaultConsumerConfig()
	cfg.Interval = time.Hour // only the kick can drive this test
	consumer := NewConsumer(cfg, f.queue, f.registry, f.l0, f.l1, f.trigger, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(ctx)

	f.queue.Publish(PostUpserted("42", "hello"))
	consumer.Kick()

	require.Eventually(t, f.queue.IsEmpty, 2*time.Second, 5*time.Millisecond)
}

func TestEntitiesForEvent(t *testing.T) {
	t.Run("Should fan post mutations out to derived collections", func(t *testing.T) {
		event := CacheEvent{Kind: EventPostUpserted, EntityID: "42", Slug: "hello"}
		entities := entitiesFor(event)

		assert.Contains(t, entities, PostEntity("42"))
		assert.Contains(t, entities, PostSlugEntity("hello"))
		assert.Contains(t, entities, PostsIndexEntity())
		assert.Contains(t, entities, PostAggTagsEntity())
		assert.Contains(t, entities, PostAggMonthsEntity())
		assert.Contains(t, entities, FeedEntity())
		assert.Contains(t, entities, SitemapEntity())
	})

	t.Run("Should keep page mutations narrow", func(t *testing.T) {
		event := CacheEvent{Kind: EventPageDeleted, EntityID: "7", Slug: "about"}
		entities := entitiesFor(event)

		assert.Len(t, entities, 3)
		assert.Contains(t, entities, PageEntity("7"))
		assert.Contains(t, entities, PageSlugEntity("about"))
		assert.Contains(t, entities, SitemapEntity())
		assert.NotContains(t, entities, PostsIndexEntity())
	})

	t.Run("Should not invalidate anything on warmup", func(t *testing.T) {
		assert.Empty(t, entitiesFor(CacheEvent{Kind: EventWarmupOnStartup}))
	})

	t.Run("Should resolve api key events to the key alone", func(t *testing.T) {
		entities := entitiesFor(CacheEvent{Kind: EventAPIKeyUpserted, EntityID: "ik_abc"})
		assert.Equal(t, []EntityKey{APIKeyEntity("ik_abc")}, entities)
	})
}

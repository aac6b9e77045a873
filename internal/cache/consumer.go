package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"inkpress-backend/internal/observability"
)

// ConsumerConfig controls the drain loop.
type ConsumerConfig struct {
	Interval   time.Duration
	BatchLimit int
}

// DefaultConsumerConfig returns the drain cadence used when
// configuration is absent.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Interval:   2 * time.Second,
		BatchLimit: 256,
	}
}

// Consumer drains the event queue, resolves affected cache keys through
// the registry, purges them from both stores, and signals the warm
// trigger after batches that touched content. Purges are local map
// removals and cannot fail; a cycle that dies mid-batch leaves the
// undrained remainder in the queue, and re-processing is safe because
// invalidation is idempotent.
type Consumer struct {
	queue    *EventQueue
	registry *Registry
	l0       *L0Store
	l1       *L1Store
	trigger  *WarmTrigger

	interval   time.Duration
	batchLimit int

	kick    chan struct{}
	metrics *observability.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewConsumer wires the consumer to the queue, registry, and stores.
// The trigger and tracer may be nil.
func NewConsumer(
	cfg ConsumerConfig,
	queue *EventQueue,
	registry *Registry,
	l0 *L0Store,
	l1 *L1Store,
	trigger *WarmTrigger,
	metrics *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("cache-consumer")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConsumerConfig().Interval
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultConsumerConfig().BatchLimit
	}
	return &Consumer{
		queue:      queue,
		registry:   registry,
		l0:         l0,
		l1:         l1,
		trigger:    trigger,
		interval:   cfg.Interval,
		batchLimit: cfg.BatchLimit,
		kick:       make(chan struct{}, 1),
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
	}
}

// Kick asks the consumer to run a cycle soon, without waiting for the
// next tick. Non-blocking; redundant kicks collapse.
func (c *Consumer) Kick() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Run drains on the configured interval (and on Kick) until the context
// is cancelled. Intended to run as one background goroutine.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.kick:
		}
		c.RunCycle(ctx)
	}
}

// RunCycle performs one drain-resolve-purge pass and returns the number
// of events processed.
func (c *Consumer) RunCycle(ctx context.Context) int {
	events := c.queue.Drain(c.batchLimit)
	if len(events) == 0 {
		return 0
	}

	ctx, span := c.tracer.Start(ctx, "cache.consume",
		trace.WithAttributes(attribute.Int("events", len(events))))
	defer span.End()

	start := time.Now()
	purged := 0
	warmReason := ""

	// Events carry distinct epochs, so the same mutation published
	// twice still resolves to identical entity sets; re-purging an
	// absent key is a no-op. Seen entities are deduplicated per batch
	// to avoid redundant registry calls.
	seen := make(map[EntityKey]struct{})
	for _, event := range events {
		if isContentEvent(event.Kind) {
			warmReason = event.Kind.String()
		}
		for _, entity := range entitiesFor(event) {
			if _, done := seen[entity]; done {
				continue
			}
			seen[entity] = struct{}{}
			for _, key := range c.registry.Invalidate(entity) {
				c.purge(key)
				purged++
			}
		}
	}

	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.ConsumeCycles.Inc()
		c.metrics.ConsumeDuration.Observe(elapsed.Seconds())
		c.metrics.PurgedKeys.Add(float64(purged))
	}
	span.SetAttributes(attribute.Int("purged", purged))

	c.logger.Debug("Consumed cache events",
		zap.Int("events", len(events)),
		zap.Int("entities", len(seen)),
		zap.Int("purged", purged),
		zap.Duration("duration", elapsed))

	// The reason is the last content-affecting kind in the batch; a
	// trailing key event must not masquerade as the cause of the warm.
	if warmReason != "" && c.trigger != nil {
		c.trigger.Fire(warmReason)
	}
	return len(events)
}

// purge removes one resolved key from whichever store owns it.
func (c *Consumer) purge(key CacheKey) {
	switch k := key.(type) {
	case L0Key:
		c.l0.Purge(k)
	case L1Key:
		c.l1.Purge(k)
	}
}

// isContentEvent reports whether the mutation affects rendered pages
// and therefore warrants a warm pass.
func isContentEvent(kind EventKind) bool {
	switch kind {
	case EventAPIKeyUpserted, EventAPIKeyRevoked:
		return false
	default:
		return true
	}
}

// entitiesFor maps an event to the entities it makes stale. The fan-out
// is a fixed table: any post or page mutation also implies the derived
// collections (index, aggregations, feed, sitemap) may have changed.
func entitiesFor(event CacheEvent) []EntityKey {
	switch event.Kind {
	case EventSiteSettingsUpdated:
		// Settings shape every rendered page.
		return []EntityKey{
			SiteSettingsEntity(),
			FeedEntity(),
			SitemapEntity(),
		}
	case EventNavigationUpdated:
		return []EntityKey{NavigationEntity()}
	case EventPostUpserted, EventPostDeleted:
		return []EntityKey{
			PostEntity(event.EntityID),
			PostSlugEntity(event.Slug),
			PostsIndexEntity(),
			PostAggTagsEntity(),
			PostAggMonthsEntity(),
			FeedEntity(),
			SitemapEntity(),
		}
	case EventPageUpserted, EventPageDeleted:
		return []EntityKey{
			PageEntity(event.EntityID),
			PageSlugEntity(event.Slug),
			SitemapEntity(),
		}
	case EventAPIKeyUpserted, EventAPIKeyRevoked:
		return []EntityKey{APIKeyEntity(event.EntityID)}
	case EventWarmupOnStartup:
		// Nothing cached yet on a cold boot; the event only exists to
		// fire the warm trigger.
		return nil
	default:
		return nil
	}
}

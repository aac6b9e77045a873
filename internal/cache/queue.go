package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inkpress-backend/internal/observability"
)

// EventKind enumerates the mutation classes that invalidate caches.
type EventKind uint8

const (
	EventSiteSettingsUpdated EventKind = iota + 1
	EventNavigationUpdated
	EventPostUpserted
	EventPostDeleted
	EventPageUpserted
	EventPageDeleted
	EventAPIKeyUpserted
	EventAPIKeyRevoked
	EventWarmupOnStartup
)

var eventKindNames = map[EventKind]string{
	EventSiteSettingsUpdated: "site_settings_updated",
	EventNavigationUpdated:   "navigation_updated",
	EventPostUpserted:        "post_upserted",
	EventPostDeleted:         "post_deleted",
	EventPageUpserted:        "page_upserted",
	EventPageDeleted:         "page_deleted",
	EventAPIKeyUpserted:      "api_key_upserted",
	EventAPIKeyRevoked:       "api_key_revoked",
	EventWarmupOnStartup:     "warmup_on_startup",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "event_kind_unknown"
}

// EventPayload is what a write path hands to Publish: the mutation
// class plus the identifiers of the entity it touched. The queue stamps
// id, epoch, and timestamp.
type EventPayload struct {
	Kind EventKind
	// EntityID is the post/page id or API key prefix; empty for
	// singleton mutations and the startup warmup.
	EntityID string
	// Slug is set for content mutations so slug-addressed caches can be
	// invalidated alongside id-addressed ones.
	Slug string
}

// Payload constructors, one per mutation class.

func SiteSettingsUpdated() EventPayload { return EventPayload{Kind: EventSiteSettingsUpdated} }
func NavigationUpdated() EventPayload   { return EventPayload{Kind: EventNavigationUpdated} }
func WarmupOnStartup() EventPayload     { return EventPayload{Kind: EventWarmupOnStartup} }

func PostUpserted(id, slug string) EventPayload {
	return EventPayload{Kind: EventPostUpserted, EntityID: id, Slug: slug}
}

func PostDeleted(id, slug string) EventPayload {
	return EventPayload{Kind: EventPostDeleted, EntityID: id, Slug: slug}
}

func PageUpserted(id, slug string) EventPayload {
	return EventPayload{Kind: EventPageUpserted, EntityID: id, Slug: slug}
}

func PageDeleted(id, slug string) EventPayload {
	return EventPayload{Kind: EventPageDeleted, EntityID: id, Slug: slug}
}

func APIKeyUpserted(prefix string) EventPayload {
	return EventPayload{Kind: EventAPIKeyUpserted, EntityID: prefix}
}

func APIKeyRevoked(prefix string) EventPayload {
	return EventPayload{Kind: EventAPIKeyRevoked, EntityID: prefix}
}

// CacheEvent is one recorded invalidating write. Epoch is the sole
// ordering authority; Timestamp is informational only.
type CacheEvent struct {
	ID        string
	Epoch     uint64
	Kind      EventKind
	EntityID  string
	Slug      string
	Timestamp time.Time
}

// EventQueue is an append-only, epoch-ordered buffer of invalidation
// events. Publish is called on write hot paths and never blocks or
// errors; when the bounded buffer overflows, the oldest unconsumed
// event is dropped and counted. Dropping oldest is safe because
// invalidation is idempotent and the retained newer event for the same
// entity still forces the purge.
type EventQueue struct {
	mu      sync.Mutex
	events  []CacheEvent
	cap     int
	epoch   atomic.Uint64
	dropped atomic.Uint64

	metrics *observability.Collector
	logger  *zap.Logger
}

// NewEventQueue creates a queue bounded to capacity events. A capacity
// of zero or less means unbounded, which is only intended for tests.
func NewEventQueue(capacity int, metrics *observability.Collector, logger *zap.Logger) *EventQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventQueue{
		cap:     capacity,
		metrics: metrics,
		logger:  logger,
	}
}

// NextEpoch issues a strictly increasing ordinal, safe for concurrent
// callers.
func (q *EventQueue) NextEpoch() uint64 {
	return q.epoch.Add(1)
}

// Publish appends an event stamped with a fresh epoch. It always
// succeeds from the caller's point of view. The epoch is allocated
// under the buffer lock so the buffer is always sorted by epoch and
// Drain returns strictly increasing epochs even under concurrent
// publishers.
func (q *EventQueue) Publish(payload EventPayload) CacheEvent {
	event := CacheEvent{
		ID:        uuid.New().String(),
		Kind:      payload.Kind,
		EntityID:  payload.EntityID,
		Slug:      payload.Slug,
		Timestamp: time.Now(),
	}

	q.mu.Lock()
	event.Epoch = q.epoch.Add(1)
	q.events = append(q.events, event)
	overflow := 0
	if q.cap > 0 && len(q.events) > q.cap {
		overflow = len(q.events) - q.cap
		q.events = append(q.events[:0:0], q.events[overflow:]...)
	}
	q.mu.Unlock()

	if overflow > 0 {
		q.dropped.Add(uint64(overflow))
		if q.metrics != nil {
			q.metrics.EventsDropped.Add(float64(overflow))
		}
		q.logger.Warn("Event queue overflow, dropped oldest events",
			zap.Int("dropped", overflow),
			zap.Int("capacity", q.cap))
	}
	if q.metrics != nil {
		q.metrics.EventsPublished.WithLabelValues(event.Kind.String()).Inc()
	}

	return event
}

// Drain removes and returns up to limit events in epoch order. A limit
// of zero or less drains everything.
func (q *EventQueue) Drain(limit int) []CacheEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.events)
	if n == 0 {
		return nil
	}
	if limit > 0 && limit < n {
		n = limit
	}

	batch := make([]CacheEvent, n)
	copy(batch, q.events[:n])
	q.events = append(q.events[:0:0], q.events[n:]...)
	return batch
}

// Len reports the number of undrained events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// IsEmpty reports whether the queue holds no undrained events.
func (q *EventQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear discards all undrained events.
func (q *EventQueue) Clear() {
	q.mu.Lock()
	q.events = nil
	q.mu.Unlock()
}

// Dropped reports how many events have been lost to overflow since the
// queue was created.
func (q *EventQueue) Dropped() uint64 {
	return q.dropped.Load()
}

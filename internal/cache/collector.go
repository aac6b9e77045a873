package cache

import (
	"context"
	"sync"
)

// Collector accumulates the entity keys a unit of work read while
// computing a cacheable result. Each in-flight request owns exactly one
// Collector for its lifetime; scopes never span requests, so two
// concurrent requests can never observe each other's dependencies.
type Collector struct {
	mu       sync.Mutex
	entities map[EntityKey]struct{}
}

type collectorCtxKey struct{}

// WithCollector establishes a fresh, isolated dependency scope on the
// context and returns the collector so the caller can read the set back
// once the unit of work completes.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{entities: make(map[EntityKey]struct{})}
	return context.WithValue(ctx, collectorCtxKey{}, c), c
}

// CollectorFromContext returns the active collector, if any.
func CollectorFromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorCtxKey{}).(*Collector)
	return c, ok
}

// Record declares that the current unit of work depended on the given
// entities. It is a no-op when no scope is active: read paths call it
// unconditionally and only cacheable requests carry a collector.
func Record(ctx context.Context, entities ...EntityKey) {
	c, ok := CollectorFromContext(ctx)
	if !ok {
		return
	}
	c.mu.Lock()
	for _, e := range entities {
		c.entities[e] = struct{}{}
	}
	c.mu.Unlock()
}

// Entities returns a snapshot of the recorded dependency set.
func (c *Collector) Entities() []EntityKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EntityKey, 0, len(c.entities))
	for e := range c.entities {
		out = append(out, e)
	}
	return out
}

// Len reports how many distinct entities have been recorded.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entities)
}

package cache

import (
	"sync"
)

// Registry is the bidirectional dependency index: each cache key maps
// to the entity keys it was computed from, and each entity key maps
// back to the cache keys that depend on it. The reverse index is what
// makes invalidation O(dependents) instead of O(all cache entries).
//
// The registry holds no cached values; purging the keys it returns is
// the consumer's job.
type Registry struct {
	mu    sync.Mutex
	deps  map[CacheKey]map[EntityKey]struct{}
	rdeps map[EntityKey]map[CacheKey]struct{}
}

// NewRegistry creates an empty dependency index.
func NewRegistry() *Registry {
	return &Registry{
		deps:  make(map[CacheKey]map[EntityKey]struct{}),
		rdeps: make(map[EntityKey]map[CacheKey]struct{}),
	}
}

// Register replaces the dependency edges of key with the given entity
// set. A fresh registration always supersedes a stale one, so repeated
// repopulation of the same cache entry never leaks edges from earlier
// computations. Registering an empty set removes the key entirely.
func (r *Registry) Register(key CacheKey, entities []EntityKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropEdges(key)
	if len(entities) == 0 {
		return
	}

	set := make(map[EntityKey]struct{}, len(entities))
	for _, entity := range entities {
		set[entity] = struct{}{}
		dependents, ok := r.rdeps[entity]
		if !ok {
			dependents = make(map[CacheKey]struct{})
			r.rdeps[entity] = dependents
		}
		dependents[key] = struct{}{}
	}
	r.deps[key] = set
}

// Invalidate atomically removes every edge touching entity and returns
// the cache keys that must now be purged.
func (r *Registry) Invalidate(entity EntityKey) []CacheKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	dependents, ok := r.rdeps[entity]
	if !ok {
		return nil
	}

	keys := make([]CacheKey, 0, len(dependents))
	for key := range dependents {
		keys = append(keys, key)
		r.dropEdges(key)
	}
	delete(r.rdeps, entity)
	return keys
}

// Unregister removes the key and its edges, for callers that evicted a
// cache entry outside the invalidation path.
func (r *Registry) Unregister(key CacheKey) {
	r.mu.Lock()
	r.dropEdges(key)
	r.mu.Unlock()
}

// dropEdges removes key from both indexes. Caller holds the lock.
func (r *Registry) dropEdges(key CacheKey) {
	for entity := range r.deps[key] {
		dependents := r.rdeps[entity]
		delete(dependents, key)
		if len(dependents) == 0 {
			delete(r.rdeps, entity)
		}
	}
	delete(r.deps, key)
}

// DependenciesOf returns the entity set currently registered for key.
func (r *Registry) DependenciesOf(key CacheKey) []EntityKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EntityKey, 0, len(r.deps[key]))
	for entity := range r.deps[key] {
		out = append(out, entity)
	}
	return out
}

// Len reports how many cache keys are currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deps)
}

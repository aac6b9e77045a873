package cache

import (
	"container/list"
)

// lru is a strict least-recently-used map bounded by entry count. It is
// not safe for concurrent use; the owning store holds the lock.
type lru[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lru[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// get returns the value and marks the entry most recently used.
func (c *lru[K, V]) get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// set inserts or updates an entry, evicting the least-recently-used one
// when the insert would exceed capacity. It reports how many entries
// were evicted (0 or 1).
func (c *lru[K, V]) set(key K, value V) int {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(elem)
		return 0
	}

	evicted := 0
	if len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest)
			evicted++
		}
	}

	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	return evicted
}

// remove deletes the entry if present and reports whether it existed.
func (c *lru[K, V]) remove(key K) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

func (c *lru[K, V]) removeElement(elem *list.Element) {
	entry := elem.Value.(*lruEntry[K, V])
	c.order.Remove(elem)
	delete(c.items, entry.key)
}

// clear drops every entry.
func (c *lru[K, V]) clear() {
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

func (c *lru[K, V]) len() int {
	return len(c.items)
}

// keys returns the cached keys from most to least recently used.
func (c *lru[K, V]) keys() []K {
	out := make([]K, 0, len(c.items))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(*lruEntry[K, V]).key)
	}
	return out
}

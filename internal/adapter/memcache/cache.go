// Package memcache is an in-process result cache keyed by request fingerprint.
package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

// Cache holds up to a fixed number of run results, evicting the least recently
// used. Entries older than the TTL are treated as misses. It implements
// pipeline.ResultCache.
type Cache struct {
	lru   *lruCache[domain.RunResult]
	ttl   time.Duration
	clock clockwork.Clock
}

// New creates a cache of maxEntries results that expire after ttl. A zero ttl
// keeps entries until they are evicted.
func New(maxEntries int, ttl time.Duration) *Cache {
	return NewWithClock(maxEntries, ttl, clockwork.NewRealClock())
}

// NewWithClock is New with an explicit time source.
func NewWithClock(maxEntries int, ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{lru: newLRUCache[domain.RunResult](maxEntries), ttl: ttl, clock: clock}
}

func (c *Cache) Get(_ context.Context, fingerprint string) (domain.RunResult, bool, error) {
	r, ok := c.lru.get(fingerprint, c.clock.Now())
	return r, ok, nil
}

func (c *Cache) Put(_ context.Context, fingerprint string, result domain.RunResult) error {
	var expires time.Time
	if c.ttl > 0 {
		expires = c.clock.Now().Add(c.ttl)
	}
	c.lru.put(fingerprint, result, expires)
	return nil
}

// Len reports the number of cached entries, expired ones included.
func (c *Cache) Len() int {
	c.lru.mu.Lock()
	defer c.lru.mu.Unlock()
	return len(c.lru.entries)
}

// lruCache is a thread-safe LRU map with optional per-entry expiry.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time // zero means never
	prev    *entry[V]
	next    *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: max(maxEntries, 1),
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string, now time.Time) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !e.expires.IsZero() && !now.Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

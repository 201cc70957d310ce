package service

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LocalLRU is a small in-memory LRU cache with an idle TTL.
// An entry's expiry is pushed back on every hit.
// Concurrency: methods are safe for concurrent use.
type LocalLRU[V any] struct {
	mu      sync.Mutex
	cap     int
	idle    time.Duration
	ll      *list.List               // front = most-recently used
	items   map[string]*list.Element // key -> element
	now     func() time.Time         // injectable clock for tests
	onEvict func(key string, value V)
	keep    func(key string, value V) bool
	hits    atomic.Uint64
	misses  atomic.Uint64
	evicts  atomic.Uint64
}

type lruEntry[V any] struct {
	key    string
	value  V
	expiry time.Time // zero means no expiry
}

// LocalLRUConfig groups constructor options.
type LocalLRUConfig[V any] struct {
	Capacity int
	// IdleTTL expires entries not accessed for this long; zero disables expiry.
	IdleTTL time.Duration
	Now     func() time.Time
	// OnEvict runs outside the lock for entries dropped by capacity or expiry.
	OnEvict func(key string, value V)
	// Evictable runs under the cache lock before an entry is dropped by
	// capacity or expiry. Returning false keeps the entry resident.
	Evictable func(key string, value V) bool
}

// NewLocalLRU creates a new LocalLRU with the given config.
func NewLocalLRU[V any](cfg LocalLRUConfig[V]) *LocalLRU[V] {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1024
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LocalLRU[V]{
		cap:     capacity,
		idle:    cfg.IdleTTL,
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		now:     nowFn,
		onEvict: cfg.OnEvict,
		keep:    cfg.Evictable,
	}
}

// Get returns the value for key if present and not expired.
func (c *LocalLRU[V]) Get(key string) (V, bool) {
	var evicted []*lruEntry[V]
	defer func() { c.notify(evicted) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, found := c.items[key]
	if !found {
		c.misses.Add(1)
		return zero, false
	}
	ent := el.Value.(*lruEntry[V])
	if c.isExpired(ent) && c.evictable(ent) {
		c.removeElement(el)
		c.evicts.Add(1)
		evicted = append(evicted, ent)
		c.misses.Add(1)
		return zero, false
	}
	ent.expiry = c.expiry()
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return ent.value, true
}

// Set inserts or replaces a value.
func (c *LocalLRU[V]) Set(key string, value V) {
	var evicted []*lruEntry[V]
	defer func() { c.notify(evicted) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		ent := el.Value.(*lruEntry[V])
		ent.value = value
		ent.expiry = c.expiry()
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&lruEntry[V]{key: key, value: value, expiry: c.expiry()})
	c.items[key] = el
	evicted = c.evictIfNeeded()
}

// Peek returns the value for key without touching recency, expiry or counters.
func (c *LocalLRU[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		return el.Value.(*lruEntry[V]).value, true
	}
	var zero V
	return zero, false
}

// Delete removes a key from the cache without running OnEvict.
func (c *LocalLRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		return true
	}
	return false
}

// Len returns the current number of items in the cache.
func (c *LocalLRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// LocalLRUStats are simple counters for observability.
type LocalLRUStats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
}

// Stats returns a snapshot of counters and sizes.
func (c *LocalLRU[V]) Stats() LocalLRUStats {
	return LocalLRUStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Size:      c.Len(),
		Capacity:  c.cap,
	}
}

// Helpers (caller must hold c.mu where noted).
func (c *LocalLRU[V]) expiry() time.Time {
	if c.idle <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.idle)
}

func (c *LocalLRU[V]) isExpired(e *lruEntry[V]) bool {
	if e.expiry.IsZero() {
		return false
	}
	return c.now().After(e.expiry)
}

func (c *LocalLRU[V]) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry[V]).key)
}

func (c *LocalLRU[V]) evictable(e *lruEntry[V]) bool {
	return c.keep == nil || c.keep(e.key, e.value)
}

// evictIfNeeded drops entries from the back, skipping those that refuse
// eviction. The most recent entry is never dropped, so the cache may stay
// over capacity until older entries become evictable.
func (c *LocalLRU[V]) evictIfNeeded() []*lruEntry[V] {
	var out []*lruEntry[V]
	el := c.ll.Back()
	for c.ll.Len() > c.cap && el != nil && el != c.ll.Front() {
		prev := el.Prev()
		ent := el.Value.(*lruEntry[V])
		if c.evictable(ent) {
			c.removeElement(el)
			c.evicts.Add(1)
			out = append(out, ent)
		}
		el = prev
	}
	return out
}

func (c *LocalLRU[V]) notify(evicted []*lruEntry[V]) {
	if c.onEvict == nil {
		return
	}
	for _, ent := range evicted {
		c.onEvict(ent.key, ent.value)
	}
}

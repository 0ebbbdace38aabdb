package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultSweepInterval is how often the janitor purges expired entries
const DefaultSweepInterval = 5 * time.Minute

// TTLCache is an in-process key/value store whose entries expire after a
// fixed lifetime. Expired entries are evicted on read and by the go-cache
// janitor.
type TTLCache[V any] struct {
	cache *gocache.Cache
	ttl   time.Duration
	// mu orders lazy eviction against writes so a refreshed entry survives
	mu sync.Mutex
}

// Option configures a TTLCache
type Option func(*options)

type options struct {
	sweepInterval time.Duration
	onEvicted     func(key string)
}

// WithSweepInterval sets how often expired entries are purged. A
// non-positive interval disables the janitor; reads still evict.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		o.sweepInterval = d
	}
}

// WithEvictionHook calls fn for every entry that leaves the cache, whether
// swept, evicted on read or removed.
func WithEvictionHook(fn func(key string)) Option {
	return func(o *options) {
		o.onEvicted = fn
	}
}

// NewTTLCache creates a cache whose entries live for ttl
func NewTTLCache[V any](ttl time.Duration, opts ...Option) *TTLCache[V] {
	o := options{sweepInterval: DefaultSweepInterval}
	for _, opt := range opts {
		opt(&o)
	}

	c := &TTLCache[V]{
		cache: gocache.New(ttl, o.sweepInterval),
		ttl:   ttl,
	}
	if o.onEvicted != nil {
		fn := o.onEvicted
		c.cache.OnEvicted(func(key string, _ interface{}) {
			fn(key)
		})
	}
	return c
}

// TTL returns the default entry lifetime
func (c *TTLCache[V]) TTL() time.Duration {
	return c.ttl
}

// Set stores value under key with the default lifetime, replacing any
// previous entry.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an explicit lifetime. A
// non-positive lifetime is already expired, so nothing is kept.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		// go-cache reads 0 as the default lifetime and -1 as forever
		c.cache.Delete(key)
		return
	}
	c.cache.Set(key, value, ttl)
}

// Get returns the value stored under key. An expired entry is removed and
// reported as absent.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	if v, ok := c.cache.Get(key); ok {
		return v.(V), true
	}

	// go-cache hides expired items from Get but keeps them until a sweep
	c.mu.Lock()
	if _, ok := c.cache.Get(key); !ok {
		c.cache.Delete(key)
	}
	c.mu.Unlock()

	var zero V
	return zero, false
}

// Remove deletes key. It reports whether a live entry was present.
func (c *TTLCache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.cache.Get(key)
	c.cache.Delete(key)
	return ok
}

// Clear drops every entry
func (c *TTLCache[V]) Clear() {
	c.cache.Flush()
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[V]) Len() int {
	return c.cache.ItemCount()
}

// Cleanup removes all expired entries now and returns how many were dropped
func (c *TTLCache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.cache.ItemCount()
	c.cache.DeleteExpired()
	if removed := before - c.cache.ItemCount(); removed > 0 {
		return removed
	}
	return 0
}
